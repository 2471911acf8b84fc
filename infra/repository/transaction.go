package repository

import (
	"context"
	"fmt"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a gorm-backed repository.TransactionRepository.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	m := transactionToModel(tx)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	}); err != nil {
		return err
	}
	tx.ID = m.ID
	return nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uint) ([]*account.Transaction, error) {
	var ms []Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("account_id = ?", accountID).
			Order("created_at DESC").
			Order("id DESC").
			Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*account.Transaction, 0, len(ms))
	for i := range ms {
		if !account.Type(ms[i].Type).Valid() {
			return nil, fmt.Errorf("transaction %d: unknown type %q", ms[i].ID, ms[i].Type)
		}
		out = append(out, transactionFromModel(&ms[i]))
	}
	return out, nil
}
