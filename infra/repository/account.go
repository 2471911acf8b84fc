package repository

import (
	"context"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a gorm-backed repository.AccountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := accountToModel(a)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	}); err != nil {
		return err
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	return nil
}

func (r *accountRepository) FindByType(ctx context.Context, accountType string) (*account.Account, error) {
	var m Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("type_key = ?", account.NormalizeType(accountType)).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return accountFromModel(&m), nil
}

func (r *accountRepository) FindByTypesForUpdate(
	ctx context.Context,
	accountTypes ...string,
) (map[string]*account.Account, error) {
	keys := make([]string, 0, len(accountTypes))
	seen := make(map[string]struct{}, len(accountTypes))
	for _, t := range accountTypes {
		k := account.NormalizeType(t)
		if _, dup := seen[k]; dup || account.BlankType(t) {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	out := make(map[string]*account.Account, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var ms []Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("type_key IN ?", keys).
			Order("id").
			Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	for i := range ms {
		out[ms[i].TypeKey] = accountFromModel(&ms[i])
	}
	return out, nil
}

func (r *accountRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*account.Account, error) {
	out := make(map[uint]*account.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ms []Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	for i := range ms {
		out[ms[i].ID] = accountFromModel(&ms[i])
	}
	return out, nil
}

func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	var ms []Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Order("id").Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*account.Account, 0, len(ms))
	for i := range ms {
		out = append(out, accountFromModel(&ms[i]))
	}
	return out, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Update("balance", Money{balance})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
