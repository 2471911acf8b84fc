package memory

import (
	"context"
	"sort"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	uow *UoW
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	return r.uow.write(ctx, func(s *state) error {
		key := a.TypeKey()
		for _, existing := range s.accounts {
			if existing.TypeKey() == key {
				return domain.ErrAlreadyExists
			}
		}
		a.ID = s.nextAccountID
		s.nextAccountID++
		s.accounts[a.ID] = *a
		return nil
	})
}

func (r *accountRepository) FindByType(ctx context.Context, accountType string) (*account.Account, error) {
	var out *account.Account
	err := r.uow.read(func(s *state) error {
		key := account.NormalizeType(accountType)
		for _, a := range s.accounts {
			if a.TypeKey() == key {
				cp := a
				out = &cp
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

// FindByTypesForUpdate needs no row locks: Do already serializes every unit of work.
func (r *accountRepository) FindByTypesForUpdate(
	ctx context.Context,
	accountTypes ...string,
) (map[string]*account.Account, error) {
	out := make(map[string]*account.Account, len(accountTypes))
	err := r.uow.read(func(s *state) error {
		wanted := make(map[string]struct{}, len(accountTypes))
		for _, t := range accountTypes {
			wanted[account.NormalizeType(t)] = struct{}{}
		}
		for _, a := range s.accounts {
			if _, ok := wanted[a.TypeKey()]; ok {
				cp := a
				out[a.TypeKey()] = &cp
			}
		}
		return nil
	})
	return out, err
}

func (r *accountRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*account.Account, error) {
	out := make(map[uint]*account.Account, len(ids))
	err := r.uow.read(func(s *state) error {
		for _, id := range ids {
			if a, ok := s.accounts[id]; ok {
				cp := a
				out[id] = &cp
			}
		}
		return nil
	})
	return out, err
}

func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	var out []*account.Account
	err := r.uow.read(func(s *state) error {
		out = make([]*account.Account, 0, len(s.accounts))
		for _, a := range s.accounts {
			cp := a
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error {
	return r.uow.write(ctx, func(s *state) error {
		a, ok := s.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		a.Balance = balance
		s.accounts[id] = a
		return nil
	})
}

type transactionRepository struct {
	uow *UoW
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	return r.uow.write(ctx, func(s *state) error {
		if _, ok := s.accounts[tx.AccountID]; !ok {
			return domain.ErrNotFound
		}
		tx.ID = s.nextTxID
		s.nextTxID++
		s.transactions = append(s.transactions, *tx)
		return nil
	})
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uint) ([]*account.Transaction, error) {
	var out []*account.Transaction
	err := r.uow.read(func(s *state) error {
		for _, t := range s.transactions {
			if t.AccountID == accountID {
				cp := t
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if out == nil {
		out = []*account.Transaction{}
	}
	return out, err
}

var (
	_ repository.AccountRepository     = (*accountRepository)(nil)
	_ repository.TransactionRepository = (*transactionRepository)(nil)
)
