package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// SeedAccount describes an account created when the store is first initialized.
type SeedAccount struct {
	AccountType string
	Balance     decimal.Decimal
}

// DefaultAccounts are the two accounts every fresh ledger starts with.
var DefaultAccounts = []SeedAccount{
	{AccountType: "Checking", Balance: decimal.RequireFromString("1000.00")},
	{AccountType: "Savings", Balance: decimal.RequireFromString("5000.00")},
}

// Seed creates every account in seeds that does not exist yet, in one unit of work.
// Existing accounts keep their balance. It returns the number of accounts created.
func Seed(ctx context.Context, uow UnitOfWork, seeds []SeedAccount, now time.Time) (int, error) {
	created := 0
	err := uow.Do(ctx, func(tx UnitOfWork) error {
		created = 0
		repo, err := tx.AccountRepository()
		if err != nil {
			return err
		}
		for _, s := range seeds {
			_, err := repo.FindByType(ctx, s.AccountType)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("lookup %s: %w", s.AccountType, err)
			}
			acc, err := account.New(s.AccountType, s.Balance, now.UTC())
			if err != nil {
				return fmt.Errorf("seed %s: %w", s.AccountType, err)
			}
			if err := repo.Create(ctx, acc); err != nil {
				return fmt.Errorf("create %s: %w", s.AccountType, err)
			}
			created++
		}
		return nil
	})
	return created, err
}
