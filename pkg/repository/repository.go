package repository

import (
	"context"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access operations.
// Every lookup by account type is case-insensitive.
type AccountRepository interface {
	// Create inserts a new account and assigns its ID.
	Create(ctx context.Context, acc *account.Account) error

	// FindByType returns the account named accountType or domain.ErrNotFound.
	FindByType(ctx context.Context, accountType string) (*account.Account, error)

	// FindByTypesForUpdate loads and row-locks every named account that exists, in
	// ascending ID order. The result is keyed by account.NormalizeType; absent
	// accounts are simply missing from the map.
	FindByTypesForUpdate(ctx context.Context, accountTypes ...string) (map[string]*account.Account, error)

	// FindByIDs returns the accounts with the given IDs keyed by ID. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*account.Account, error)

	// List returns all accounts ordered by ID.
	List(ctx context.Context) ([]*account.Account, error)

	// UpdateBalance overwrites the stored balance of account id.
	UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error
}

// TransactionRepository defines the interface for transaction data access operations.
// Transactions are append-only.
type TransactionRepository interface {
	// Create appends tx and assigns its ID.
	Create(ctx context.Context, tx *account.Transaction) error

	// ListByAccount returns the transactions of accountID, newest first.
	ListByAccount(ctx context.Context, accountID uint) ([]*account.Transaction, error)
}
