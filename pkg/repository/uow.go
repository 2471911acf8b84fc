package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs the given function in a transaction boundary, providing a UnitOfWork for
// repository access. Repositories obtained from the inner UnitOfWork share its session,
// so every write made inside fn commits or rolls back together.
//
//	err := uow.Do(ctx, func(tx UnitOfWork) error {
//		repo, err := tx.AccountRepository()
//		...
//	})
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an error or panics,
	// nothing it wrote is kept.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type bound to the
	// current session.
	GetRepository(repoType reflect.Type) (any, error)

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
}

var (
	AccountRepositoryType     = reflect.TypeOf((*AccountRepository)(nil)).Elem()
	TransactionRepositoryType = reflect.TypeOf((*TransactionRepository)(nil)).Elem()
)
