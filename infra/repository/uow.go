package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/atm/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Outside Do, repositories run on the root session; inside Do they share the transaction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repository.AccountRepositoryType:     func(db *gorm.DB) any { return NewAccountRepository(db) },
			repository.TransactionRepositoryType: func(db *gorm.DB) any { return NewTransactionRepository(db) },
		},
	}
}

// Do runs fn inside a database transaction. The transaction commits when fn returns nil
// and rolls back otherwise.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// GetRepository returns the repository registered for repoType, bound to the current session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

// AccountRepository returns the account repository bound to the current session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	repoAny, err := u.GetRepository(repository.AccountRepositoryType)
	if err != nil {
		return nil, err
	}
	return repoAny.(repository.AccountRepository), nil
}

// TransactionRepository returns the transaction repository bound to the current session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	repoAny, err := u.GetRepository(repository.TransactionRepositoryType)
	if err != nil {
		return nil, err
	}
	return repoAny.(repository.TransactionRepository), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
