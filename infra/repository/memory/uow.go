// Package memory is an in-process ledger store used by tests and by the server when no
// database driver is configured.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
)

type state struct {
	accounts      map[uint]account.Account
	transactions  []account.Transaction
	nextAccountID uint
	nextTxID      uint
}

func newState() *state {
	return &state{
		accounts:      make(map[uint]account.Account),
		nextAccountID: 1,
		nextTxID:      1,
	}
}

func (s *state) clone() *state {
	cp := &state{
		accounts:      make(map[uint]account.Account, len(s.accounts)),
		transactions:  make([]account.Transaction, len(s.transactions)),
		nextAccountID: s.nextAccountID,
		nextTxID:      s.nextTxID,
	}
	for id, a := range s.accounts {
		cp.accounts[id] = a
	}
	copy(cp.transactions, s.transactions)
	return cp
}

// UoW is a repository.UnitOfWork over in-memory state. Do serializes all units of work
// on one mutex, runs fn against a private copy and publishes the copy only when fn succeeds.
type UoW struct {
	mu    *sync.RWMutex
	root  **state
	inTx  bool
	local *state
}

// NewUoW creates an empty in-memory store.
func NewUoW() *UoW {
	st := newState()
	return &UoW{mu: &sync.RWMutex{}, root: &st}
}

// Do runs fn atomically. A panic or error inside fn discards everything fn wrote.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.inTx {
		return fn(u)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	work := (*u.root).clone()
	if err := fn(&UoW{mu: u.mu, root: u.root, inTx: true, local: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	*u.root = work
	return nil
}

// GetRepository returns the repository registered for repoType, bound to the current session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	switch repoType {
	case repository.AccountRepositoryType:
		return &accountRepository{uow: u}, nil
	case repository.TransactionRepositoryType:
		return &transactionRepository{uow: u}, nil
	}
	return nil, fmt.Errorf("unsupported repository type: %v", repoType)
}

// AccountRepository returns the account repository bound to the current session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepository{uow: u}, nil
}

// TransactionRepository returns the transaction repository bound to the current session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepository{uow: u}, nil
}

// read runs fn against the visible state.
func (u *UoW) read(fn func(s *state) error) error {
	if u.inTx {
		return fn(u.local)
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return fn(*u.root)
}

// write runs fn against the session state; outside Do each write is its own unit of work.
func (u *UoW) write(ctx context.Context, fn func(s *state) error) error {
	if u.inTx {
		return fn(u.local)
	}
	return u.Do(ctx, func(tx repository.UnitOfWork) error {
		return fn(tx.(*UoW).local)
	})
}

var _ repository.UnitOfWork = (*UoW)(nil)
