// Package mocks holds testify mocks for the repository and event bus interfaces.
package mocks

import (
	"context"
	"reflect"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUnitOfWork is a mock of repository.UnitOfWork.
type MockUnitOfWork struct {
	mock.Mock
}

// NewMockUnitOfWork creates a MockUnitOfWork whose expectations are asserted on cleanup.
func NewMockUnitOfWork(t cleanupT) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	args := m.Called(ctx, fn)
	if rf, ok := args.Get(0).(func(context.Context, func(repository.UnitOfWork) error) error); ok {
		return rf(ctx, fn)
	}
	return args.Error(0)
}

func (m *MockUnitOfWork) GetRepository(repoType reflect.Type) (any, error) {
	args := m.Called(repoType)
	return args.Get(0), args.Error(1)
}

func (m *MockUnitOfWork) AccountRepository() (repository.AccountRepository, error) {
	args := m.Called()
	repo, _ := args.Get(0).(repository.AccountRepository)
	return repo, args.Error(1)
}

func (m *MockUnitOfWork) TransactionRepository() (repository.TransactionRepository, error) {
	args := m.Called()
	repo, _ := args.Get(0).(repository.TransactionRepository)
	return repo, args.Error(1)
}

// RunDo makes Do invoke its callback with m and return the callback's error.
func (m *MockUnitOfWork) RunDo() *mock.Call {
	return m.On("Do", mock.Anything, mock.Anything).
		Return(func(_ context.Context, fn func(repository.UnitOfWork) error) error {
			return fn(m)
		})
}

// MockAccountRepository is a mock of repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a MockAccountRepository whose expectations are asserted on cleanup.
func NewMockAccountRepository(t cleanupT) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *MockAccountRepository) FindByType(ctx context.Context, accountType string) (*account.Account, error) {
	args := m.Called(ctx, accountType)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) FindByTypesForUpdate(
	ctx context.Context,
	accountTypes ...string,
) (map[string]*account.Account, error) {
	args := m.Called(ctx, accountTypes)
	found, _ := args.Get(0).(map[string]*account.Account)
	return found, args.Error(1)
}

func (m *MockAccountRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*account.Account, error) {
	args := m.Called(ctx, ids)
	found, _ := args.Get(0).(map[uint]*account.Account)
	return found, args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]*account.Account)
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error {
	return m.Called(ctx, id, balance).Error(0)
}

// MockTransactionRepository is a mock of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a MockTransactionRepository whose expectations are asserted on cleanup.
func NewMockTransactionRepository(t cleanupT) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID uint) ([]*account.Transaction, error) {
	args := m.Called(ctx, accountID)
	txs, _ := args.Get(0).([]*account.Transaction)
	return txs, args.Error(1)
}

var (
	_ repository.UnitOfWork            = (*MockUnitOfWork)(nil)
	_ repository.AccountRepository     = (*MockAccountRepository)(nil)
	_ repository.TransactionRepository = (*MockTransactionRepository)(nil)
)
