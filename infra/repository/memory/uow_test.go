package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/atm/infra/repository/memory"
	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *memory.UoW {
	t.Helper()
	uow := memory.NewUoW()
	n, err := repository.Seed(context.Background(), uow, repository.DefaultAccounts, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	return uow
}

func TestSeed_IsIdempotent(t *testing.T) {
	uow := seeded(t)
	n, err := repository.Seed(context.Background(), uow, repository.DefaultAccounts, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Checking", accounts[0].AccountType)
	assert.True(t, accounts[0].Balance.Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(t, "Savings", accounts[1].AccountType)
	assert.True(t, accounts[1].Balance.Equal(decimal.RequireFromString("5000.00")))
}

func TestAccountRepository_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	uow := seeded(t)
	repo, err := uow.AccountRepository()
	require.NoError(t, err)

	acc, err := repo.FindByType(ctx, "cHeCkInG")
	require.NoError(t, err)
	assert.Equal(t, "Checking", acc.AccountType)

	_, err = repo.FindByType(ctx, "Brokerage")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dup, err := account.New("SAVINGS", decimal.Zero, time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrAlreadyExists)

	locked, err := repo.FindByTypesForUpdate(ctx, "checking", "SAVINGS", "missing")
	require.NoError(t, err)
	assert.Len(t, locked, 2)
	assert.Contains(t, locked, "savings")
}

func TestUoW_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	uow := seeded(t)
	boom := errors.New("boom")

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		accRepo, _ := tx.AccountRepository()
		txRepo, _ := tx.TransactionRepository()
		acc, err := accRepo.FindByType(ctx, "Checking")
		require.NoError(t, err)
		require.NoError(t, accRepo.UpdateBalance(ctx, acc.ID, decimal.Zero))
		require.NoError(t, txRepo.Create(ctx, &account.Transaction{AccountID: acc.ID, Type: account.TypeWithdrawal}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	accRepo, _ := uow.AccountRepository()
	acc, err := accRepo.FindByType(ctx, "Checking")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("1000.00")))

	txRepo, _ := uow.TransactionRepository()
	history, err := txRepo.ListByAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUoW_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	uow := seeded(t)

	assert.Panics(t, func() {
		_ = uow.Do(ctx, func(tx repository.UnitOfWork) error {
			accRepo, _ := tx.AccountRepository()
			_ = accRepo.UpdateBalance(ctx, 1, decimal.Zero)
			panic("storage exploded")
		})
	})

	accRepo, _ := uow.AccountRepository()
	acc, err := accRepo.FindByType(ctx, "Checking")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("1000.00")))
}

func TestTransactionRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	uow := seeded(t)
	txRepo, _ := uow.TransactionRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, txRepo.Create(ctx, &account.Transaction{AccountID: 1, Type: account.TypeDeposit, CreatedAt: base}))
	require.NoError(t, txRepo.Create(ctx, &account.Transaction{AccountID: 1, Type: account.TypeTransfer, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, txRepo.Create(ctx, &account.Transaction{AccountID: 1, Type: account.TypeWithdrawal, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, txRepo.Create(ctx, &account.Transaction{AccountID: 2, Type: account.TypeDeposit, CreatedAt: base}))

	history, err := txRepo.ListByAccount(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, uint(3), history[0].ID, "same timestamp falls back to id descending")
	assert.Equal(t, uint(2), history[1].ID)
	assert.Equal(t, uint(1), history[2].ID)

	assert.ErrorIs(t, txRepo.Create(ctx, &account.Transaction{AccountID: 42}), domain.ErrNotFound)
}
