package account_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/atm/infra"
	"github.com/amirasaad/atm/infra/eventbus"
	infrarepo "github.com/amirasaad/atm/infra/repository"
	"github.com/amirasaad/atm/infra/repository/memory"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/dto"
	"github.com/amirasaad/atm/pkg/repository"
	accountsvc "github.com/amirasaad/atm/pkg/service/account"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

var sqliteSeq atomic.Int64

// openSQLite opens a private shared-cache in-memory SQLite database with the ledger
// schema, closed when the test ends.
func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDBConnection(&config.DB{
		Driver: config.DriverSQLite,
		Url:    fmt.Sprintf("file:svc_%d?mode=memory&cache=shared&_fk=1", sqliteSeq.Add(1)),
	}, "test")
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type storeOpener func(t *testing.T) repository.UnitOfWork

var stores = []struct {
	name string
	open storeOpener
}{
	{"memory", memoryStore},
	{"sqlite", func(t *testing.T) repository.UnitOfWork { return infrarepo.NewUoW(openSQLite(t)) }},
}

// eachStore runs fn once per backing store.
func eachStore(t *testing.T, fn func(t *testing.T, open storeOpener)) {
	for _, s := range stores {
		t.Run(s.name, func(t *testing.T) { fn(t, s.open) })
	}
}

type fixture struct {
	svc *accountsvc.Service
	bus *eventbus.MemoryEventBus
	uow repository.UnitOfWork
}

func newFixture(t *testing.T, open storeOpener) *fixture {
	t.Helper()
	return newFixtureWith(t, open(t))
}

func newFixtureWith(t *testing.T, uow repository.UnitOfWork) *fixture {
	t.Helper()
	_, err := repository.Seed(context.Background(), uow, repository.DefaultAccounts, time.Now())
	require.NoError(t, err)
	bus := eventbus.NewWithMemory(slog.Default(), eventbus.RecordPublished())
	svc := accountsvc.NewService(bus, uow, slog.Default()).WithClock(tickingClock())
	return &fixture{svc: svc, bus: bus, uow: uow}
}

func memoryStore(*testing.T) repository.UnitOfWork { return memory.NewUoW() }

func (f *fixture) balance(t *testing.T, accountType string) decimal.Decimal {
	t.Helper()
	accounts, err := f.svc.ListAccounts(context.Background())
	require.NoError(t, err)
	for _, a := range accounts {
		if account.SameType(a.AccountType, accountType) {
			return a.Balance
		}
	}
	t.Fatalf("account %q not listed", accountType)
	return decimal.Zero
}

func (f *fixture) history(t *testing.T, accountType string) []dto.TransactionHistory {
	t.Helper()
	h, err := f.svc.GetHistory(context.Background(), accountType)
	require.NoError(t, err)
	return h
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestScenario(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		f := newFixture(t, open)
		ctx := context.Background()

		res, err := f.svc.Deposit(ctx, "Checking", dec("250.00"))
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "Successfully deposited $250.00 to Checking account.", res.Message)
		require.NotNil(t, res.Data)
		assertDecimal(t, "1250.00", res.Data.Balance)

		checking := f.history(t, "Checking")
		require.Len(t, checking, 1)
		assert.Equal(t, account.TypeDeposit, checking[0].Type)
		assertDecimal(t, "1250.00", checking[0].BalanceAfter)

		res, err = f.svc.Withdraw(ctx, "Savings", dec("6000.00"))
		require.ErrorIs(t, err, account.ErrInsufficientFunds)
		assert.False(t, res.Success)
		assert.Equal(t, "Insufficient funds for this withdrawal.", res.Message)
		assert.Nil(t, res.Data)
		assertDecimal(t, "5000.00", f.balance(t, "Savings"))
		assert.Empty(t, f.history(t, "Savings"))

		tr, err := f.svc.Transfer(ctx, "Checking", "Savings", dec("300.00"))
		require.NoError(t, err)
		assert.True(t, tr.Success)
		assert.Equal(t, "Successfully transferred $300.00 from Checking to Savings.", tr.Message)
		require.NotNil(t, tr.Data)
		assert.Regexp(t, `^Transfer completed at \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} UTC$`, *tr.Data)
		assertDecimal(t, "950.00", f.balance(t, "Checking"))
		assertDecimal(t, "5300.00", f.balance(t, "Savings"))

		checking = f.history(t, "Checking")
		require.Len(t, checking, 2)
		debit := checking[0]
		assert.Equal(t, account.TypeTransfer, debit.Type)
		assertDecimal(t, "950.00", debit.BalanceAfter)
		require.NotNil(t, debit.RelatedAccountType)
		assert.Equal(t, "Savings", *debit.RelatedAccountType)
		assert.Equal(t, "Transfer to Savings account", *debit.Description)
		assert.Equal(t, account.TypeDeposit, checking[1].Type)

		savings := f.history(t, "Savings")
		require.Len(t, savings, 1)
		credit := savings[0]
		assertDecimal(t, "5300.00", credit.BalanceAfter)
		assert.True(t, debit.CreatedAt.Equal(credit.CreatedAt))
		accounts, err := f.svc.ListAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		require.NotNil(t, credit.RelatedAccountID)
		require.NotNil(t, debit.RelatedAccountID)
		assert.Equal(t, accounts[1].ID, *debit.RelatedAccountID)
		assert.Equal(t, accounts[0].ID, *credit.RelatedAccountID)
		assert.Equal(t, "Checking", *credit.RelatedAccountType)
	})
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name        string
		accountType string
		amount      string
		wantErr     error
		wantMsg     string
	}{
		{"unknown account", "Brokerage", "10", account.ErrAccountNotFound, "Account type 'Brokerage' not found."},
		{"padded name is another account", " checking ", "10", account.ErrAccountNotFound, "Account type ' checking ' not found."},
		{"blank account", "  ", "10", account.ErrInvalidRequest, "Account type is required."},
		{"zero amount", "Checking", "0", account.ErrInvalidRequest, "Amount must be greater than 0."},
		{"negative amount", "Checking", "-5", account.ErrInvalidRequest, "Amount must be greater than 0."},
		{"sub-cent amount", "Checking", "0.001", account.ErrInvalidRequest, "Amount must not have more than 2 decimal places."},
	}

	eachStore(t, func(t *testing.T, open storeOpener) {
		t.Run("increases balance by exactly the amount", func(t *testing.T) {
			f := newFixture(t, open)
			res, err := f.svc.Deposit(context.Background(), "Savings", dec("0.01"))
			require.NoError(t, err)
			assertDecimal(t, "5000.01", res.Data.Balance)
			h := f.history(t, "Savings")
			require.Len(t, h, 1)
			assertDecimal(t, "0.01", h[0].Amount)
			assert.Nil(t, h[0].RelatedAccountID)
		})

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, open)
				res, err := f.svc.Deposit(context.Background(), tt.accountType, dec(tt.amount))
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, res.Success)
				assert.Equal(t, tt.wantMsg, res.Message)
				assertDecimal(t, "1000.00", f.balance(t, "Checking"))
				assert.Empty(t, f.history(t, "Checking"))
				assert.Empty(t, f.bus.Published())
			})
		}
	})
}

func TestDeposit_CaseInsensitive(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		f := newFixture(t, open)
		ctx := context.Background()

		res, err := f.svc.Deposit(ctx, "checking", dec("10"))
		require.NoError(t, err)
		assert.Equal(t, "Checking", res.Data.AccountType)
		assert.Equal(t, "Successfully deposited $10.00 to checking account.", res.Message)

		_, err = f.svc.Deposit(ctx, "CHECKING", dec("10"))
		require.NoError(t, err)

		assertDecimal(t, "1020.00", f.balance(t, "Checking"))
		assert.Len(t, f.history(t, "cHeCkInG"), 2)
	})
}

func TestEighteenDigitBalancesStayExact(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		f := newFixture(t, open)
		ctx := context.Background()

		res, err := f.svc.Deposit(ctx, "Savings", dec("9999999999994999.99"))
		require.NoError(t, err)
		assert.Equal(t, "9999999999999999.99", res.Data.Balance.StringFixed(2))
		assert.Equal(t, "9999999999999999.99", f.balance(t, "Savings").StringFixed(2))

		_, err = f.svc.Deposit(ctx, "Savings", dec("0.01"))
		require.ErrorIs(t, err, account.ErrInvalidRequest, "the balance would leave decimal(18,2)")

		res, err = f.svc.Withdraw(ctx, "Savings", dec("0.01"))
		require.NoError(t, err)
		assert.Equal(t, "9999999999999999.98", res.Data.Balance.StringFixed(2))
		assert.Equal(t, "9999999999999999.98", f.balance(t, "Savings").StringFixed(2))

		h := f.history(t, "Savings")
		require.Len(t, h, 2)
		assert.Equal(t, "9999999999999999.98", h[0].BalanceAfter.StringFixed(2))
		assert.Equal(t, "9999999999994999.99", h[1].Amount.StringFixed(2))
		assert.Equal(t, "9999999999999999.99", h[1].BalanceAfter.StringFixed(2))
	})
}

func TestWithdraw(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		t.Run("exact balance empties the account", func(t *testing.T) {
			f := newFixture(t, open)
			res, err := f.svc.Withdraw(context.Background(), "Checking", dec("1000"))
			require.NoError(t, err)
			assert.Equal(t, "Successfully withdrew $1000.00 from Checking account.", res.Message)
			assert.True(t, res.Data.Balance.IsZero())
			h := f.history(t, "Checking")
			require.Len(t, h, 1)
			assert.Equal(t, account.TypeWithdrawal, h[0].Type)
			assert.Equal(t, "Withdrawal from Checking account", *h[0].Description)
		})

		t.Run("unknown account", func(t *testing.T) {
			f := newFixture(t, open)
			res, err := f.svc.Withdraw(context.Background(), "Brokerage", dec("1"))
			require.ErrorIs(t, err, account.ErrAccountNotFound)
			assert.Equal(t, "Account type 'Brokerage' not found.", res.Message)
		})

		t.Run("one cent too much", func(t *testing.T) {
			f := newFixture(t, open)
			_, err := f.svc.Withdraw(context.Background(), "Checking", dec("1000.01"))
			require.ErrorIs(t, err, account.ErrInsufficientFunds)
			assertDecimal(t, "1000.00", f.balance(t, "Checking"))
			assert.Empty(t, f.history(t, "Checking"))
		})
	})
}

func TestTransfer_Failures(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		amount   string
		wantErr  error
		wantMsg  string
	}{
		{"missing source", "", "Savings", "1", account.ErrInvalidRequest, "Both account types are required."},
		{"missing destination", "Checking", " ", "1", account.ErrInvalidRequest, "Both account types are required."},
		{"same account", "Checking", "checking", "1", account.ErrCannotTransferToSameAccount, "Cannot transfer to the same account."},
		{"same account wins over bad amount", "Savings", "SAVINGS", "-1", account.ErrCannotTransferToSameAccount, "Cannot transfer to the same account."},
		{"non-positive amount", "Checking", "Savings", "0", account.ErrInvalidRequest, "Amount must be greater than 0."},
		{"unknown source", "Brokerage", "Savings", "1", account.ErrAccountNotFound, "Source account 'Brokerage' not found."},
		{"unknown destination", "Checking", "Brokerage", "1", account.ErrAccountNotFound, "Destination account 'Brokerage' not found."},
		{"source checked before destination", "Nope", "Brokerage", "1", account.ErrAccountNotFound, "Source account 'Nope' not found."},
		{"insufficient funds", "Checking", "Savings", "1000.01", account.ErrInsufficientFunds, "Insufficient funds for this transfer."},
	}

	eachStore(t, func(t *testing.T, open storeOpener) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, open)
				res, err := f.svc.Transfer(context.Background(), tt.from, tt.to, dec(tt.amount))
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, res.Success)
				assert.Nil(t, res.Data)
				assert.Equal(t, tt.wantMsg, res.Message)

				assertDecimal(t, "1000.00", f.balance(t, "Checking"))
				assertDecimal(t, "5000.00", f.balance(t, "Savings"))
				assert.Empty(t, f.history(t, "Checking"))
				assert.Empty(t, f.history(t, "Savings"))
				assert.Empty(t, f.bus.Published())
			})
		}
	})
}

func TestTransfer_LegsCrossReference(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		f := newFixture(t, open)
		ctx := context.Background()

		_, err := f.svc.Transfer(ctx, "savings", "CHECKING", dec("5000"))
		require.NoError(t, err)

		accounts, err := f.svc.ListAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		checkingID, savingsID := accounts[0].ID, accounts[1].ID

		debit := f.history(t, "Savings")
		credit := f.history(t, "Checking")
		require.Len(t, debit, 1)
		require.Len(t, credit, 1)
		assert.Equal(t, checkingID, *debit[0].RelatedAccountID)
		assert.Equal(t, savingsID, *credit[0].RelatedAccountID)
		assert.Equal(t, "Transfer to CHECKING account", *debit[0].Description)
		assert.Equal(t, "Transfer from savings account", *credit[0].Description)
		assert.True(t, debit[0].CreatedAt.Equal(credit[0].CreatedAt))
		assertDecimal(t, "0", debit[0].BalanceAfter)
		assertDecimal(t, "6000", credit[0].BalanceAfter)
	})
}

// TestTransfer_CreditInsertFailureRollsBack fails the second transaction insert of a
// transfer inside a real database transaction. Both balance updates and the debit row
// are already written by then and must all roll back.
func TestTransfer_CreditInsertFailureRollsBack(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_credit_leg",
		func(tx *gorm.DB) {
			m, ok := tx.Statement.Dest.(*infrarepo.Transaction)
			if ok && m.Description != nil && strings.HasPrefix(*m.Description, "Transfer from") {
				_ = tx.AddError(errors.New("disk full"))
			}
		}))
	f := newFixtureWith(t, infrarepo.NewUoW(db))

	res, err := f.svc.Transfer(context.Background(), "Checking", "Savings", dec("300"))
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.False(t, res.Success)
	assert.Nil(t, res.Data)
	assert.Equal(t, "An error occurred during transfer. Please try again.", res.Message)
	assert.NotContains(t, res.Message, "disk full")

	assertDecimal(t, "1000.00", f.balance(t, "Checking"))
	assertDecimal(t, "5000.00", f.balance(t, "Savings"))
	assert.Empty(t, f.history(t, "Checking"))
	assert.Empty(t, f.history(t, "Savings"))
	assert.Empty(t, f.bus.Published())

	var rows int64
	require.NoError(t, db.Model(&infrarepo.Transaction{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestGetHistory_UnknownAccountIsEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		f := newFixture(t, open)
		h, err := f.svc.GetHistory(context.Background(), "Brokerage")
		require.NoError(t, err)
		assert.NotNil(t, h)
		assert.Empty(t, h)
	})
}

func TestBalanceMatchesTransactionLog(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		f := newFixture(t, open)
		ctx := context.Background()

		ops := []func() error{
			func() error { _, err := f.svc.Deposit(ctx, "Checking", dec("12.34")); return err },
			func() error { _, err := f.svc.Withdraw(ctx, "Checking", dec("0.34")); return err },
			func() error { _, err := f.svc.Transfer(ctx, "Checking", "Savings", dec("512")); return err },
			func() error { _, err := f.svc.Withdraw(ctx, "Checking", dec("9999")); return err },
			func() error { _, err := f.svc.Transfer(ctx, "Savings", "Checking", dec("0.50")); return err },
			func() error { _, err := f.svc.Deposit(ctx, "Savings", dec("100")); return err },
		}
		for _, op := range ops {
			_ = op()
		}

		seeds := map[string]string{"Checking": "1000.00", "Savings": "5000.00"}
		for accountType, seed := range seeds {
			h := f.history(t, accountType)
			running := dec(seed)
			for i := len(h) - 1; i >= 0; i-- {
				row := h[i]
				switch {
				case row.Type == account.TypeDeposit:
					running = running.Add(row.Amount)
				case row.Type == account.TypeWithdrawal:
					running = running.Sub(row.Amount)
				case running.Add(row.Amount).Equal(row.BalanceAfter):
					running = running.Add(row.Amount)
				default:
					running = running.Sub(row.Amount)
				}
				assertDecimal(t, row.BalanceAfter.String(), running)
				assert.False(t, running.IsNegative())
			}
			assertDecimal(t, running.String(), f.balance(t, accountType))
		}
	})
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	eachStore(t, func(t *testing.T, open storeOpener) {
		f := newFixture(t, open)
		ctx := context.Background()

		const workers = 25
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := f.svc.Withdraw(ctx, "Checking", dec("100"))
				if err == nil && res.Success {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, succeeded)
		assert.True(t, f.balance(t, "Checking").IsZero())
		assert.Len(t, f.history(t, "Checking"), 10)
	})
}
