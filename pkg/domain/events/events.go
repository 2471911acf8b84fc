// Package events defines the ledger events emitted after a balance mutation commits.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeDepositCompleted    EventType = "Deposit.Completed"
	EventTypeWithdrawalCompleted EventType = "Withdrawal.Completed"
	EventTypeTransferCompleted   EventType = "Transfer.Completed"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Event is implemented by every ledger event.
type Event interface {
	Type() string
}

// Meta carries the fields shared by all ledger events.
type Meta struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func newMeta(at time.Time) Meta {
	return Meta{ID: uuid.New(), Timestamp: at.UTC()}
}

// DepositCompleted is emitted once a deposit has been committed.
type DepositCompleted struct {
	Meta
	AccountID    uint            `json:"accountId"`
	AccountType  string          `json:"accountType"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
}

// WithdrawalCompleted is emitted once a withdrawal has been committed.
type WithdrawalCompleted struct {
	Meta
	AccountID    uint            `json:"accountId"`
	AccountType  string          `json:"accountType"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
}

// TransferCompleted is emitted once both legs of a transfer have been committed.
type TransferCompleted struct {
	Meta
	FromAccountID    uint            `json:"fromAccountId"`
	FromAccountType  string          `json:"fromAccountType"`
	ToAccountID      uint            `json:"toAccountId"`
	ToAccountType    string          `json:"toAccountType"`
	Amount           decimal.Decimal `json:"amount"`
	FromBalanceAfter decimal.Decimal `json:"fromBalanceAfter"`
	ToBalanceAfter   decimal.Decimal `json:"toBalanceAfter"`
}

func (e DepositCompleted) Type() string    { return EventTypeDepositCompleted.String() }
func (e WithdrawalCompleted) Type() string { return EventTypeWithdrawalCompleted.String() }
func (e TransferCompleted) Type() string   { return EventTypeTransferCompleted.String() }

// NewDepositCompleted creates a DepositCompleted event stamped at.
func NewDepositCompleted(
	accountID uint,
	accountType string,
	amount, balanceAfter decimal.Decimal,
	at time.Time,
) *DepositCompleted {
	return &DepositCompleted{
		Meta:         newMeta(at),
		AccountID:    accountID,
		AccountType:  accountType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
}

// NewWithdrawalCompleted creates a WithdrawalCompleted event stamped at.
func NewWithdrawalCompleted(
	accountID uint,
	accountType string,
	amount, balanceAfter decimal.Decimal,
	at time.Time,
) *WithdrawalCompleted {
	return &WithdrawalCompleted{
		Meta:         newMeta(at),
		AccountID:    accountID,
		AccountType:  accountType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
}

// TransferSide is one end of a committed transfer.
type TransferSide struct {
	AccountID    uint
	AccountType  string
	BalanceAfter decimal.Decimal
}

// NewTransferCompleted creates a TransferCompleted event stamped at.
func NewTransferCompleted(from, to TransferSide, amount decimal.Decimal, at time.Time) *TransferCompleted {
	return &TransferCompleted{
		Meta:             newMeta(at),
		FromAccountID:    from.AccountID,
		FromAccountType:  from.AccountType,
		ToAccountID:      to.AccountID,
		ToAccountType:    to.AccountType,
		Amount:           amount,
		FromBalanceAfter: from.BalanceAfter,
		ToBalanceAfter:   to.BalanceAfter,
	}
}

// Factories maps every event type to a constructor of its zero value. Consumers
// decoding events off a stream use it to pick the concrete type.
func Factories() map[string]func() Event {
	return map[string]func() Event{
		EventTypeDepositCompleted.String():    func() Event { return &DepositCompleted{} },
		EventTypeWithdrawalCompleted.String(): func() Event { return &WithdrawalCompleted{} },
		EventTypeTransferCompleted.String():   func() Event { return &TransferCompleted{} },
	}
}
