package account

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength bounds the free-text description stored with a transaction.
const MaxDescriptionLength = 200

// Type is the closed set of transaction kinds, stored by label.
type Type string

const (
	TypeDeposit    Type = "Deposit"
	TypeWithdrawal Type = "Withdrawal"
	TypeTransfer   Type = "Transfer"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransfer:
		return true
	}
	return false
}

// Transaction is an immutable ledger row. Amount is the positive magnitude of the
// operation; BalanceAfter is the owning account's balance right after it committed.
type Transaction struct {
	ID               uint
	AccountID        uint
	Type             Type
	Amount           decimal.Decimal
	BalanceAfter     decimal.Decimal
	Description      *string
	RelatedAccountID *uint
	CreatedAt        time.Time
}

// NewTransactionFromData creates a Transaction from raw data (used for DB hydration or test fixtures).
// This bypasses invariants and should only be used for repository hydration or tests.
func NewTransactionFromData(
	id, accountID uint,
	typ Type,
	amount, balanceAfter decimal.Decimal,
	description *string,
	relatedAccountID *uint,
	created time.Time,
) *Transaction {
	return &Transaction{
		ID:               id,
		AccountID:        accountID,
		Type:             typ,
		Amount:           amount,
		BalanceAfter:     balanceAfter,
		Description:      description,
		RelatedAccountID: relatedAccountID,
		CreatedAt:        created,
	}
}

func newTransaction(
	owner *Account,
	typ Type,
	amount decimal.Decimal,
	description string,
	relatedAccountID *uint,
	at time.Time,
) *Transaction {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		description = string([]rune(description)[:MaxDescriptionLength])
	}
	return &Transaction{
		AccountID:        owner.ID,
		Type:             typ,
		Amount:           amount,
		BalanceAfter:     owner.Balance,
		Description:      &description,
		RelatedAccountID: relatedAccountID,
		CreatedAt:        at.UTC(),
	}
}
