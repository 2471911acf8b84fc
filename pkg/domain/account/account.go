package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/atm/pkg/domain/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRequest is returned when a required field is missing or malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAccountTypeRequired is returned when an operation is missing an account type.
	ErrAccountTypeRequired = fmt.Errorf("%w: both account types are required", ErrInvalidRequest)

	// ErrTransactionAmountMustBePositive is returned when a transaction amount is not a positive,
	// storable fixed-point value.
	ErrTransactionAmountMustBePositive = fmt.Errorf("%w: transaction amount must be positive", ErrInvalidRequest)

	// ErrBalanceOverflow is returned when a credit would push a balance past the stored precision.
	ErrBalanceOverflow = fmt.Errorf("%w: resulting balance exceeds maximum supported value", ErrInvalidRequest)

	// ErrInsufficientFunds is returned when an account has insufficient funds for a withdrawal or transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCannotTransferToSameAccount is returned when a transfer is attempted from an account to itself.
	ErrCannotTransferToSameAccount = errors.New("cannot transfer to same account")

	// ErrNilAccount is returned when a nil account is provided to a transfer or other operation.
	ErrNilAccount = errors.New("nil account")
)

// Side identifies which end of a transfer an error refers to.
type Side string

const (
	SideNone        Side = ""
	SideSource      Side = "Source"
	SideDestination Side = "Destination"
)

// AccountNotFoundError reports the account type that could not be resolved and, for
// transfers, on which side it was expected. It matches ErrAccountNotFound with errors.Is.
type AccountNotFoundError struct {
	Side        Side
	AccountType string
}

// NewAccountNotFoundError creates an AccountNotFoundError for accountType.
func NewAccountNotFoundError(side Side, accountType string) *AccountNotFoundError {
	return &AccountNotFoundError{Side: side, AccountType: accountType}
}

func (e *AccountNotFoundError) Error() string {
	if e.Side == SideNone {
		return fmt.Sprintf("Account type '%s' not found.", e.AccountType)
	}
	return fmt.Sprintf("%s account '%s' not found.", e.Side, e.AccountType)
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// NormalizeType returns the lookup key of an account type. Two account types name the
// same account exactly when their keys are equal. Only case is folded; surrounding
// spaces are part of the name.
func NormalizeType(accountType string) string {
	return strings.ToLower(accountType)
}

// BlankType reports whether accountType is empty or only whitespace.
func BlankType(accountType string) bool {
	return strings.TrimSpace(accountType) == ""
}

// SameType reports whether two account types resolve to the same account.
func SameType(a, b string) bool {
	return NormalizeType(a) == NormalizeType(b)
}

// Account is one of the named ledger accounts.
//
// Invariants:
//   - AccountType is unique ignoring case; see NormalizeType.
//   - Balance never becomes negative through Deposit, Withdraw or Transfer.
//   - CreatedAt is set once and never changes.
type Account struct {
	ID          uint
	AccountType string
	Balance     decimal.Decimal
	CreatedAt   time.Time
}

// New creates an account with a seed balance. Used by store initialization only.
func New(accountType string, balance decimal.Decimal, createdAt time.Time) (*Account, error) {
	if BlankType(accountType) {
		return nil, ErrAccountTypeRequired
	}
	if balance.IsNegative() {
		return nil, ErrInsufficientFunds
	}
	if !money.Fits(balance) {
		return nil, ErrBalanceOverflow
	}
	return &Account{
		AccountType: accountType,
		Balance:     balance.Round(money.Scale),
		CreatedAt:   createdAt,
	}, nil
}

// TypeKey returns the normalized lookup key of the account.
func (a *Account) TypeKey() string {
	return NormalizeType(a.AccountType)
}

// ValidateAmount rejects non-positive amounts and amounts the ledger cannot store.
func ValidateAmount(amount decimal.Decimal) error {
	if err := money.Validate(amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionAmountMustBePositive, err)
	}
	return nil
}

// ValidateWithdraw checks that amount can leave the account without driving it negative.
func (a *Account) ValidateWithdraw(amount decimal.Decimal) error {
	if a == nil {
		return ErrNilAccount
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateDeposit checks that amount can be credited to the account.
func (a *Account) ValidateDeposit(amount decimal.Decimal) error {
	if a == nil {
		return ErrNilAccount
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !money.Fits(a.Balance.Add(amount)) {
		return ErrBalanceOverflow
	}
	return nil
}

// Deposit credits amount and returns the Deposit transaction recording it. label is the
// account type as the caller named it.
func (a *Account) Deposit(amount decimal.Decimal, label string, at time.Time) (*Transaction, error) {
	if err := a.ValidateDeposit(amount); err != nil {
		return nil, err
	}
	a.Balance = a.Balance.Add(amount)
	return newTransaction(a, TypeDeposit, amount,
		fmt.Sprintf("Deposit to %s account", label), nil, at), nil
}

// Withdraw debits amount and returns the Withdrawal transaction recording it.
// On error the balance is left untouched.
func (a *Account) Withdraw(amount decimal.Decimal, label string, at time.Time) (*Transaction, error) {
	if err := a.ValidateWithdraw(amount); err != nil {
		return nil, err
	}
	a.Balance = a.Balance.Sub(amount)
	return newTransaction(a, TypeWithdrawal, amount,
		fmt.Sprintf("Withdrawal from %s account", label), nil, at), nil
}

// ValidateTransfer ensures that a funds transfer from this account to dest is valid.
func (a *Account) ValidateTransfer(dest *Account, amount decimal.Decimal) error {
	if a == nil || dest == nil {
		return ErrNilAccount
	}
	if a.ID == dest.ID || SameType(a.AccountType, dest.AccountType) {
		return ErrCannotTransferToSameAccount
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	if !money.Fits(dest.Balance.Add(amount)) {
		return ErrBalanceOverflow
	}
	return nil
}

// Transfer moves amount from a to dest and returns both legs. The legs share the
// timestamp at and reference each other's account through RelatedAccountID.
// fromLabel and toLabel are the account types as the caller named them.
func (a *Account) Transfer(
	dest *Account,
	amount decimal.Decimal,
	fromLabel, toLabel string,
	at time.Time,
) (debit, credit *Transaction, err error) {
	if err = a.ValidateTransfer(dest, amount); err != nil {
		return nil, nil, err
	}
	a.Balance = a.Balance.Sub(amount)
	dest.Balance = dest.Balance.Add(amount)

	destID, srcID := dest.ID, a.ID
	debit = newTransaction(a, TypeTransfer, amount,
		fmt.Sprintf("Transfer to %s account", toLabel), &destID, at)
	credit = newTransaction(dest, TypeTransfer, amount,
		fmt.Sprintf("Transfer from %s account", fromLabel), &srcID, at)
	return debit, credit, nil
}
