// Package money holds the fixed-point amount rules shared by the ledger.
//
// All balances and transaction amounts are decimal.Decimal values. Floating point
// representations are never used for stored money.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of fractional digits kept for every stored amount.
	Scale int32 = 2
	// Precision is the total number of significant digits a stored amount may carry.
	Precision int32 = 18
)

var (
	// ErrAmountMustBePositive is returned when an amount is zero or negative.
	ErrAmountMustBePositive = errors.New("amount must be greater than 0")
	// ErrTooManyDecimalPlaces is returned when an amount has more than Scale fractional digits.
	ErrTooManyDecimalPlaces = fmt.Errorf("amount must not have more than %d decimal places", Scale)
	// ErrAmountTooLarge is returned when an amount does not fit the stored precision.
	ErrAmountTooLarge = errors.New("amount exceeds maximum supported value")
	// ErrInvalidAmount is returned when a textual amount cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
)

// maxAmount is the exclusive upper bound for values stored as numeric(Precision, Scale).
var maxAmount = decimal.New(1, Precision-Scale)

// Validate checks that amount can be applied to a balance.
// Invariants enforced:
//   - amount is strictly positive.
//   - amount carries no more than Scale fractional digits.
//   - amount fits numeric(Precision, Scale).
func Validate(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if !amount.Equal(amount.Truncate(Scale)) {
		return ErrTooManyDecimalPlaces
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// Parse converts user input such as "250.00" into a validated amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := Validate(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Fits reports whether a balance can still be stored after an operation.
func Fits(balance decimal.Decimal) bool {
	return balance.Abs().LessThan(maxAmount)
}

// Format renders an amount the way confirmation messages show it, e.g. "$250.00".
func Format(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(Scale)
}
