package account

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/money"
	"github.com/amirasaad/atm/pkg/dto"
	"github.com/shopspring/decimal"
)

const transferTimeLayout = "2006-01-02 15:04:05"

// operation carries the caller-facing wording of one mutation kind.
type operation struct {
	name         string
	insufficient string
	missingType  string
}

var (
	depositOp = operation{
		name:        "deposit",
		missingType: "Account type is required.",
	}
	withdrawOp = operation{
		name:         "withdrawal",
		insufficient: "Insufficient funds for this withdrawal.",
		missingType:  "Account type is required.",
	}
	transferOp = operation{
		name:         "transfer",
		insufficient: "Insufficient funds for this transfer.",
		missingType:  "Both account types are required.",
	}
)

// describe turns err into the caller-facing message and the error the caller should see.
// Anything that is not a business rejection is reported as a storage failure.
func (op operation) describe(err error) (string, error) {
	var notFound *account.AccountNotFoundError
	switch {
	case errors.As(err, &notFound):
		return notFound.Error(), err
	case errors.Is(err, account.ErrInsufficientFunds):
		return op.insufficient, err
	case errors.Is(err, account.ErrCannotTransferToSameAccount):
		return "Cannot transfer to the same account.", err
	case errors.Is(err, account.ErrAccountTypeRequired):
		return op.missingType, err
	case errors.Is(err, money.ErrTooManyDecimalPlaces):
		return fmt.Sprintf("Amount must not have more than %d decimal places.", money.Scale), err
	case errors.Is(err, money.ErrAmountTooLarge), errors.Is(err, account.ErrBalanceOverflow):
		return "Amount exceeds the maximum supported value.", err
	case errors.Is(err, account.ErrInvalidRequest):
		return "Amount must be greater than 0.", err
	case errors.Is(err, domain.ErrStorage):
		return op.storageMessage(), err
	}
	return op.storageMessage(), fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

func (op operation) storageMessage() string {
	return fmt.Sprintf("An error occurred during %s. Please try again.", op.name)
}

// fail logs and converts err into a failed result.
func fail[T any](logger *slog.Logger, op operation, err error) (dto.Result[T], error) {
	msg, err := op.describe(err)
	if errors.Is(err, domain.ErrStorage) {
		logger.Error(op.name+" failed", "error", err)
	} else {
		logger.Info(op.name+" rejected", "reason", msg)
	}
	return dto.Fail[T](msg), err
}

func depositMessage(amount decimal.Decimal, accountType string) string {
	return fmt.Sprintf("Successfully deposited %s to %s account.", money.Format(amount), accountType)
}

func withdrawMessage(amount decimal.Decimal, accountType string) string {
	return fmt.Sprintf("Successfully withdrew %s from %s account.", money.Format(amount), accountType)
}

func transferMessage(amount decimal.Decimal, from, to string) string {
	return fmt.Sprintf("Successfully transferred %s from %s to %s.", money.Format(amount), from, to)
}
