package account

import "github.com/shopspring/decimal"

//revive:disable

// AmountRequest is the body of the deposit and withdraw endpoints. Amount accepts a JSON
// number or a numeric string.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

// TransferRequest is the body of the transfer endpoint.
type TransferRequest struct {
	FromAccountType string          `json:"fromAccountType" validate:"required,max=20"`
	ToAccountType   string          `json:"toAccountType" validate:"required,max=20"`
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
}
