package dto

import (
	"encoding/json"
	"time"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/money"
	"github.com/shopspring/decimal"
)

// jsonAmount renders an amount as a JSON number with exactly money.Scale decimals.
func jsonAmount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(money.Scale))
}

// AccountSummary is the read model of one account returned by list and mutation calls.
type AccountSummary struct {
	ID          uint            `json:"id"`
	AccountType string          `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MarshalJSON writes Balance as a number with two decimals, e.g. 1250.00.
func (a AccountSummary) MarshalJSON() ([]byte, error) {
	type alias AccountSummary
	return json.Marshal(struct {
		alias
		Balance json.Number `json:"balance"`
	}{alias(a), jsonAmount(a.Balance)})
}

// ToAccountSummary projects a domain account.
func ToAccountSummary(a *account.Account) AccountSummary {
	return AccountSummary{
		ID:          a.ID,
		AccountType: a.AccountType,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAccountSummaries projects a list of domain accounts, preserving order.
func ToAccountSummaries(accounts []*account.Account) []AccountSummary {
	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToAccountSummary(a))
	}
	return out
}
