package dto

import (
	"encoding/json"
	"time"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// TransactionHistory is one row of an account's history. RelatedAccountType is resolved
// at read time and is nil when the transaction has no counterpart or the counterpart
// no longer exists.
type TransactionHistory struct {
	ID                 uint            `json:"id"`
	Type               account.Type    `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	BalanceAfter       decimal.Decimal `json:"balanceAfter"`
	Description        *string         `json:"description"`
	CreatedAt          time.Time       `json:"createdAt"`
	RelatedAccountID   *uint           `json:"relatedAccountId"`
	RelatedAccountType *string         `json:"relatedAccountType"`
}

// MarshalJSON writes Amount and BalanceAfter as numbers with two decimals.
func (h TransactionHistory) MarshalJSON() ([]byte, error) {
	type alias TransactionHistory
	return json.Marshal(struct {
		alias
		Amount       json.Number `json:"amount"`
		BalanceAfter json.Number `json:"balanceAfter"`
	}{alias(h), jsonAmount(h.Amount), jsonAmount(h.BalanceAfter)})
}

// ToTransactionHistory projects a transaction, looking the counterpart up in related.
func ToTransactionHistory(tx *account.Transaction, related map[uint]*account.Account) TransactionHistory {
	h := TransactionHistory{
		ID:               tx.ID,
		Type:             tx.Type,
		Amount:           tx.Amount,
		BalanceAfter:     tx.BalanceAfter,
		Description:      tx.Description,
		CreatedAt:        tx.CreatedAt,
		RelatedAccountID: tx.RelatedAccountID,
	}
	if tx.RelatedAccountID != nil {
		if acc, ok := related[*tx.RelatedAccountID]; ok && acc != nil {
			accountType := acc.AccountType
			h.RelatedAccountType = &accountType
		}
	}
	return h
}
