package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTransactionHistory_ResolvesRelatedType(t *testing.T) {
	related := uint(2)
	dangling := uint(99)
	desc := "Transfer to Savings account"
	accounts := map[uint]*account.Account{2: {ID: 2, AccountType: "Savings"}}

	linked := dto.ToTransactionHistory(&account.Transaction{
		ID: 1, Type: account.TypeTransfer, Description: &desc, RelatedAccountID: &related,
	}, accounts)
	require.NotNil(t, linked.RelatedAccountType)
	assert.Equal(t, "Savings", *linked.RelatedAccountType)

	orphan := dto.ToTransactionHistory(&account.Transaction{
		ID: 2, Type: account.TypeTransfer, RelatedAccountID: &dangling,
	}, accounts)
	assert.Equal(t, &dangling, orphan.RelatedAccountID)
	assert.Nil(t, orphan.RelatedAccountType)

	plain := dto.ToTransactionHistory(&account.Transaction{ID: 3, Type: account.TypeDeposit}, accounts)
	assert.Nil(t, plain.RelatedAccountID)
	assert.Nil(t, plain.RelatedAccountType)
}

func TestResult_JSON(t *testing.T) {
	ok := dto.Ok("done", dto.AccountSummary{
		ID: 1, AccountType: "Checking", Balance: decimal.RequireFromString("1250.00"), CreatedAt: time.Unix(0, 0).UTC(),
	})
	raw, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"success":true,"message":"done","data":{"id":1,"accountType":"Checking","balance":1250.00,"createdAt":"1970-01-01T00:00:00Z"}}`,
		string(raw))
	assert.Contains(t, string(raw), `"balance":1250.00`)

	fail := dto.Fail[string]("nope")
	raw, err = json.Marshal(fail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"nope"}`, string(raw))
}

func TestTransactionHistory_JSONAmountsAreFixedPointNumbers(t *testing.T) {
	desc := "Deposit to Checking account"
	h := dto.ToTransactionHistory(&account.Transaction{
		ID:           7,
		Type:         account.TypeDeposit,
		Amount:       decimal.RequireFromString("0.5"),
		BalanceAfter: decimal.RequireFromString("9999999999999999.99"),
		Description:  &desc,
		CreatedAt:    time.Unix(0, 0).UTC(),
	}, nil)

	raw, err := json.Marshal([]dto.TransactionHistory{h})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":0.50`)
	assert.Contains(t, string(raw), `"balanceAfter":9999999999999999.99`)
	assert.Contains(t, string(raw), `"type":"Deposit"`)
	assert.Contains(t, string(raw), `"relatedAccountType":null`)

	var back []dto.TransactionHistory
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, 1)
	assert.Equal(t, "9999999999999999.99", back[0].BalanceAfter.StringFixed(2))
	assert.True(t, decimal.RequireFromString("0.5").Equal(back[0].Amount))
}
