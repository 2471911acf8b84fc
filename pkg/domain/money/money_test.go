package money_test

import (
	"testing"

	"github.com/amirasaad/atm/pkg/domain/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"whole amount", "250", nil},
		{"two decimals", "12.50", nil},
		{"one cent", "0.01", nil},
		{"zero", "0", money.ErrAmountMustBePositive},
		{"negative", "-5.00", money.ErrAmountMustBePositive},
		{"three decimals", "1.005", money.ErrTooManyDecimalPlaces},
		{"trailing zero decimals", "1.500", nil},
		{"largest storable", "9999999999999999.99", nil},
		{"too large", "10000000000000000", money.ErrAmountTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := money.Validate(decimal.RequireFromString(tt.amount))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse(t *testing.T) {
	d, err := money.Parse("300.00")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(300)))

	_, err = money.Parse("abc")
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.Parse("-1")
	assert.ErrorIs(t, err, money.ErrAmountMustBePositive)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$250.00", money.Format(decimal.NewFromInt(250)))
	assert.Equal(t, "$12.50", money.Format(decimal.RequireFromString("12.5")))
	assert.Equal(t, "$0.01", money.Format(decimal.RequireFromString("0.01")))
}

func TestFits(t *testing.T) {
	assert.True(t, money.Fits(decimal.RequireFromString("9999999999999999.99")))
	assert.False(t, money.Fits(decimal.RequireFromString("10000000000000000.00")))
}
