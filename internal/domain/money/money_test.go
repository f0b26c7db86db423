package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		amount    decimal.Decimal
		currency  string
		wantErr   bool
		wantCurr  string
	}{
		{"positive amount", decimal.NewFromInt(100), "INR", false, "INR"},
		{"zero amount", decimal.Zero, "INR", false, "INR"},
		{"negative amount rejected", decimal.NewFromInt(-1), "INR", true, ""},
		{"defaults currency", decimal.NewFromInt(5), "", false, DefaultCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.amount, tt.currency)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCurr, m.Currency())
			assert.True(t, tt.amount.Equal(m.Amount()))
		})
	}
}

func TestMoney_GreaterThan(t *testing.T) {
	a := MustNew(decimal.NewFromInt(500), "INR")
	b := MustNew(decimal.NewFromInt(100), "INR")
	assert.True(t, a.GreaterThan(b))
	assert.False(t, b.GreaterThan(a))
}

func TestMoney_GreaterThan_CurrencyMismatchPanics(t *testing.T) {
	a := MustNew(decimal.NewFromInt(500), "INR")
	b := MustNew(decimal.NewFromInt(100), "USD")
	assert.Panics(t, func() { a.GreaterThan(b) })
}

func TestMoney_Add(t *testing.T) {
	a := MustNew(decimal.NewFromInt(100), "INR")
	b := MustNew(decimal.NewFromInt(50), "INR")
	sum := a.Add(b)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := MustNew(decimal.NewFromFloat(123.45), "INR")
	data, err := m.MarshalJSON()
	require.NoError(t, err)

	var out Money
	require.NoError(t, out.UnmarshalJSON(data))
	assert.True(t, m.Equal(out))
}
