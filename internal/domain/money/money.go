// Package money provides a decimal-backed monetary value object. The core
// treats amount as a non-negative decimal in a single currency (spec
// Non-goal: no multi-fiat reasoning), so this is deliberately narrower than
// a general-purpose money type: one currency per process, no FX.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a PaymentIntent omits currency.
const DefaultCurrency = "INR"

// Money is an immutable non-negative amount in a single currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New validates and constructs a Money value. Negative amounts are rejected:
// the core never represents a payment of negative value.
func New(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("amount cannot be negative: %s", amount.String())
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustNew constructs Money and panics on error. Reserved for constants and
// tests, never for request-path values.
func MustNew(amount decimal.Decimal, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// FromFloat builds Money from a float64, primarily for call-site brevity in
// tests and the demo CLI.
func FromFloat(amount float64, currency string) (Money, error) {
	return New(decimal.NewFromFloat(amount), currency)
}

// Zero returns the zero value in the given currency.
func Zero(currency string) Money {
	return MustNew(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// GreaterThan reports whether m > other. Panics on currency mismatch — the
// core never compares cross-currency amounts.
func (m Money) GreaterThan(other Money) bool {
	m.requireSameCurrency(other)
	return m.amount.GreaterThan(other.amount)
}

func (m Money) Add(other Money) Money {
	m.requireSameCurrency(other)
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) requireSameCurrency(other Money) {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot compare different currencies: %s vs %s", m.currency, other.currency))
	}
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

func (m Money) MarshalJSON() ([]byte, error) {
	data := struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	}
	return json.Marshal(data)
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var temp struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(temp.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	parsed, err := New(amount, temp.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
