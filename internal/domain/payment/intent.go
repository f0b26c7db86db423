// Package payment holds the shared data contracts passed between every
// component of the authorization core: intents, contextual snapshots,
// policy outcomes, and transaction records. Components never expose
// mutable references to their internal state across these boundaries —
// only these value types cross.
package payment

import (
	"github.com/shopspring/decimal"

	"github.com/arjuniyer/caps-payment-core/internal/domain/money"
)

// IntentType classifies a parsed user request.
type IntentType string

const (
	IntentPayment            IntentType = "PAYMENT"
	IntentBalanceInquiry     IntentType = "BALANCE_INQUIRY"
	IntentTransactionHistory IntentType = "TRANSACTION_HISTORY"
	IntentUnknown            IntentType = "UNKNOWN"
)

// Intent is the request unit produced by the upstream (out-of-scope)
// natural-language interpreter.
type Intent struct {
	Type            IntentType
	Amount          *money.Money
	MerchantVPA     string
	ConfidenceScore float64
	OriginalText    string
}

// RequiredFieldsPresent reports whether a PAYMENT intent carries the fields
// a policy evaluation requires: a positive amount and a merchant VPA.
// Non-PAYMENT intents have no required fields at this layer.
func (i Intent) RequiredFieldsPresent() bool {
	if i.Type != IntentPayment {
		return true
	}
	if i.Amount == nil || !i.Amount.IsPositive() {
		return false
	}
	return i.MerchantVPA != ""
}

// MissingFields lists which required PAYMENT fields are absent, for the
// ValidationError message.
func (i Intent) MissingFields() []string {
	if i.Type != IntentPayment {
		return nil
	}
	var missing []string
	if i.Amount == nil || !i.Amount.IsPositive() {
		missing = append(missing, "amount")
	}
	if i.MerchantVPA == "" {
		missing = append(missing, "merchant_vpa")
	}
	return missing
}

// AmountOrZero returns the intent's amount, or a zero Money value in the
// default currency when none was supplied (non-PAYMENT intents).
func (i Intent) AmountOrZero() money.Money {
	if i.Amount != nil {
		return *i.Amount
	}
	return money.Zero(money.DefaultCurrency)
}

// AmountDecimal is a convenience accessor used by rules that compare
// thresholds expressed as decimal.Decimal.
func (i Intent) AmountDecimal() decimal.Decimal {
	return i.AmountOrZero().Amount()
}
