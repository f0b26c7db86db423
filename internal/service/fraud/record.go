// Package fraud implements the Fraud Intelligence Store (C3): the single
// writer for per-merchant counters and risk state. It exposes narrow
// Reader and Recorder capabilities rather than its full interface, so the
// Policy Engine and Execution Engine each depend on only what they use —
// breaking the execution -> store -> policy feedback cycle at the type
// level.
package fraud

import (
	"time"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/service/risk"
)

// MerchantRecord is the full record the store owns, including the raw
// counters (total_refunds) that §3's public MerchantContext only exposes
// as a derived refund_rate. This is the persistence schema named in §6.
type MerchantRecord struct {
	MerchantVPA       string
	ReputationScore   float64
	IsWhitelisted     bool
	TotalTransactions int
	TotalRefunds      int
	FraudReports      int
	RiskState         payment.RiskState
	FirstSeen         time.Time
	LastUpdated       time.Time
}

// defaultRecord synthesizes the record for a merchant never seen before:
// risk_state=NEW, zero counters, reputation 0.5 (§4.3).
func defaultRecord(merchantVPA string, now time.Time) MerchantRecord {
	return MerchantRecord{
		MerchantVPA:     merchantVPA,
		ReputationScore: 0.5,
		RiskState:       payment.RiskNew,
		FirstSeen:       now,
		LastUpdated:     now,
	}
}

// ToContext derives the read-only snapshot every other component
// consumes. Every transaction counted by the store is by construction a
// successful one (failed settlements never reach update_transaction_stats
// with success=true), so successful_transactions mirrors total_transactions.
func (m MerchantRecord) ToContext() payment.MerchantContext {
	return payment.MerchantContext{
		MerchantVPA:            m.MerchantVPA,
		ReputationScore:        m.ReputationScore,
		IsWhitelisted:          m.IsWhitelisted,
		TotalTransactions:      m.TotalTransactions,
		SuccessfulTransactions: m.TotalTransactions,
		RefundRate:             risk.RefundRate(m.TotalTransactions, m.TotalRefunds),
		FraudReports:           m.FraudReports,
		RiskState:              m.RiskState,
		FirstSeen:              m.FirstSeen,
	}
}
