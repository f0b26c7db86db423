package execution

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
)

// TransactionStore is the Execution Engine's record of every transaction it
// has ever routed, independent of the idempotency map — it backs the query
// operations named in §4.7 (get_transaction, get_transaction_history,
// get_spending_analysis). The Execution Engine exclusively owns it.
type TransactionStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*payment.TransactionRecord
	byUser map[string][]*payment.TransactionRecord
}

// NewTransactionStore constructs an empty store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		byID:   make(map[uuid.UUID]*payment.TransactionRecord),
		byUser: make(map[string][]*payment.TransactionRecord),
	}
}

// Save records (or re-records, after a state transition) a transaction.
func (s *TransactionStore) Save(record *payment.TransactionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[record.TransactionID]; !exists {
		s.byUser[record.UserID] = append(s.byUser[record.UserID], record)
	}
	s.byID[record.TransactionID] = record
}

// GetTransaction looks up a single transaction by ID.
func (s *TransactionStore) GetTransaction(id uuid.UUID) (*payment.TransactionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.byID[id]
	return record, ok
}

// GetTransactionHistory returns a user's transactions within [start, end],
// sorted descending by created_at, capped at limit (0 means unlimited).
func (s *TransactionStore) GetTransactionHistory(userID string, limit int, start, end time.Time) []*payment.TransactionRecord {
	s.mu.RLock()
	all := append([]*payment.TransactionRecord(nil), s.byUser[userID]...)
	s.mu.RUnlock()

	var filtered []*payment.TransactionRecord
	for _, r := range all {
		if !r.CreatedAt.Before(start) && !r.CreatedAt.After(end) {
			filtered = append(filtered, r)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// MerchantSpend is one row of a spending-analysis breakdown.
type MerchantSpend struct {
	MerchantVPA string
	Amount      decimal.Decimal
}

// SpendingAnalysis is the result of get_spending_analysis: total spend,
// count, and a per-merchant breakdown sorted descending by amount, scoped
// to this engine's own transaction log (§1 Non-goal: no ledger beyond
// that feedback loop).
type SpendingAnalysis struct {
	TotalSpend       decimal.Decimal
	TransactionCount int
	Breakdown        []MerchantSpend
	PeriodStart      time.Time
	PeriodEnd        time.Time
}

// GetSpendingAnalysis aggregates a user's COMPLETED transactions within
// [start, end] by merchant.
func (s *TransactionStore) GetSpendingAnalysis(userID string, start, end time.Time) SpendingAnalysis {
	s.mu.RLock()
	all := append([]*payment.TransactionRecord(nil), s.byUser[userID]...)
	s.mu.RUnlock()

	totals := make(map[string]decimal.Decimal)
	order := []string{}
	total := decimal.Zero
	count := 0

	for _, r := range all {
		if r.State != payment.StateCompleted {
			continue
		}
		if r.CreatedAt.Before(start) || r.CreatedAt.After(end) {
			continue
		}
		if _, seen := totals[r.MerchantVPA]; !seen {
			order = append(order, r.MerchantVPA)
			totals[r.MerchantVPA] = decimal.Zero
		}
		totals[r.MerchantVPA] = totals[r.MerchantVPA].Add(r.Amount.Amount())
		total = total.Add(r.Amount.Amount())
		count++
	}

	breakdown := make([]MerchantSpend, 0, len(order))
	for _, vpa := range order {
		breakdown = append(breakdown, MerchantSpend{MerchantVPA: vpa, Amount: totals[vpa]})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Amount.GreaterThan(breakdown[j].Amount)
	})

	return SpendingAnalysis{
		TotalSpend:       total,
		TransactionCount: count,
		Breakdown:        breakdown,
		PeriodStart:      start,
		PeriodEnd:        end,
	}
}
