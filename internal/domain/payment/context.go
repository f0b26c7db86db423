package payment

import (
	"time"

	"github.com/arjuniyer/caps-payment-core/internal/domain/money"
)

// UserContext is the per-payer snapshot. It is mutated only by the
// Execution Engine's feedback path and by the surrounding system's session
// tracking (out of scope here) — the policy engine only ever reads it.
type UserContext struct {
	UserID               string
	WalletBalance        money.Money
	DailySpendToday       money.Money
	TransactionsToday     int
	TransactionsLast5Min  int
	DeviceFingerprint     string
	IsKnownDevice         bool
	SessionAgeSeconds     int
	AccountAgeDays        int
	TrustScore            float64
	KnownContacts         map[string]struct{}
	LastTransactionTime   *time.Time
}

// KnowsContact reports whether the given merchant VPA is in the user's
// known-contacts set.
func (u UserContext) KnowsContact(merchantVPA string) bool {
	if u.KnownContacts == nil {
		return false
	}
	_, ok := u.KnownContacts[merchantVPA]
	return ok
}

// RiskState is the categorical label governing merchant policy gating.
// States form a monotone progression NEW -> TRUSTED -> WATCHLIST -> BLOCKED;
// BLOCKED is terminal except for an out-of-scope manual override.
type RiskState string

const (
	RiskNew       RiskState = "NEW"
	RiskTrusted   RiskState = "TRUSTED"
	RiskWatchlist RiskState = "WATCHLIST"
	RiskBlocked   RiskState = "BLOCKED"
)

// rank gives the monotone ordering used to assert no regression in tests
// and invariant checks (§8: no direct NEW->WATCHLIST, no regression from
// BLOCKED).
var rank = map[RiskState]int{
	RiskNew:       0,
	RiskTrusted:   1,
	RiskWatchlist: 2,
	RiskBlocked:   3,
}

// AtLeast reports whether r is ordered at or after other along the
// NEW < TRUSTED < WATCHLIST < BLOCKED progression.
func (r RiskState) AtLeast(other RiskState) bool {
	return rank[r] >= rank[other]
}

// MerchantContext is the per-payee snapshot owned exclusively by the Fraud
// Intelligence Store; every other component reads a derived copy.
type MerchantContext struct {
	MerchantVPA             string
	ReputationScore          float64
	IsWhitelisted            bool
	TotalTransactions        int
	SuccessfulTransactions    int
	RefundRate                float64
	FraudReports              int
	RiskState                 RiskState
	FirstSeen                 time.Time
}

// DefaultMerchantContext synthesizes the context for a merchant the store
// has never observed: risk_state=NEW, zero counters, reputation 0.5.
func DefaultMerchantContext(merchantVPA string, now time.Time) MerchantContext {
	return MerchantContext{
		MerchantVPA:      merchantVPA,
		ReputationScore:  0.5,
		RiskState:        RiskNew,
		FirstSeen:        now,
	}
}
