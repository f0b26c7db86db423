package orchestrator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/service/execution"
)

// Status is the outer classification of a Process call's outcome, per §6.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusExecuted  Status = "executed"
	StatusFailed    Status = "failed"
	StatusDenied    Status = "denied"
	StatusError     Status = "error"
)

// RiskInfo mirrors a PolicyResult for the response contract.
type RiskInfo struct {
	Score       float64
	Violations  []payment.RuleViolation
	PassedRules []string
	Reason      string
}

// UserState is the post-evaluation snapshot returned to the caller: §6
// names balance, daily_spend, daily_limit, trust_score, and up to 3 recent
// transactions.
type UserState struct {
	Balance            decimal.Decimal
	DailySpend         decimal.Decimal
	DailyLimit         decimal.Decimal
	TrustScore         float64
	RecentTransactions []*payment.TransactionRecord
}

// Response is the §6 Process(...) return value.
type Response struct {
	Status          Status
	Intent          payment.Intent
	PolicyDecision  payment.Decision
	ExecutionResult *execution.Result
	RiskInfo        RiskInfo
	UserState       UserState
	ErrorMessage    string
}

func riskInfoFrom(result payment.PolicyResult) RiskInfo {
	return RiskInfo{
		Score:       result.RiskScore,
		Violations:  result.Violations,
		PassedRules: result.PassedRules,
		Reason:      result.Reason,
	}
}

func userStateFrom(user payment.UserContext, dailyLimit decimal.Decimal, recent []*payment.TransactionRecord) UserState {
	return UserState{
		Balance:            user.WalletBalance.Amount(),
		DailySpend:         user.DailySpendToday.Amount(),
		DailyLimit:         dailyLimit,
		TrustScore:         user.TrustScore,
		RecentTransactions: recent,
	}
}

const recentTransactionLimit = 3

// recentWindow is a wide-open time range used when fetching "recent"
// transactions for the response's user_state, since §6 bounds the count
// (≤3) rather than a period.
func recentWindow(now time.Time) (time.Time, time.Time) {
	return now.AddDate(-10, 0, 0), now
}
