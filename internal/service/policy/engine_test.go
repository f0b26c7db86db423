package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/service/brand"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), brand.Empty(), nil)
}

func TestEngine_ApprovesCleanPayment(t *testing.T) {
	engine := newTestEngine()
	result := engine.Evaluate(baseIntent(t, 50), baseUser(t), baseMerchant(t))

	assert.Equal(t, payment.DecisionApprove, result.Decision)
	assert.Empty(t, result.Violations)
	assert.Zero(t, result.RiskScore)
}

func TestEngine_MissingFieldsShortCircuitsToDeny(t *testing.T) {
	engine := newTestEngine()
	result := engine.Evaluate(payment.Intent{Type: payment.IntentPayment}, baseUser(t), baseMerchant(t))

	assert.Equal(t, payment.DecisionDeny, result.Decision)
	assert.Contains(t, result.Reason, "amount")
}

func TestEngine_CriticalViolationDenies(t *testing.T) {
	engine := newTestEngine()
	user := baseUser(t)
	user.WalletBalance = mustMoney(t, 10)

	result := engine.Evaluate(baseIntent(t, 100), user, baseMerchant(t))

	assert.Equal(t, payment.DecisionDeny, result.Decision)
	assert.Contains(t, result.Reason, "Critical security violation")
}

func TestEngine_HighSeverityOnlyRequiresVerify(t *testing.T) {
	engine := newTestEngine()
	user := baseUser(t)
	user.TransactionsLast5Min = 10

	result := engine.Evaluate(baseIntent(t, 50), user, baseMerchant(t))

	assert.Equal(t, payment.DecisionVerify, result.Decision)
	assert.True(t, result.HasSeverity(payment.SeverityHigh))
}

func TestEngine_MediumSeverityRequiresSoftVerify(t *testing.T) {
	engine := newTestEngine()
	user := baseUser(t)
	user.TrustScore = 0.1

	result := engine.Evaluate(baseIntent(t, 50), user, baseMerchant(t))

	assert.Equal(t, payment.DecisionVerify, result.Decision)
	assert.Contains(t, result.Reason, "Requires additional verification")
}

func TestEngine_BlockedMerchantDeniesEvenWithCleanUser(t *testing.T) {
	engine := newTestEngine()
	merchant := baseMerchant(t)
	merchant.RiskState = payment.RiskBlocked

	result := engine.Evaluate(baseIntent(t, 10), baseUser(t), merchant)

	assert.Equal(t, payment.DecisionDeny, result.Decision)
}

func TestEngine_WatchlistMerchantDeniesAsCritical(t *testing.T) {
	engine := newTestEngine()
	merchant := baseMerchant(t)
	merchant.RiskState = payment.RiskWatchlist

	result := engine.Evaluate(baseIntent(t, 10), baseUser(t), merchant)

	assert.Equal(t, payment.DecisionDeny, result.Decision)
}

func TestEngine_RiskScoreClampedToOne(t *testing.T) {
	engine := newTestEngine()
	user := baseUser(t)
	user.WalletBalance = mustMoney(t, 10)
	user.DailySpendToday = mustMoney(t, 1999)
	merchant := baseMerchant(t)
	merchant.RiskState = payment.RiskBlocked

	result := engine.Evaluate(baseIntent(t, 100), user, merchant)

	assert.LessOrEqual(t, result.RiskScore, 1.0)
}

func TestEngine_NonPaymentIntentApproves(t *testing.T) {
	engine := newTestEngine()
	result := engine.Evaluate(payment.Intent{Type: payment.IntentBalanceInquiry}, payment.UserContext{}, payment.MerchantContext{})

	assert.Equal(t, payment.DecisionApprove, result.Decision)
}
