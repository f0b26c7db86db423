package policy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjuniyer/caps-payment-core/internal/domain/money"
	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/service/brand"
)

func mustMoney(t *testing.T, amount float64) money.Money {
	t.Helper()
	m, err := money.FromFloat(amount, money.DefaultCurrency)
	require.NoError(t, err)
	return m
}

func baseIntent(t *testing.T, amount float64) payment.Intent {
	t.Helper()
	m := mustMoney(t, amount)
	return payment.Intent{Type: payment.IntentPayment, Amount: &m, MerchantVPA: "merchant@upi"}
}

func baseUser(t *testing.T) payment.UserContext {
	t.Helper()
	return payment.UserContext{
		UserID:           "user-1",
		WalletBalance:    mustMoney(t, 10000),
		DailySpendToday:  mustMoney(t, 0),
		IsKnownDevice:    true,
		TrustScore:       0.9,
	}
}

func baseMerchant(t *testing.T) payment.MerchantContext {
	t.Helper()
	return payment.MerchantContext{
		MerchantVPA:     "merchant@upi",
		ReputationScore: 0.8,
		RiskState:       payment.RiskTrusted,
		FirstSeen:       time.Now().Add(-30 * 24 * time.Hour),
	}
}

func TestBalanceSufficientRule(t *testing.T) {
	rule := &balanceSufficientRule{baseRule: baseRule{severity: payment.SeverityCritical}}
	user := baseUser(t)
	user.WalletBalance = mustMoney(t, 50)

	ok, violation := rule.Evaluate(baseIntent(t, 100), user, baseMerchant(t))
	assert.False(t, ok)
	require.NotNil(t, violation)
	assert.Equal(t, payment.SeverityCritical, violation.Severity)
}

func TestDailyLimitRule(t *testing.T) {
	rule := &dailyLimitRule{baseRule: baseRule{severity: payment.SeverityCritical}, limit: decimal.NewFromInt(2000)}
	user := baseUser(t)
	user.DailySpendToday = mustMoney(t, 1950)

	ok, _ := rule.Evaluate(baseIntent(t, 100), user, baseMerchant(t))
	assert.False(t, ok)
}

func TestVelocityBurstRule(t *testing.T) {
	rule := &velocityBurstRule{baseRule: baseRule{severity: payment.SeverityHigh}, max: 10}
	user := baseUser(t)
	user.TransactionsLast5Min = 10

	ok, _ := rule.Evaluate(baseIntent(t, 10), user, baseMerchant(t))
	assert.False(t, ok)
}

func TestNewDeviceCapRule(t *testing.T) {
	rule := &newDeviceCapRule{baseRule: baseRule{severity: payment.SeverityHigh}, cap: decimal.NewFromInt(200)}
	user := baseUser(t)
	user.IsKnownDevice = false

	ok, _ := rule.Evaluate(baseIntent(t, 201), user, baseMerchant(t))
	assert.False(t, ok)

	ok, _ = rule.Evaluate(baseIntent(t, 50), user, baseMerchant(t))
	assert.True(t, ok)
}

func TestMerchantReputationRule(t *testing.T) {
	rule := &merchantReputationRule{baseRule: baseRule{severity: payment.SeverityHigh}, min: 0.3}
	merchant := baseMerchant(t)
	merchant.ReputationScore = 0.1

	ok, _ := rule.Evaluate(baseIntent(t, 10), baseUser(t), merchant)
	assert.False(t, ok)
}

func TestFraudReportsRule(t *testing.T) {
	rule := &fraudReportsRule{baseRule: baseRule{severity: payment.SeverityHigh}, threshold: 5}
	merchant := baseMerchant(t)
	merchant.FraudReports = 5

	ok, _ := rule.Evaluate(baseIntent(t, 10), baseUser(t), merchant)
	assert.False(t, ok)
}

func TestBrandImpersonationRule(t *testing.T) {
	registry := brand.NewRegistry(map[string][]string{"paypal": {"paypal"}})
	rule := &brandImpersonationRule{baseRule: baseRule{severity: payment.SeverityCritical}, registry: registry}

	intent := baseIntent(t, 10)
	intent.MerchantVPA = "paypa1@upi"
	merchant := baseMerchant(t)
	merchant.MerchantVPA = "paypa1@upi"

	ok, violation := rule.Evaluate(intent, baseUser(t), merchant)
	assert.False(t, ok)
	require.NotNil(t, violation)
}

func TestMerchantRiskStateRule(t *testing.T) {
	rule := &merchantRiskStateRule{baseRule: baseRule{severity: payment.SeverityCritical}}

	blocked := baseMerchant(t)
	blocked.RiskState = payment.RiskBlocked
	ok, _ := rule.Evaluate(baseIntent(t, 10), baseUser(t), blocked)
	assert.False(t, ok)

	watchlist := baseMerchant(t)
	watchlist.RiskState = payment.RiskWatchlist
	ok, _ = rule.Evaluate(baseIntent(t, 10), baseUser(t), watchlist)
	assert.False(t, ok)

	trusted := baseMerchant(t)
	ok, _ = rule.Evaluate(baseIntent(t, 10), baseUser(t), trusted)
	assert.True(t, ok)
}

func TestNewPayeeHighValueRule(t *testing.T) {
	rule := &newPayeeHighValueRule{baseRule: baseRule{severity: payment.SeverityMedium}, threshold: decimal.NewFromInt(500)}
	user := baseUser(t)

	ok, _ := rule.Evaluate(baseIntent(t, 501), user, baseMerchant(t))
	assert.False(t, ok)

	user.KnownContacts = map[string]struct{}{"merchant@upi": {}}
	ok, _ = rule.Evaluate(baseIntent(t, 501), user, baseMerchant(t))
	assert.True(t, ok)
}

func TestTrustScoreFloorRule(t *testing.T) {
	rule := &trustScoreFloorRule{baseRule: baseRule{severity: payment.SeverityMedium}, floor: 0.4}
	user := baseUser(t)
	user.TrustScore = 0.1

	ok, _ := rule.Evaluate(baseIntent(t, 10), user, baseMerchant(t))
	assert.False(t, ok)
}

func TestRules_NonPaymentIntentsAlwaysPass(t *testing.T) {
	rules := NewRuleSet(DefaultConfig(), brand.Empty())
	intent := payment.Intent{Type: payment.IntentBalanceInquiry}
	for _, r := range rules {
		ok, _ := r.Evaluate(intent, payment.UserContext{}, payment.MerchantContext{})
		assert.True(t, ok, "rule %s should pass for non-payment intents", r.Name())
	}
}
