package policy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/service/brand"
)

// NewRuleSet builds the full rule catalog (§4.4) in the fixed evaluation
// order: HARD_INVARIANT, VELOCITY, BEHAVIORAL, TRUST, insertion order
// within each category.
func NewRuleSet(cfg Config, registry *brand.Registry) []Rule {
	return []Rule{
		&balanceSufficientRule{baseRule: baseRule{"BalanceSufficient", payment.CategoryHardInvariant, "amount must not exceed wallet balance", payment.SeverityCritical}},
		&dailyLimitRule{baseRule: baseRule{"DailyLimit", payment.CategoryHardInvariant, "daily spend must not exceed the configured limit", payment.SeverityCritical}, limit: cfg.DailyLimit},
		&velocityBurstRule{baseRule: baseRule{"VelocityBurst", payment.CategoryVelocity, "transactions in the last 5 minutes must stay under the velocity cap", payment.SeverityHigh}, max: cfg.VelocityMax},
		&newDeviceCapRule{baseRule: baseRule{"NewDeviceCap", payment.CategoryBehavioral, "unknown devices are capped at a lower transaction amount", payment.SeverityHigh}, cap: cfg.NewDeviceCap},
		&merchantReputationRule{baseRule: baseRule{"MerchantReputation", payment.CategoryBehavioral, "merchant reputation must meet the configured floor", payment.SeverityHigh}, min: cfg.MinMerchantReputation},
		&fraudReportsRule{baseRule: baseRule{"FraudReports", payment.CategoryBehavioral, "merchant fraud reports must stay under the threshold", payment.SeverityHigh}, threshold: cfg.FraudReportThreshold},
		&brandImpersonationRule{baseRule: baseRule{"BrandImpersonation", payment.CategoryBehavioral, "merchant VPA must not impersonate a registered brand", payment.SeverityCritical}, registry: registry},
		&merchantRiskStateRule{baseRule: baseRule{"MerchantRiskState", payment.CategoryBehavioral, "merchant must not be BLOCKED or WATCHLIST", payment.SeverityCritical}},
		&newPayeeHighValueRule{baseRule: baseRule{"NewPayeeHighValue", payment.CategoryTrust, "high-value payments to unfamiliar payees require review", payment.SeverityMedium}, threshold: cfg.NewPayeeHighValue},
		&trustScoreFloorRule{baseRule: baseRule{"TrustScoreFloor", payment.CategoryTrust, "user trust score must meet the configured floor", payment.SeverityMedium}, floor: cfg.TrustScoreFloor},
	}
}

// nonPayment reports whether the rule should short-circuit to pass because
// the intent isn't a PAYMENT — per §4.4, all payment-gating rules are a
// no-op for other intent types.
func nonPayment(intent payment.Intent) bool {
	return intent.Type != payment.IntentPayment
}

type balanceSufficientRule struct{ baseRule }

func (r *balanceSufficientRule) Evaluate(intent payment.Intent, user payment.UserContext, _ payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	if intent.AmountDecimal().GreaterThan(user.WalletBalance.Amount()) {
		return r.fail("Insufficient wallet balance", map[string]interface{}{
			"amount": intent.AmountDecimal().String(), "wallet_balance": user.WalletBalance.Amount().String(),
		})
	}
	return pass()
}

type dailyLimitRule struct {
	baseRule
	limit decimal.Decimal
}

func (r *dailyLimitRule) Evaluate(intent payment.Intent, user payment.UserContext, _ payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	projected := user.DailySpendToday.Amount().Add(intent.AmountDecimal())
	if projected.GreaterThan(r.limit) {
		return r.fail("Daily spending limit exceeded", map[string]interface{}{
			"projected_daily_spend": projected.String(), "limit": r.limit.String(),
		})
	}
	return pass()
}

type velocityBurstRule struct {
	baseRule
	max int
}

func (r *velocityBurstRule) Evaluate(intent payment.Intent, user payment.UserContext, _ payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	if user.TransactionsLast5Min >= r.max {
		return r.fail("Velocity burst limit exceeded", map[string]interface{}{
			"transactions_last_5min": user.TransactionsLast5Min, "max": r.max,
		})
	}
	return pass()
}

type newDeviceCapRule struct {
	baseRule
	cap decimal.Decimal
}

func (r *newDeviceCapRule) Evaluate(intent payment.Intent, user payment.UserContext, _ payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	if !user.IsKnownDevice && intent.AmountDecimal().GreaterThan(r.cap) {
		return r.fail("Amount exceeds new-device cap", map[string]interface{}{
			"amount": intent.AmountDecimal().String(), "cap": r.cap.String(),
		})
	}
	return pass()
}

type merchantReputationRule struct {
	baseRule
	min float64
}

func (r *merchantReputationRule) Evaluate(intent payment.Intent, _ payment.UserContext, merchant payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	if merchant.ReputationScore < r.min {
		return r.fail("Merchant reputation below threshold", map[string]interface{}{
			"reputation_score": merchant.ReputationScore, "min": r.min,
		})
	}
	return pass()
}

type fraudReportsRule struct {
	baseRule
	threshold int
}

func (r *fraudReportsRule) Evaluate(intent payment.Intent, _ payment.UserContext, merchant payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	if merchant.FraudReports >= r.threshold {
		return r.fail("Merchant has excessive fraud reports", map[string]interface{}{
			"fraud_reports": merchant.FraudReports, "threshold": r.threshold,
		})
	}
	return pass()
}

type brandImpersonationRule struct {
	baseRule
	registry *brand.Registry
}

func (r *brandImpersonationRule) Evaluate(intent payment.Intent, _ payment.UserContext, merchant payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	impersonating, matchedBrand := r.registry.CheckImpersonation(merchant.MerchantVPA)
	if impersonating {
		return r.fail(fmt.Sprintf("Brand Impersonation Detected: resembles %q", matchedBrand), map[string]interface{}{
			"matched_brand": matchedBrand,
		})
	}
	return pass()
}

type merchantRiskStateRule struct{ baseRule }

func (r *merchantRiskStateRule) Evaluate(intent payment.Intent, _ payment.UserContext, merchant payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	switch merchant.RiskState {
	case payment.RiskBlocked:
		return r.fail("Merchant is BLOCKED", map[string]interface{}{"risk_state": string(merchant.RiskState)})
	case payment.RiskWatchlist:
		return r.fail("Merchant is on WATCHLIST", map[string]interface{}{"risk_state": string(merchant.RiskState)})
	default:
		return pass()
	}
}

type newPayeeHighValueRule struct {
	baseRule
	threshold decimal.Decimal
}

func (r *newPayeeHighValueRule) Evaluate(intent payment.Intent, user payment.UserContext, merchant payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	if intent.AmountDecimal().GreaterThan(r.threshold) && !user.KnowsContact(merchant.MerchantVPA) {
		return r.fail("High-value payment to an unfamiliar payee", map[string]interface{}{
			"amount": intent.AmountDecimal().String(), "threshold": r.threshold.String(),
		})
	}
	return pass()
}

type trustScoreFloorRule struct {
	baseRule
	floor float64
}

func (r *trustScoreFloorRule) Evaluate(intent payment.Intent, user payment.UserContext, _ payment.MerchantContext) (bool, *payment.RuleViolation) {
	if nonPayment(intent) {
		return pass()
	}
	if user.TrustScore < r.floor {
		return r.fail("User trust score below threshold", map[string]interface{}{
			"trust_score": user.TrustScore, "floor": r.floor,
		})
	}
	return pass()
}
