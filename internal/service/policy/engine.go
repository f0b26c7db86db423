package policy

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/infrastructure/metrics"
	"github.com/arjuniyer/caps-payment-core/internal/service/brand"
)

// Engine is the Policy Engine (C5): a fixed, ordered rule set evaluated
// against one intent/user/merchant triple, composed into a single
// PolicyResult. The Engine holds no per-evaluation state.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine wires the full rule catalog in catalog order.
func NewEngine(cfg Config, registry *brand.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:  NewRuleSet(cfg, registry),
		logger: logger,
	}
}

// Evaluate runs every rule against the given triple and composes the
// result per §4.5. A PAYMENT intent missing required fields short-circuits
// to DENY before any rule runs.
func (e *Engine) Evaluate(intent payment.Intent, user payment.UserContext, merchant payment.MerchantContext) payment.PolicyResult {
	start := time.Now()

	if missing := intent.MissingFields(); len(missing) > 0 {
		result := payment.PolicyResult{
			Decision: payment.DecisionDeny,
			Reason:   fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")),
		}
		metrics.RecordPolicyDecision(string(result.Decision), time.Since(start))
		return result
	}

	var violations []payment.RuleViolation
	var passed []string

	for _, rule := range e.rules {
		ok, violation := e.safeEvaluate(rule, intent, user, merchant)
		if ok {
			passed = append(passed, rule.Name())
			continue
		}
		violations = append(violations, *violation)
		metrics.RecordRuleViolation(violation.RuleName, string(violation.Severity))
	}

	result := e.composeDecision(violations, passed)
	metrics.RecordPolicyDecision(string(result.Decision), time.Since(start))
	return result
}

// safeEvaluate isolates a single rule's panic so that a failing rule never
// crashes the engine (§7): any panic becomes a high-severity "rule error"
// violation naming the offending rule.
func (e *Engine) safeEvaluate(rule Rule, intent payment.Intent, user payment.UserContext, merchant payment.MerchantContext) (passed bool, violation *payment.RuleViolation) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule panicked during evaluation",
				zap.String("rule", rule.Name()),
				zap.Any("recovered", r),
			)
			passed = false
			violation = &payment.RuleViolation{
				RuleName: rule.Name(),
				Category: rule.Category(),
				Severity: payment.SeverityHigh,
				Message:  fmt.Sprintf("rule error: %v", r),
			}
		}
	}()
	return rule.Evaluate(intent, user, merchant)
}

// composeDecision implements the severity cascade: any critical violation
// denies outright; otherwise high escalates to VERIFY; otherwise any
// medium/low violation still requires VERIFY, with a softer reason.
// Absent any violation, the intent is APPROVEd. RiskScore is the clamped
// sum of every violation's severity weight, telemetry only.
func (e *Engine) composeDecision(violations []payment.RuleViolation, passed []string) payment.PolicyResult {
	result := payment.PolicyResult{
		Violations:  violations,
		PassedRules: passed,
	}

	var riskScore float64
	for _, v := range violations {
		riskScore += v.Severity.Weight()
	}
	if riskScore > 1 {
		riskScore = 1
	}
	result.RiskScore = riskScore

	if len(violations) == 0 {
		result.Decision = payment.DecisionApprove
		result.Reason = "All policy checks passed"
		return result
	}

	if critical := firstWithSeverity(violations, payment.SeverityCritical); critical != nil {
		result.Decision = payment.DecisionDeny
		result.Reason = fmt.Sprintf("Critical security violation: %s", critical.Message)
		return result
	}

	if highs := messagesWithSeverity(violations, payment.SeverityHigh); len(highs) > 0 {
		result.Decision = payment.DecisionVerify
		result.Reason = strings.Join(highs, "; ")
		return result
	}

	softs := messagesWithSeverity(violations, payment.SeverityMedium)
	softs = append(softs, messagesWithSeverity(violations, payment.SeverityLow)...)
	result.Decision = payment.DecisionVerify
	result.Reason = fmt.Sprintf("Requires additional verification: %s", strings.Join(softs, "; "))
	return result
}

func firstWithSeverity(violations []payment.RuleViolation, severity payment.Severity) *payment.RuleViolation {
	for i := range violations {
		if violations[i].Severity == severity {
			return &violations[i]
		}
	}
	return nil
}

func messagesWithSeverity(violations []payment.RuleViolation, severity payment.Severity) []string {
	var out []string
	for _, v := range violations {
		if v.Severity == severity {
			out = append(out, v.Message)
		}
	}
	return out
}
