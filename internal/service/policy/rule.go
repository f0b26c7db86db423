// Package policy implements the Rule Framework & Rule Set (C4) and the
// Policy Engine (C5): a common rule contract, the concrete rule catalog,
// and composition of rule outcomes into a single PolicyResult.
package policy

import "github.com/arjuniyer/caps-payment-core/internal/domain/payment"

// Rule is the common contract every policy rule satisfies. A rule is pure
// with respect to its inputs: it never mutates the store, and a violation
// is present if and only if passed is false.
type Rule interface {
	Name() string
	Category() payment.Category
	Description() string
	Severity() payment.Severity
	Evaluate(intent payment.Intent, user payment.UserContext, merchant payment.MerchantContext) (passed bool, violation *payment.RuleViolation)
}

// baseRule factors out the static metadata every concrete rule carries, so
// rule types only need to implement Evaluate.
type baseRule struct {
	name        string
	category    payment.Category
	description string
	severity    payment.Severity
}

func (b baseRule) Name() string               { return b.name }
func (b baseRule) Category() payment.Category { return b.category }
func (b baseRule) Description() string        { return b.description }
func (b baseRule) Severity() payment.Severity { return b.severity }

func (b baseRule) fail(message string, details map[string]interface{}) (bool, *payment.RuleViolation) {
	return false, &payment.RuleViolation{
		RuleName: b.name,
		Category: b.category,
		Severity: b.severity,
		Message:  message,
		Details:  details,
	}
}

func pass() (bool, *payment.RuleViolation) {
	return true, nil
}
