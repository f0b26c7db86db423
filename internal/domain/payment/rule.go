package payment

// Severity is both a per-rule constant and the composition input for the
// final decision. Derivation of the decision is a total function of the
// maximum observed severity.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityWeight is used for risk-score composition (§4.5): telemetry
// only, never gating.
var severityWeight = map[Severity]float64{
	SeverityLow:      0.05,
	SeverityMedium:   0.15,
	SeverityHigh:     0.35,
	SeverityCritical: 1.0,
}

func (s Severity) Weight() float64 {
	return severityWeight[s]
}

// Category groups rules for organization and for evaluation order.
type Category string

const (
	CategoryHardInvariant Category = "HARD_INVARIANT"
	CategoryVelocity      Category = "VELOCITY"
	CategoryBehavioral    Category = "BEHAVIORAL"
	CategoryTrust         Category = "TRUST"
)

// CategoryOrder is the fixed evaluation order §4.5 requires: within a
// category, rules run in registration order.
var CategoryOrder = []Category{
	CategoryHardInvariant,
	CategoryVelocity,
	CategoryBehavioral,
	CategoryTrust,
}

// RuleViolation is emitted by a failing rule.
type RuleViolation struct {
	RuleName string
	Category Category
	Severity Severity
	Message  string
	Details  map[string]interface{}
}
