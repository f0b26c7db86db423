package payment

// Decision is the Policy Engine's final verdict.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionDeny    Decision = "DENY"
	DecisionVerify  Decision = "VERIFY"
)

// PolicyResult is the composed outcome of a policy evaluation. Same inputs
// always produce the same PolicyResult: the Policy Engine holds no state.
type PolicyResult struct {
	Decision    Decision
	RiskScore   float64
	Violations  []RuleViolation
	PassedRules []string
	Reason      string
}

// HasSeverity reports whether any violation carries exactly the given
// severity.
func (p PolicyResult) HasSeverity(s Severity) bool {
	for _, v := range p.Violations {
		if v.Severity == s {
			return true
		}
	}
	return false
}
