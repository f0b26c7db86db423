// Package metrics exposes Prometheus instrumentation for the payment
// authorization core: decisions by outcome, execution outcomes by error
// code, and policy evaluation latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	policyDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caps",
			Subsystem: "policy",
			Name:      "decisions_total",
			Help:      "Total number of policy decisions by outcome",
		},
		[]string{"decision"},
	)

	policyEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "caps",
			Subsystem: "policy",
			Name:      "evaluation_duration_seconds",
			Help:      "Policy engine evaluation latency",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15), // 10µs to ~160ms
		},
	)

	ruleViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caps",
			Subsystem: "policy",
			Name:      "rule_violations_total",
			Help:      "Total number of rule violations by rule and severity",
		},
		[]string{"rule", "severity"},
	)

	executionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caps",
			Subsystem: "execution",
			Name:      "outcomes_total",
			Help:      "Total number of settlement attempts by success and error code",
		},
		[]string{"success", "code"},
	)

	executionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "caps",
			Subsystem: "execution",
			Name:      "duration_seconds",
			Help:      "Settlement execution latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to ~3.2s
		},
	)

	merchantRiskTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caps",
			Subsystem: "fraud",
			Name:      "merchant_risk_transitions_total",
			Help:      "Total number of merchant risk state transitions",
		},
		[]string{"from", "to"},
	)

	activeIdempotencyEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "caps",
			Subsystem: "execution",
			Name:      "idempotency_entries",
			Help:      "Number of non-expired idempotency entries held in memory",
		},
	)
)

// RecordPolicyDecision records a completed policy evaluation.
func RecordPolicyDecision(decision string, duration time.Duration) {
	policyDecisionsTotal.WithLabelValues(decision).Inc()
	policyEvaluationDuration.Observe(duration.Seconds())
}

// RecordRuleViolation records one rule firing.
func RecordRuleViolation(rule, severity string) {
	ruleViolationsTotal.WithLabelValues(rule, severity).Inc()
}

// RecordExecution records the outcome of one settlement attempt.
func RecordExecution(success bool, code string, duration time.Duration) {
	successLabel := "false"
	if success {
		successLabel = "true"
	}
	executionOutcomesTotal.WithLabelValues(successLabel, code).Inc()
	executionDuration.Observe(duration.Seconds())
}

// RecordMerchantRiskTransition records a risk state machine transition.
func RecordMerchantRiskTransition(from, to string) {
	merchantRiskTransitionsTotal.WithLabelValues(from, to).Inc()
}

// SetActiveIdempotencyEntries reports the current idempotency map size.
func SetActiveIdempotencyEntries(count int) {
	activeIdempotencyEntries.Set(float64(count))
}
