package execution

import "time"

// Config carries the Execution Engine's numeric knobs named in spec §6.
type Config struct {
	FailureRate    float64
	IdempotencyTTL time.Duration
}

// DefaultConfig matches the literal values in §6: failure_rate=0.05,
// idempotency_ttl_seconds=86400.
func DefaultConfig() Config {
	return Config{
		FailureRate:    0.05,
		IdempotencyTTL: 24 * time.Hour,
	}
}
