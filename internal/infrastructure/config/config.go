// Package config loads the payment authorization core's configuration:
// defaults, an optional YAML file, then environment variable overrides,
// in that precedence order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/arjuniyer/caps-payment-core/internal/service/execution"
	"github.com/arjuniyer/caps-payment-core/internal/service/policy"
	"github.com/arjuniyer/caps-payment-core/internal/service/risk"
)

// Config is the full set of recognized options (spec §6), plus the
// ambient environment/log_level/persistence fields every teacher-style
// service carries.
type Config struct {
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	BrandRegistryPath string `koanf:"brand_registry_path"`

	FailureRate           float64       `koanf:"failure_rate"`
	IdempotencyTTLSeconds int           `koanf:"idempotency_ttl_seconds"`
	IdempotencyTTL        time.Duration `koanf:"-"` // computed

	MinTrustedTxns         int     `koanf:"min_trusted_txns"`
	MinTrustedDays         int     `koanf:"min_trusted_days"`
	MaxRefundRateTrusted   float64 `koanf:"max_refund_rate_trusted"`
	MaxRefundRateWatchlist float64 `koanf:"max_refund_rate_watchlist"`

	DailyLimit            float64 `koanf:"daily_limit"`
	VelocityWindowSeconds int     `koanf:"velocity_window_seconds"`
	VelocityMax           int     `koanf:"velocity_max"`
	NewDeviceCap          float64 `koanf:"new_device_cap"`
	MinMerchantReputation float64 `koanf:"min_merchant_reputation"`
	FraudReportThreshold  int     `koanf:"fraud_report_threshold"`
	NewPayeeHighValue     float64 `koanf:"new_payee_high_value"`
	TrustScoreFloor       float64 `koanf:"trust_score_floor"`

	Persistence PersistenceConfig `koanf:"persistence"`
}

// PersistenceConfig selects and configures the Fraud Intelligence Store's
// backing Repository. An empty DSN means the in-memory implementation.
type PersistenceConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxConns        int           `koanf:"max_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

func defaults() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",

		FailureRate:           0.05,
		IdempotencyTTLSeconds: 86400,

		MinTrustedTxns:         5,
		MinTrustedDays:         7,
		MaxRefundRateTrusted:   0.20,
		MaxRefundRateWatchlist: 0.50,

		DailyLimit:            2000,
		VelocityWindowSeconds: 300,
		VelocityMax:           10,
		NewDeviceCap:          200,
		MinMerchantReputation: 0.3,
		FraudReportThreshold:  5,
		NewPayeeHighValue:     500,
		TrustScoreFloor:       0.4,

		Persistence: PersistenceConfig{
			MaxConns:        10,
			ConnMaxLifetime: 30 * time.Minute,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file at path (a
// missing file is tolerated, mirroring the brand registry's own
// tolerance), then CAPS_-prefixed environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// A missing or unparseable config file is not fatal: the core
			// runs on defaults plus environment overrides.
		}
	}

	if err := k.Load(env.Provider("CAPS_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CAPS_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.IdempotencyTTL = time.Duration(cfg.IdempotencyTTLSeconds) * time.Second
	return &cfg, nil
}

// PolicyConfig derives the Policy Engine's thresholds from the flat
// loaded configuration.
func (c *Config) PolicyConfig() policy.Config {
	return policy.Config{
		DailyLimit:            decimal.NewFromFloat(c.DailyLimit),
		VelocityMax:           c.VelocityMax,
		NewDeviceCap:          decimal.NewFromFloat(c.NewDeviceCap),
		MinMerchantReputation: c.MinMerchantReputation,
		FraudReportThreshold:  c.FraudReportThreshold,
		NewPayeeHighValue:     decimal.NewFromFloat(c.NewPayeeHighValue),
		TrustScoreFloor:       c.TrustScoreFloor,
	}
}

// RiskConfig derives the Merchant Risk State Machine's thresholds.
func (c *Config) RiskConfig() risk.Config {
	return risk.Config{
		MinTrustedTxns:         c.MinTrustedTxns,
		MinTrustedDays:         c.MinTrustedDays,
		MaxRefundRateTrusted:   c.MaxRefundRateTrusted,
		MaxRefundRateWatchlist: c.MaxRefundRateWatchlist,
	}
}

// ExecutionConfig derives the Execution Engine's settlement parameters.
func (c *Config) ExecutionConfig() execution.Config {
	return execution.Config{
		FailureRate:    c.FailureRate,
		IdempotencyTTL: c.IdempotencyTTL,
	}
}
