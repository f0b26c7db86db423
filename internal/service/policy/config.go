package policy

import "github.com/shopspring/decimal"

// Config carries the numeric thresholds named in spec §6. All of them are
// read-only after construction; no locking is required.
type Config struct {
	DailyLimit            decimal.Decimal
	VelocityMax           int
	NewDeviceCap          decimal.Decimal
	MinMerchantReputation float64
	FraudReportThreshold  int
	NewPayeeHighValue     decimal.Decimal
	TrustScoreFloor       float64
}

// DefaultConfig matches the literal values in §6.
func DefaultConfig() Config {
	return Config{
		DailyLimit:            decimal.NewFromInt(2000),
		VelocityMax:           10,
		NewDeviceCap:          decimal.NewFromInt(200),
		MinMerchantReputation: 0.3,
		FraudReportThreshold:  5,
		NewPayeeHighValue:     decimal.NewFromInt(500),
		TrustScoreFloor:       0.4,
	}
}
