// Package risk implements the Merchant Risk State Machine (C2): a pure,
// total, deterministic function from merchant statistics to the next risk
// state. It has no dependency on the store and performs no I/O.
package risk

import (
	"math"
	"time"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
)

// Config carries the thresholds §6 names as configuration options.
type Config struct {
	MinTrustedTxns         int
	MinTrustedDays         int
	MaxRefundRateTrusted   float64
	MaxRefundRateWatchlist float64
}

// DefaultConfig matches the values named in spec §6.
func DefaultConfig() Config {
	return Config{
		MinTrustedTxns:         5,
		MinTrustedDays:         7,
		MaxRefundRateTrusted:   0.20,
		MaxRefundRateWatchlist: 0.50,
	}
}

// RefundRate is total_refunds / total_txns, 0 when there have been no
// transactions.
func RefundRate(totalTxns, totalRefunds int) float64 {
	if totalTxns == 0 {
		return 0
	}
	return float64(totalRefunds) / float64(totalTxns)
}

// NextState computes the merchant's next risk state. Transitions are
// evaluated top-down; the first matching rule wins:
//
//  1. is_impersonating            => BLOCKED, regardless of prior state.
//  2. current_state == BLOCKED    => BLOCKED (terminal; no automatic escape).
//  3. current_state == NEW        => TRUSTED iff enough aged, low-refund volume.
//  4. current_state == TRUSTED    => WATCHLIST iff refund rate climbs too high.
//  5. current_state == WATCHLIST  => BLOCKED iff refund rate climbs further;
//     recovery from WATCHLIST is not automatic.
func NextState(cfg Config, totalTxns, totalRefunds int, firstSeen, now time.Time, currentState payment.RiskState, isImpersonating bool) payment.RiskState {
	if isImpersonating {
		return payment.RiskBlocked
	}
	if currentState == payment.RiskBlocked {
		return payment.RiskBlocked
	}

	refundRate := RefundRate(totalTxns, totalRefunds)

	switch currentState {
	case payment.RiskNew:
		daysActive := int(math.Floor(now.Sub(firstSeen).Hours() / 24))
		if totalTxns >= cfg.MinTrustedTxns && daysActive >= cfg.MinTrustedDays && refundRate < 0.05 {
			return payment.RiskTrusted
		}
		return payment.RiskNew

	case payment.RiskTrusted:
		if refundRate > cfg.MaxRefundRateTrusted {
			return payment.RiskWatchlist
		}
		return payment.RiskTrusted

	case payment.RiskWatchlist:
		if refundRate > cfg.MaxRefundRateWatchlist {
			return payment.RiskBlocked
		}
		return payment.RiskWatchlist

	default:
		return currentState
	}
}
