package fraud

import (
	"context"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
)

// Repository is the durable storage contract the store writes through.
// Implementations (in-memory, Postgres) must give reads a consistent
// snapshot — no torn reads of counters — concurrently with writes.
type Repository interface {
	Get(ctx context.Context, merchantVPA string) (MerchantRecord, bool, error)
	Save(ctx context.Context, record MerchantRecord) error
}

// Reader is the narrow capability the Policy Engine depends on: it only
// ever needs to read a merchant's current context, never to mutate it.
type Reader interface {
	GetMerchantContext(ctx context.Context, merchantVPA string) (payment.MerchantContext, error)
}

// Recorder is the narrow capability the Execution Engine depends on: it
// feeds settlement outcomes back into the store without needing read
// access to the full store interface.
type Recorder interface {
	UpdateTransactionStats(ctx context.Context, merchantVPA string, success, isRefund bool) (payment.RiskState, error)
	FlagImpersonation(ctx context.Context, merchantVPA string) error
}
