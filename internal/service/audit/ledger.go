// Package audit implements the Audit Ledger (C8): an append-only,
// event-typed structured log. No component may mutate a previously
// appended event; the only operation offered to writers is LogEvent.
package audit

import (
	"sync"

	"go.uber.org/zap"

	domainaudit "github.com/arjuniyer/caps-payment-core/internal/domain/audit"
)

// Ledger is the append-only sink every other component writes through.
// Implementations must serialize writes (single-writer or lock-free
// append) and must never reorder or drop an event once LogEvent returns.
type Ledger interface {
	LogEvent(eventType domainaudit.EventType, payload map[string]interface{}) *domainaudit.Event
}

// MemoryLedger is the default in-process implementation: a mutex-guarded
// slice plus a running hash chain. It satisfies the single-writer
// discipline §5 requires without needing an external broker.
type MemoryLedger struct {
	mu       sync.Mutex
	entries  []*domainaudit.Event
	lastHash string
	logger   *zap.Logger
}

// NewMemoryLedger constructs an empty in-memory ledger.
func NewMemoryLedger(logger *zap.Logger) *MemoryLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryLedger{logger: logger}
}

func (l *MemoryLedger) LogEvent(eventType domainaudit.EventType, payload map[string]interface{}) *domainaudit.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := int64(len(l.entries))
	event := domainaudit.New(seq, eventType, payload)
	event.ComputeHash(l.lastHash)

	l.entries = append(l.entries, event)
	l.lastHash = event.EventHash

	l.logger.Debug("audit event appended",
		zap.String("event_type", string(eventType)),
		zap.Int64("sequence_num", seq),
	)

	return event
}

// Entries returns a snapshot of the ledger's contents in insertion order.
// Not part of the core's external contract (§4.8 names no query API) but
// used by tests and operator tooling that scan the log.
func (l *MemoryLedger) Entries() []*domainaudit.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*domainaudit.Event, len(l.entries))
	copy(out, l.entries)
	return out
}
