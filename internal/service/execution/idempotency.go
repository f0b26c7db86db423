package execution

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
)

// idempotencyEntry records which transaction holds a key and when that
// hold expires. An entry exists for the whole lifetime of an attempt, not
// just its successful outcome: reserve inserts it before settlement runs,
// so two concurrent attempts with the same key cannot both proceed.
type idempotencyEntry struct {
	transactionID uuid.UUID
	expiresAt     time.Time
}

// idempotencyMap is the globally writer-serialized map from idempotency key
// to the transaction holding it (§5: sharding by key hash is a valid
// alternative, not required at this scale).
type idempotencyMap struct {
	mu      sync.Mutex
	entries map[payment.IdempotencyKey]idempotencyEntry
	ttl     time.Duration
}

func newIdempotencyMap(ttl time.Duration) *idempotencyMap {
	return &idempotencyMap{
		entries: make(map[payment.IdempotencyKey]idempotencyEntry),
		ttl:     ttl,
	}
}

// reserve atomically checks for a live entry and, if none exists, inserts
// one for transactionID in the same critical section — closing the race
// where two concurrent Execute calls for the same key both pass a
// check-then-act gap. If a non-expired entry already holds key, reserve
// reports it as a duplicate and makes no change.
func (m *idempotencyMap) reserve(key payment.IdempotencyKey, transactionID uuid.UUID, now time.Time) (existing uuid.UUID, duplicate bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if ok && now.Before(entry.expiresAt) {
		return entry.transactionID, true
	}
	m.entries[key] = idempotencyEntry{transactionID: transactionID, expiresAt: now.Add(m.ttl)}
	return uuid.UUID{}, false
}

// release drops a reservation that did not end in a completed settlement,
// so a retry of the same tuple is not blocked by an attempt that failed.
func (m *idempotencyMap) release(key payment.IdempotencyKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// size reports the number of live entries, for metrics reporting.
func (m *idempotencyMap) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
