// Package memory implements an in-memory fraud.Repository, the default
// backing store when no persistence DSN is configured.
package memory

import (
	"context"
	"sync"

	"github.com/arjuniyer/caps-payment-core/internal/service/fraud"
)

// Repository is a process-local, mutex-guarded map keyed by merchant VPA.
// It gives Get/Save a consistent snapshot but does not survive restarts.
type Repository struct {
	mu      sync.RWMutex
	records map[string]fraud.MerchantRecord
}

// New returns an empty Repository.
func New() *Repository {
	return &Repository{records: make(map[string]fraud.MerchantRecord)}
}

// Get returns the stored record for merchantVPA, if any.
func (r *Repository) Get(ctx context.Context, merchantVPA string) (fraud.MerchantRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[merchantVPA]
	return rec, ok, nil
}

// Save overwrites the record for its MerchantVPA.
func (r *Repository) Save(ctx context.Context, record fraud.MerchantRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.MerchantVPA] = record
	return nil
}

var _ fraud.Repository = (*Repository)(nil)
