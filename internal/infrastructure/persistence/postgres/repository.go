// Package postgres implements fraud.Repository against the scores table
// (merchant_vpa primary key, risk_state, total_txns, total_refunds,
// fraud_reports, first_seen, last_updated) described in §6.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/service/fraud"
)

// Repository is a pgxpool-backed fraud.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// New wraps an already-configured pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Open parses dsn and builds a pool with the given connection limits.
func Open(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	return pool, nil
}

const scoresSchema = `
CREATE TABLE IF NOT EXISTS scores (
	merchant_vpa       TEXT PRIMARY KEY,
	reputation_score    DOUBLE PRECISION NOT NULL,
	is_whitelisted      BOOLEAN NOT NULL,
	total_txns          INTEGER NOT NULL,
	total_refunds       INTEGER NOT NULL,
	fraud_reports       INTEGER NOT NULL,
	risk_state          TEXT NOT NULL,
	first_seen          TIMESTAMPTZ NOT NULL,
	last_updated        TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the scores table if it does not already exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, scoresSchema)
	if err != nil {
		return fmt.Errorf("creating scores table: %w", err)
	}
	return nil
}

// Get returns the stored record for merchantVPA. A missing row is not an
// error: it reports found=false so the caller synthesizes the default.
func (r *Repository) Get(ctx context.Context, merchantVPA string) (fraud.MerchantRecord, bool, error) {
	const query = `
		SELECT merchant_vpa, reputation_score, is_whitelisted, total_txns,
		       total_refunds, fraud_reports, risk_state, first_seen, last_updated
		FROM scores WHERE merchant_vpa = $1`

	var rec fraud.MerchantRecord
	var riskState string
	err := r.pool.QueryRow(ctx, query, merchantVPA).Scan(
		&rec.MerchantVPA,
		&rec.ReputationScore,
		&rec.IsWhitelisted,
		&rec.TotalTransactions,
		&rec.TotalRefunds,
		&rec.FraudReports,
		&riskState,
		&rec.FirstSeen,
		&rec.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return fraud.MerchantRecord{}, false, nil
	}
	if err != nil {
		return fraud.MerchantRecord{}, false, fmt.Errorf("querying merchant score: %w", err)
	}
	rec.RiskState = payment.RiskState(riskState)
	return rec, true, nil
}

// Save upserts the record keyed by MerchantVPA.
func (r *Repository) Save(ctx context.Context, record fraud.MerchantRecord) error {
	const query = `
		INSERT INTO scores (
			merchant_vpa, reputation_score, is_whitelisted, total_txns,
			total_refunds, fraud_reports, risk_state, first_seen, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (merchant_vpa) DO UPDATE SET
			reputation_score = EXCLUDED.reputation_score,
			is_whitelisted    = EXCLUDED.is_whitelisted,
			total_txns        = EXCLUDED.total_txns,
			total_refunds     = EXCLUDED.total_refunds,
			fraud_reports     = EXCLUDED.fraud_reports,
			risk_state        = EXCLUDED.risk_state,
			last_updated      = EXCLUDED.last_updated`

	_, err := r.pool.Exec(ctx, query,
		record.MerchantVPA,
		record.ReputationScore,
		record.IsWhitelisted,
		record.TotalTransactions,
		record.TotalRefunds,
		record.FraudReports,
		string(record.RiskState),
		record.FirstSeen,
		record.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("saving merchant score: %w", err)
	}
	return nil
}

var _ fraud.Repository = (*Repository)(nil)
