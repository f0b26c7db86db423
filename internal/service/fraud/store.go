package fraud

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domainaudit "github.com/arjuniyer/caps-payment-core/internal/domain/audit"
	domainerrors "github.com/arjuniyer/caps-payment-core/internal/domain/errors"
	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/infrastructure/metrics"
	serviceaudit "github.com/arjuniyer/caps-payment-core/internal/service/audit"
	"github.com/arjuniyer/caps-payment-core/internal/service/risk"
)

// Store is the durable, single-writer-per-merchant Fraud Intelligence
// Store. It satisfies both Reader and Recorder.
type Store struct {
	repo    Repository
	ledger  serviceaudit.Ledger
	riskCfg risk.Config
	logger  *zap.Logger
	now     func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore wires a Repository and Audit Ledger into a Store. riskCfg
// supplies the thresholds C2 evaluates against.
func NewStore(repo Repository, ledger serviceaudit.Ledger, riskCfg risk.Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:    repo,
		ledger:  ledger,
		riskCfg: riskCfg,
		logger:  logger,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) lockFor(merchantVPA string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[merchantVPA]
	if !ok {
		m = &sync.Mutex{}
		s.locks[merchantVPA] = m
	}
	return m
}

// GetMerchantContext reads the current snapshot for a merchant, or
// synthesizes a default one if it has never been observed.
func (s *Store) GetMerchantContext(ctx context.Context, merchantVPA string) (payment.MerchantContext, error) {
	record, found, err := s.repo.Get(ctx, merchantVPA)
	if err != nil {
		return payment.MerchantContext{}, domainerrors.NewDependencyError("fraud_store", "merchant lookup failed").WithCause(err)
	}
	if !found {
		return defaultRecord(merchantVPA, s.now()).ToContext(), nil
	}
	return record.ToContext(), nil
}

// UpdateTransactionStats atomically applies an execution outcome to a
// merchant's counters, recomputes risk state via C2, and emits
// RISK_STATE_CHANGED iff the state actually changed.
func (s *Store) UpdateTransactionStats(ctx context.Context, merchantVPA string, success, isRefund bool) (payment.RiskState, error) {
	mu := s.lockFor(merchantVPA)
	mu.Lock()
	defer mu.Unlock()

	record, found, err := s.repo.Get(ctx, merchantVPA)
	if err != nil {
		return "", domainerrors.NewDependencyError("fraud_store", "merchant lookup failed").WithCause(err)
	}
	if !found {
		record = defaultRecord(merchantVPA, s.now())
	}

	previousState := record.RiskState
	if success {
		record.TotalTransactions++
	}
	if isRefund {
		record.TotalRefunds++
	}

	now := s.now()
	record.RiskState = risk.NextState(s.riskCfg, record.TotalTransactions, record.TotalRefunds, record.FirstSeen, now, record.RiskState, false)
	record.LastUpdated = now

	if err := s.repo.Save(ctx, record); err != nil {
		return "", domainerrors.NewDependencyError("fraud_store", "merchant save failed").WithCause(err)
	}

	if record.RiskState != previousState {
		s.logger.Info("merchant risk state changed",
			zap.String("merchant_vpa", merchantVPA),
			zap.String("previous_state", string(previousState)),
			zap.String("new_state", string(record.RiskState)),
		)
		s.ledger.LogEvent(domainaudit.EventRiskStateChanged, map[string]interface{}{
			"merchant_vpa":    merchantVPA,
			"previous_state":  string(previousState),
			"new_state":       string(record.RiskState),
		})
		metrics.RecordMerchantRiskTransition(string(previousState), string(record.RiskState))
	}

	return record.RiskState, nil
}

// FlagImpersonation forces a merchant to BLOCKED via C2 with
// is_impersonating=true.
func (s *Store) FlagImpersonation(ctx context.Context, merchantVPA string) error {
	mu := s.lockFor(merchantVPA)
	mu.Lock()
	defer mu.Unlock()

	record, found, err := s.repo.Get(ctx, merchantVPA)
	if err != nil {
		return domainerrors.NewDependencyError("fraud_store", "merchant lookup failed").WithCause(err)
	}
	if !found {
		record = defaultRecord(merchantVPA, s.now())
	}

	previousState := record.RiskState
	now := s.now()
	record.RiskState = risk.NextState(s.riskCfg, record.TotalTransactions, record.TotalRefunds, record.FirstSeen, now, record.RiskState, true)
	record.LastUpdated = now

	if err := s.repo.Save(ctx, record); err != nil {
		return domainerrors.NewDependencyError("fraud_store", "merchant save failed").WithCause(err)
	}

	s.ledger.LogEvent(domainaudit.EventImpersonationFlagged, map[string]interface{}{
		"merchant_vpa": merchantVPA,
	})
	if record.RiskState != previousState {
		s.ledger.LogEvent(domainaudit.EventRiskStateChanged, map[string]interface{}{
			"merchant_vpa":   merchantVPA,
			"previous_state": string(previousState),
			"new_state":      string(record.RiskState),
		})
		metrics.RecordMerchantRiskTransition(string(previousState), string(record.RiskState))
	}

	return nil
}

var (
	_ Reader   = (*Store)(nil)
	_ Recorder = (*Store)(nil)
)
