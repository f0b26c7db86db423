package execution

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/arjuniyer/caps-payment-core/internal/domain/errors"
	"github.com/arjuniyer/caps-payment-core/internal/domain/money"
	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	serviceaudit "github.com/arjuniyer/caps-payment-core/internal/service/audit"
)

type stubRecorder struct {
	calls int
	err   error
}

func (s *stubRecorder) UpdateTransactionStats(ctx context.Context, merchantVPA string, success, isRefund bool) (payment.RiskState, error) {
	s.calls++
	return payment.RiskTrusted, s.err
}

const validTestHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func newIntentID() uuid.UUID {
	return uuid.New()
}

func TestEngine_RejectsNonApprovedRecord(t *testing.T) {
	engine := New(DefaultConfig(), serviceaudit.NewMemoryLedger(nil), &stubRecorder{}, nil)
	record := payment.NewTransactionRecord(newIntentID(), "user-1", money.Zero(money.DefaultCurrency), "m@upi", time.Now())

	result := engine.Execute(context.Background(), record)

	assert.False(t, result.Success)
	assert.Equal(t, domainerrors.ExecInvalidState, result.Code)
}

func TestEngine_RejectsMalformedApprovalHash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = 0
	engine := New(cfg, serviceaudit.NewMemoryLedger(nil), &stubRecorder{}, nil)

	record := payment.NewTransactionRecord(newIntentID(), "user-1", mustMoney100(t), "m@upi", time.Now())
	require.NoError(t, record.Approve("not-a-hash"))

	result := engine.Execute(context.Background(), record)

	assert.False(t, result.Success)
	assert.Equal(t, domainerrors.ExecHashMismatch, result.Code)
}

func TestEngine_SuccessfulSettlementEmitsEventsAndFeedback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = 0
	ledger := serviceaudit.NewMemoryLedger(nil)
	recorder := &stubRecorder{}
	engine := New(cfg, ledger, recorder, nil)

	record := payment.NewTransactionRecord(newIntentID(), "user-1", mustMoney100(t), "m@upi", time.Now())
	require.NoError(t, record.Approve(validTestHash))

	result := engine.Execute(context.Background(), record)

	require.True(t, result.Success)
	assert.Equal(t, payment.StateCompleted, record.State)
	assert.NotEmpty(t, result.ExecutionHash)
	assert.Contains(t, result.ReferenceNumber, "UPI")
	assert.Equal(t, 1, recorder.calls)

	entries := ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "EXECUTION_STARTED", string(entries[0].Type))
	assert.Equal(t, "EXECUTION_COMPLETED", string(entries[1].Type))
}

func TestEngine_DuplicateWithinWindowIsRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = 0
	ledger := serviceaudit.NewMemoryLedger(nil)
	engine := New(cfg, ledger, &stubRecorder{}, nil)

	now := time.Now()
	amount := mustMoney100(t)

	first := payment.NewTransactionRecord(newIntentID(), "user-1", amount, "m@upi", now)
	require.NoError(t, first.Approve(validTestHash))
	firstResult := engine.Execute(context.Background(), first)
	require.True(t, firstResult.Success)

	second := payment.NewTransactionRecord(newIntentID(), "user-1", amount, "m@upi", now)
	require.NoError(t, second.Approve(validTestHash))
	secondResult := engine.Execute(context.Background(), second)

	assert.False(t, secondResult.Success)
	assert.Equal(t, domainerrors.ExecDuplicate, secondResult.Code)
	assert.Equal(t, first.TransactionID, secondResult.DuplicateOfID)
}

func TestEngine_SimulatedFailureTransitionsToFailed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = 1
	ledger := serviceaudit.NewMemoryLedger(nil)
	engine := New(cfg, ledger, &stubRecorder{}, nil)

	record := payment.NewTransactionRecord(newIntentID(), "user-1", mustMoney100(t), "m@upi", time.Now())
	require.NoError(t, record.Approve(validTestHash))

	result := engine.Execute(context.Background(), record)

	assert.False(t, result.Success)
	assert.Equal(t, domainerrors.ExecNetworkError, result.Code)
	assert.Equal(t, payment.StateFailed, record.State)

	entries := ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "EXECUTION_FAILED", string(entries[1].Type))
}

func TestEngine_ExpiredDeadlineBeforeStartReturnsTimeout(t *testing.T) {
	engine := New(DefaultConfig(), serviceaudit.NewMemoryLedger(nil), &stubRecorder{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	record := payment.NewTransactionRecord(newIntentID(), "user-1", mustMoney100(t), "m@upi", time.Now())
	require.NoError(t, record.Approve(validTestHash))

	result := engine.Execute(ctx, record)

	assert.False(t, result.Success)
	assert.Equal(t, domainerrors.ExecTimeout, result.Code)
	assert.Equal(t, payment.StateApproved, record.State)
}

// TestEngine_ConcurrentDuplicatesSettleAtMostOnce exercises two goroutines
// racing Execute with the same idempotency-key tuple. Only one may settle;
// the reservation inside idempotencyMap.reserve must close the gap a
// separate lookup-then-record pair would leave open.
func TestEngine_ConcurrentDuplicatesSettleAtMostOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = 0
	ledger := serviceaudit.NewMemoryLedger(nil)
	engine := New(cfg, ledger, &stubRecorder{}, nil)

	now := time.Now()
	amount := mustMoney100(t)

	first := payment.NewTransactionRecord(newIntentID(), "user-1", amount, "m@upi", now)
	require.NoError(t, first.Approve(validTestHash))
	second := payment.NewTransactionRecord(newIntentID(), "user-1", amount, "m@upi", now)
	require.NoError(t, second.Approve(validTestHash))

	var wg sync.WaitGroup
	results := make([]Result, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = engine.Execute(context.Background(), first)
	}()
	go func() {
		defer wg.Done()
		results[1] = engine.Execute(context.Background(), second)
	}()
	wg.Wait()

	successes := 0
	for _, r := range results {
		if r.Success {
			successes++
		} else {
			assert.Equal(t, domainerrors.ExecDuplicate, r.Code)
		}
	}
	assert.Equal(t, 1, successes)
}

func mustMoney100(t *testing.T) money.Money {
	t.Helper()
	m, err := money.FromFloat(100, money.DefaultCurrency)
	require.NoError(t, err)
	return m
}
