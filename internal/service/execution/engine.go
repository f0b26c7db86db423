// Package execution implements the Execution Engine (C7): settles at most
// one transaction per idempotency key, reports the outcome, and feeds
// merchant statistics back into the Fraud Intelligence Store.
package execution

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	mathrand "math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainaudit "github.com/arjuniyer/caps-payment-core/internal/domain/audit"
	domainerrors "github.com/arjuniyer/caps-payment-core/internal/domain/errors"
	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/infrastructure/metrics"
	serviceaudit "github.com/arjuniyer/caps-payment-core/internal/service/audit"
	"github.com/arjuniyer/caps-payment-core/internal/service/fraud"
)

// Recorder is the feedback channel the engine calls after settling a
// transaction. Satisfied by *fraud.Store.
type Recorder interface {
	UpdateTransactionStats(ctx context.Context, merchantVPA string, success, isRefund bool) (payment.RiskState, error)
}

// Engine is the Execution Engine (C7).
type Engine struct {
	cfg      Config
	idemp    *idempotencyMap
	ledger   serviceaudit.Ledger
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	// History backs the §4.7 query operations. Exported so the caller that
	// routes a record into PENDING/REJECTED state (the orchestrator) can
	// record it here too, before it ever reaches Execute.
	History *TransactionStore
}

// New constructs an Engine wired to the audit ledger and the Fraud
// Intelligence Store's feedback interface.
func New(cfg Config, ledger serviceaudit.Ledger, recorder Recorder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		idemp:    newIdempotencyMap(cfg.IdempotencyTTL),
		ledger:   ledger,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		History:  NewTransactionStore(),
	}
}

// Execute runs the §4.7 contract against a single APPROVED transaction
// record. ctx's deadline governs cancellation: expiry before step 4 yields
// TIMEOUT with no side effects; expiry at or after step 4 still drives the
// record to a terminal state (never stranded in EXECUTING).
func (e *Engine) Execute(ctx context.Context, record *payment.TransactionRecord) (result Result) {
	start := e.now()
	defer e.History.Save(record)
	defer func() {
		metrics.RecordExecution(result.Success, string(result.Code), e.now().Sub(start))
		metrics.SetActiveIdempotencyEntries(e.idemp.size())
	}()

	if record.State != payment.StateApproved {
		return Result{Success: false, TransactionID: record.TransactionID, Code: domainerrors.ExecInvalidState, Message: "transaction is not in APPROVED state"}
	}

	key := payment.NewIdempotencyKey(record.UserID, record.MerchantVPA, record.Amount, record.CreatedAt)
	if original, duplicate := e.idemp.reserve(key, record.TransactionID, e.now()); duplicate {
		return Result{Success: false, TransactionID: record.TransactionID, Code: domainerrors.ExecDuplicate, DuplicateOfID: original, Message: "duplicate of an already-settled transaction"}
	}

	if !validHash(record.ApprovalHash) {
		e.idemp.release(key)
		return Result{Success: false, TransactionID: record.TransactionID, Code: domainerrors.ExecHashMismatch, Message: "approval hash absent or malformed"}
	}

	if ctx.Err() != nil {
		e.idemp.release(key)
		return Result{Success: false, TransactionID: record.TransactionID, Code: domainerrors.ExecTimeout, Message: "deadline expired before execution started"}
	}

	if err := record.StartExecuting(); err != nil {
		e.idemp.release(key)
		return Result{Success: false, TransactionID: record.TransactionID, Code: domainerrors.ExecInvalidState, Message: err.Error()}
	}
	e.ledger.LogEvent(domainaudit.EventExecutionStarted, map[string]interface{}{
		"transaction_id": record.TransactionID.String(),
		"merchant_vpa":    record.MerchantVPA,
	})

	if ctx.Err() != nil || mathrand.Float64() < e.cfg.FailureRate {
		reason := "simulated network failure"
		code := domainerrors.ExecNetworkError
		if ctx.Err() != nil {
			reason = "deadline expired during execution"
			code = domainerrors.ExecTimeout
		}
		_ = record.Fail(reason)
		e.ledger.LogEvent(domainaudit.EventExecutionFailed, map[string]interface{}{
			"transaction_id": record.TransactionID.String(),
			"merchant_vpa":    record.MerchantVPA,
			"reason":          reason,
		})
		e.idemp.release(key)
		return Result{Success: false, TransactionID: record.TransactionID, Code: code, Message: reason}
	}

	executedAt := e.now()
	executionHash := settlementHash(record.TransactionID.String(), executedAt, record.Amount.Amount().String())
	if err := record.Complete(executedAt, executionHash); err != nil {
		e.idemp.release(key)
		return Result{Success: false, TransactionID: record.TransactionID, Code: domainerrors.ExecInvalidState, Message: err.Error()}
	}

	reference := referenceNumber()
	e.ledger.LogEvent(domainaudit.EventExecutionCompleted, map[string]interface{}{
		"transaction_id":   record.TransactionID.String(),
		"merchant_vpa":      record.MerchantVPA,
		"reference_number":  reference,
		"execution_hash":    executionHash,
	})

	e.feedback(ctx, record.MerchantVPA)

	return Result{Success: true, TransactionID: record.TransactionID, ExecutionHash: executionHash, ReferenceNumber: reference}
}

// feedback reports a successful settlement to the Fraud Intelligence
// Store. Per §7, feedback failures are logged and never roll back the
// settlement already recorded above.
func (e *Engine) feedback(ctx context.Context, merchantVPA string) {
	if _, err := e.recorder.UpdateTransactionStats(ctx, merchantVPA, true, false); err != nil {
		e.logger.Error("fraud store feedback failed after successful settlement",
			zap.String("merchant_vpa", merchantVPA), zap.Error(err))
	}
}

func validHash(hash string) bool {
	if hash == "" {
		return false
	}
	decoded, err := hex.DecodeString(hash)
	return err == nil && len(decoded) == sha256.Size
}

func settlementHash(transactionID string, executedAt time.Time, amount string) string {
	material := fmt.Sprintf("%s|%s|%s", transactionID, executedAt.UTC().Format(time.RFC3339Nano), amount)
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// referenceNumber generates "UPI" followed by 12 uppercase hex characters,
// per §4.7 step 6.
func referenceNumber() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// time-derived value rather than panic mid-settlement.
		return "UPI" + strings.ToUpper(hex.EncodeToString(settlementFallback()))
	}
	return "UPI" + strings.ToUpper(hex.EncodeToString(buf))
}

func settlementFallback() []byte {
	sum := sha256.Sum256([]byte(time.Now().String()))
	return sum[:6]
}

// GetTransaction looks up a transaction by ID (§4.7 query operations).
func (e *Engine) GetTransaction(id uuid.UUID) (*payment.TransactionRecord, bool) {
	return e.History.GetTransaction(id)
}

// GetTransactionHistory returns a user's transactions in [start, end],
// descending by created_at, capped at limit.
func (e *Engine) GetTransactionHistory(userID string, limit int, start, end time.Time) []*payment.TransactionRecord {
	return e.History.GetTransactionHistory(userID, limit, start, end)
}

// GetSpendingAnalysis aggregates a user's completed spend by merchant.
func (e *Engine) GetSpendingAnalysis(userID string, start, end time.Time) SpendingAnalysis {
	return e.History.GetSpendingAnalysis(userID, start, end)
}

var _ Recorder = (*fraud.Store)(nil)
