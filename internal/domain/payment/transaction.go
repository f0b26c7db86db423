package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjuniyer/caps-payment-core/internal/domain/money"
)

// TransactionState is a node in the execution state graph. The only legal
// paths are PENDING -> APPROVED -> EXECUTING -> (COMPLETED | FAILED), or
// PENDING -> REJECTED. Any other transition must be refused.
type TransactionState string

const (
	StatePending   TransactionState = "PENDING"
	StateApproved  TransactionState = "APPROVED"
	StateExecuting TransactionState = "EXECUTING"
	StateCompleted TransactionState = "COMPLETED"
	StateFailed    TransactionState = "FAILED"
	StateRejected  TransactionState = "REJECTED"
)

// legalNext enumerates, for each state, the states a transition may land on.
var legalNext = map[TransactionState][]TransactionState{
	StatePending:   {StateApproved, StateRejected},
	StateApproved:  {StateExecuting},
	StateExecuting: {StateCompleted, StateFailed},
	StateCompleted: {},
	StateFailed:    {},
	StateRejected:  {},
}

func (s TransactionState) canTransitionTo(next TransactionState) bool {
	for _, allowed := range legalNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransactionRecord is the execution unit flowing from the Decision Router
// through the Execution Engine.
type TransactionRecord struct {
	TransactionID  uuid.UUID
	IntentID       uuid.UUID
	UserID         string
	Amount         money.Money
	MerchantVPA    string
	State          TransactionState
	CreatedAt      time.Time
	ApprovalHash   string
	ExecutionHash  string
	ExecutedAt     *time.Time
	ErrorMessage   string
}

// NewTransactionRecord constructs a record in PENDING state, the only
// legal starting point of the graph.
func NewTransactionRecord(intentID uuid.UUID, userID string, amount money.Money, merchantVPA string, createdAt time.Time) *TransactionRecord {
	return &TransactionRecord{
		TransactionID: uuid.New(),
		IntentID:      intentID,
		UserID:        userID,
		Amount:        amount,
		MerchantVPA:   merchantVPA,
		State:         StatePending,
		CreatedAt:     createdAt,
	}
}

// transition performs the state change or refuses it with an error naming
// the illegal edge. Never silently accepted.
func (t *TransactionRecord) transition(next TransactionState) error {
	if !t.State.canTransitionTo(next) {
		return fmt.Errorf("illegal transition %s -> %s for transaction %s", t.State, next, t.TransactionID)
	}
	t.State = next
	return nil
}

// Approve moves PENDING -> APPROVED and stamps the binding approval hash.
func (t *TransactionRecord) Approve(approvalHash string) error {
	if err := t.transition(StateApproved); err != nil {
		return err
	}
	t.ApprovalHash = approvalHash
	return nil
}

// Reject moves PENDING -> REJECTED.
func (t *TransactionRecord) Reject() error {
	return t.transition(StateRejected)
}

// StartExecuting moves APPROVED -> EXECUTING.
func (t *TransactionRecord) StartExecuting() error {
	return t.transition(StateExecuting)
}

// Complete moves EXECUTING -> COMPLETED and stamps execution metadata.
func (t *TransactionRecord) Complete(executedAt time.Time, executionHash string) error {
	if err := t.transition(StateCompleted); err != nil {
		return err
	}
	t.ExecutedAt = &executedAt
	t.ExecutionHash = executionHash
	return nil
}

// Fail moves EXECUTING -> FAILED and records the reason.
func (t *TransactionRecord) Fail(reason string) error {
	if err := t.transition(StateFailed); err != nil {
		return err
	}
	t.ErrorMessage = reason
	return nil
}

// IdempotencyKey collapses near-duplicate execution attempts into a single
// outcome: user_id | merchant_vpa | amount | minute_bucket(created_at).
type IdempotencyKey string

// DefaultIdempotencyTTL is the window (§6) after which a key expires and a
// replay is executed fresh.
const DefaultIdempotencyTTL = 24 * time.Hour

// NewIdempotencyKey derives the key for a (user, merchant, amount, time)
// tuple, truncating created_at to a one-minute bucket.
func NewIdempotencyKey(userID, merchantVPA string, amount money.Money, createdAt time.Time) IdempotencyKey {
	bucket := createdAt.UTC().Truncate(time.Minute)
	return IdempotencyKey(fmt.Sprintf("%s|%s|%s|%s", userID, merchantVPA, amount.Amount().String(), bucket.Format(time.RFC3339)))
}
