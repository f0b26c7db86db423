// Package audit defines the audit ledger's event shape: an append-only,
// event-typed, hash-chained log entry. Events are immutable once hashed;
// nothing in this package ever mutates a previously emitted Event.
package audit

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the event kinds named in spec §3 plus the ones the
// Execution Engine and Fraud Intelligence Store need for their own
// feedback loop.
type EventType string

const (
	EventExecutionStarted   EventType = "EXECUTION_STARTED"
	EventExecutionCompleted EventType = "EXECUTION_COMPLETED"
	EventExecutionFailed    EventType = "EXECUTION_FAILED"
	EventPolicyEvaluated    EventType = "POLICY_EVALUATED"
	EventRiskStateChanged   EventType = "RISK_STATE_CHANGED"
	EventImpersonationFlagged EventType = "IMPERSONATION_FLAGGED"
)

// Event is a single immutable ledger entry.
type Event struct {
	ID          uuid.UUID              `json:"id"`
	SequenceNum int64                  `json:"sequence_num"`
	Timestamp   time.Time              `json:"timestamp"`
	Type        EventType              `json:"type"`
	Payload     map[string]interface{} `json:"payload"`

	PreviousHash string `json:"previous_hash"`
	EventHash    string `json:"event_hash"`
}

// New constructs an event at sequence number seq. The hash chain is filled
// in by ComputeHash once the ledger knows the previous event's hash —
// construction and chaining are separate steps so the ledger, not the
// event, owns sequencing.
func New(seq int64, eventType EventType, payload map[string]interface{}) *Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &Event{
		ID:          uuid.New(),
		SequenceNum: seq,
		Timestamp:   time.Now().UTC(),
		Type:        eventType,
		Payload:     payload,
	}
}

// ComputeHash derives this event's hash from its own content and the prior
// event's hash, chaining the ledger so any retroactive edit is detectable.
func (e *Event) ComputeHash(previousHash string) string {
	e.PreviousHash = previousHash

	hashInput := struct {
		SequenceNum  int64                  `json:"sequence_num"`
		Timestamp    int64                  `json:"timestamp"`
		Type         EventType              `json:"type"`
		Payload      map[string]interface{} `json:"payload"`
		PreviousHash string                 `json:"previous_hash"`
	}{
		SequenceNum:  e.SequenceNum,
		Timestamp:    e.Timestamp.UnixNano(),
		Type:         e.Type,
		Payload:      e.Payload,
		PreviousHash: e.PreviousHash,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		// Payload is always built from this package's own types; a
		// marshal failure here means a caller smuggled an unmarshalable
		// value into Payload, which is a programming error.
		panic(fmt.Sprintf("audit: cannot hash event payload: %v", err))
	}

	sum := sha256.Sum256(data)
	e.EventHash = fmt.Sprintf("%x", sum)
	return e.EventHash
}
