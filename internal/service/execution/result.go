package execution

import (
	"github.com/google/uuid"

	"github.com/arjuniyer/caps-payment-core/internal/domain/errors"
)

// Result is the outcome of an execute() call: either a successful
// settlement reference, or a failure code. Never an error return — §4.7's
// ExecutionCode values are reported inside Result, not thrown.
type Result struct {
	Success          bool
	TransactionID    uuid.UUID
	ExecutionHash    string
	ReferenceNumber  string
	Code             errors.ExecutionCode
	Message          string
	DuplicateOfID    uuid.UUID
}
