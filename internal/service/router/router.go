// Package router implements the Decision Router (C6): the thin translation
// from a Policy Engine verdict into the transaction record's starting
// state, bound to that verdict by a cryptographic hash.
package router

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
)

// Router turns a policy decision into a fresh TransactionRecord.
type Router struct {
	now func() time.Time
}

// New constructs a Router using wall-clock time.
func New() *Router {
	return &Router{now: time.Now}
}

// Route builds a TransactionRecord bound to the given policy result:
// APPROVED when the decision is APPROVE, REJECTED otherwise (VERIFY is a
// step-up decision modeled here, not a pending-auth state — the core has
// no out-of-band confirmation channel, so it is treated the same as DENY
// at this layer).
func (r *Router) Route(intent payment.Intent, result payment.PolicyResult, userID string) (*payment.TransactionRecord, error) {
	record := payment.NewTransactionRecord(uuid.New(), userID, intent.AmountOrZero(), intent.MerchantVPA, r.now())

	hash := approvalHash(intent, result.Decision, userID)

	if result.Decision == payment.DecisionApprove {
		if err := record.Approve(hash); err != nil {
			return nil, err
		}
		return record, nil
	}

	if err := record.Reject(); err != nil {
		return nil, err
	}
	record.ApprovalHash = hash
	return record, nil
}

// approvalHash computes H(intent || decision || user_id), the binding
// between the approved intent and the execution attempt the Execution
// Engine later verifies.
func approvalHash(intent payment.Intent, decision payment.Decision, userID string) string {
	material := fmt.Sprintf("%s|%s|%s|%s|%s",
		intent.Type, intent.MerchantVPA, intent.AmountDecimal().String(), decision, userID)
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}
