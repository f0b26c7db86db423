package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainaudit "github.com/arjuniyer/caps-payment-core/internal/domain/audit"
)

func TestMemoryLedger_AppendOnlyOrdering(t *testing.T) {
	ledger := NewMemoryLedger(nil)

	first := ledger.LogEvent(domainaudit.EventExecutionStarted, map[string]interface{}{"transaction_id": "t1"})
	second := ledger.LogEvent(domainaudit.EventExecutionCompleted, map[string]interface{}{"transaction_id": "t1"})

	entries := ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, int64(0), entries[0].SequenceNum)
	assert.Equal(t, int64(1), entries[1].SequenceNum)
}

func TestMemoryLedger_HashChainLinksSequentialEvents(t *testing.T) {
	ledger := NewMemoryLedger(nil)

	first := ledger.LogEvent(domainaudit.EventPolicyEvaluated, nil)
	second := ledger.LogEvent(domainaudit.EventExecutionStarted, nil)

	assert.Empty(t, first.PreviousHash)
	assert.NotEmpty(t, first.EventHash)
	assert.Equal(t, first.EventHash, second.PreviousHash)
}

func TestMemoryLedger_TransactionEventsAreOrdered(t *testing.T) {
	ledger := NewMemoryLedger(nil)

	ledger.LogEvent(domainaudit.EventExecutionStarted, map[string]interface{}{"transaction_id": "abc"})
	ledger.LogEvent(domainaudit.EventExecutionCompleted, map[string]interface{}{"transaction_id": "abc"})

	entries := ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domainaudit.EventExecutionStarted, entries[0].Type)
	assert.Equal(t, domainaudit.EventExecutionCompleted, entries[1].Type)
}
