package execution

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjuniyer/caps-payment-core/internal/domain/money"
	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
)

func TestTransactionStore_GetTransaction(t *testing.T) {
	store := NewTransactionStore()
	record := payment.NewTransactionRecord(uuid.New(), "user-1", money.Zero(money.DefaultCurrency), "m@upi", time.Now())
	store.Save(record)

	got, ok := store.GetTransaction(record.TransactionID)
	require.True(t, ok)
	assert.Equal(t, record.TransactionID, got.TransactionID)

	_, ok = store.GetTransaction(uuid.New())
	assert.False(t, ok)
}

func TestTransactionStore_HistorySortedDescendingAndCapped(t *testing.T) {
	store := NewTransactionStore()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		record := payment.NewTransactionRecord(uuid.New(), "user-1", money.Zero(money.DefaultCurrency), "m@upi", base.Add(time.Duration(i)*time.Minute))
		store.Save(record)
	}

	history := store.GetTransactionHistory("user-1", 3, base.Add(-time.Hour), time.Now())
	require.Len(t, history, 3)
	assert.True(t, history[0].CreatedAt.After(history[1].CreatedAt))
	assert.True(t, history[1].CreatedAt.After(history[2].CreatedAt))
}

func TestTransactionStore_SpendingAnalysisOnlyCountsCompleted(t *testing.T) {
	store := NewTransactionStore()
	now := time.Now()

	amount, err := money.FromFloat(50, money.DefaultCurrency)
	require.NoError(t, err)

	completed := payment.NewTransactionRecord(uuid.New(), "user-1", amount, "merchant-a@upi", now)
	require.NoError(t, completed.Approve("hash"))
	require.NoError(t, completed.StartExecuting())
	require.NoError(t, completed.Complete(now, "exec-hash"))
	store.Save(completed)

	pending := payment.NewTransactionRecord(uuid.New(), "user-1", amount, "merchant-b@upi", now)
	store.Save(pending)

	analysis := store.GetSpendingAnalysis("user-1", now.Add(-time.Hour), now.Add(time.Hour))
	assert.Equal(t, 1, analysis.TransactionCount)
	require.Len(t, analysis.Breakdown, 1)
	assert.Equal(t, "merchant-a@upi", analysis.Breakdown[0].MerchantVPA)
}
