package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	serviceaudit "github.com/arjuniyer/caps-payment-core/internal/service/audit"
	"github.com/arjuniyer/caps-payment-core/internal/service/risk"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Get(ctx context.Context, merchantVPA string) (MerchantRecord, bool, error) {
	args := m.Called(ctx, merchantVPA)
	rec, _ := args.Get(0).(MerchantRecord)
	return rec, args.Bool(1), args.Error(2)
}

func (m *mockRepo) Save(ctx context.Context, record MerchantRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func TestStore_GetMerchantContext_UnseenSynthesizesDefault(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Get", mock.Anything, "newmerchant@upi").Return(MerchantRecord{}, false, nil)

	store := NewStore(repo, serviceaudit.NewMemoryLedger(nil), risk.DefaultConfig(), nil)
	ctx, err := store.GetMerchantContext(context.Background(), "newmerchant@upi")

	require.NoError(t, err)
	assert.Equal(t, payment.RiskNew, ctx.RiskState)
	assert.Equal(t, 0.5, ctx.ReputationScore)
	assert.Equal(t, 0, ctx.TotalTransactions)
	repo.AssertExpectations(t)
}

func TestStore_UpdateTransactionStats_IncrementsAndSaves(t *testing.T) {
	repo := new(mockRepo)
	existing := MerchantRecord{
		MerchantVPA:       "merchant@upi",
		TotalTransactions: 4,
		FirstSeen:         time.Now().Add(-10 * 24 * time.Hour),
		RiskState:         payment.RiskNew,
	}
	repo.On("Get", mock.Anything, "merchant@upi").Return(existing, true, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(r MerchantRecord) bool {
		return r.TotalTransactions == 5
	})).Return(nil)

	ledger := serviceaudit.NewMemoryLedger(nil)
	store := NewStore(repo, ledger, risk.DefaultConfig(), nil)

	newState, err := store.UpdateTransactionStats(context.Background(), "merchant@upi", true, false)
	require.NoError(t, err)
	assert.Equal(t, payment.RiskTrusted, newState)

	entries := ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "merchant@upi", entries[0].Payload["merchant_vpa"])
	repo.AssertExpectations(t)
}

func TestStore_UpdateTransactionStats_NoEventWhenStateUnchanged(t *testing.T) {
	repo := new(mockRepo)
	existing := MerchantRecord{
		MerchantVPA:       "merchant@upi",
		TotalTransactions: 1,
		FirstSeen:         time.Now(),
		RiskState:         payment.RiskNew,
	}
	repo.On("Get", mock.Anything, "merchant@upi").Return(existing, true, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	ledger := serviceaudit.NewMemoryLedger(nil)
	store := NewStore(repo, ledger, risk.DefaultConfig(), nil)

	_, err := store.UpdateTransactionStats(context.Background(), "merchant@upi", true, false)
	require.NoError(t, err)

	assert.Empty(t, ledger.Entries())
}

func TestStore_FlagImpersonation_ForcesBlocked(t *testing.T) {
	repo := new(mockRepo)
	existing := MerchantRecord{MerchantVPA: "bad@upi", RiskState: payment.RiskTrusted}
	repo.On("Get", mock.Anything, "bad@upi").Return(existing, true, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(r MerchantRecord) bool {
		return r.RiskState == payment.RiskBlocked
	})).Return(nil)

	store := NewStore(repo, serviceaudit.NewMemoryLedger(nil), risk.DefaultConfig(), nil)
	err := store.FlagImpersonation(context.Background(), "bad@upi")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
