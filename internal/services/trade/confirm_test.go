package trade

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/monitoring"
)

// Scenario B: первое подтверждение ставит флаг, второе завершает обмен
func TestConfirm_BothParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trade, i1, i2 := f.acceptedTrade(t)

	got, err := f.svc.Confirm(ctx, trade.ID, trade.OffererID)
	require.NoError(t, err)
	assert.True(t, got.ConfirmedByOfferer)
	assert.False(t, got.ConfirmedByRequester)
	assert.Equal(t, models.TradeStatusAccepted, got.Status)

	item, err := f.store.GetItem(ctx, i1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusAvailable, item.Status)

	got, err = f.svc.Confirm(ctx, trade.ID, trade.RequesterID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusConfirmed, got.Status)
	assert.True(t, got.ConfirmedByOfferer)
	assert.True(t, got.ConfirmedByRequester)

	for _, id := range []uuid.UUID{i1.ID, i2.ID} {
		item, err := f.store.GetItem(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ItemStatusTraded, item.Status)
	}
}

func TestConfirm_RecordsFinalTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trade, _, _ := f.acceptedTrade(t)
	finalized := monitoring.TradeTransitionsTotal.WithLabelValues(
		string(models.TradeStatusAccepted), string(models.TradeStatusConfirmed))
	before := testutil.ToFloat64(finalized)

	_, err := f.svc.Confirm(ctx, trade.ID, trade.OffererID)
	require.NoError(t, err)
	assert.Equal(t, before, testutil.ToFloat64(finalized))

	_, err = f.svc.Confirm(ctx, trade.ID, trade.RequesterID)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(finalized))

	_, err = f.svc.Confirm(ctx, trade.ID, trade.RequesterID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, before+1, testutil.ToFloat64(finalized))
}

func TestConfirm_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trade, _, _ := f.acceptedTrade(t)

	_, err := f.svc.Confirm(ctx, trade.ID, trade.OffererID)
	require.NoError(t, err)
	updates := len(f.notifier.statuses())

	got, err := f.svc.Confirm(ctx, trade.ID, trade.OffererID)
	require.NoError(t, err)
	assert.True(t, got.ConfirmedByOfferer)
	assert.Equal(t, models.TradeStatusAccepted, got.Status)
	assert.Len(t, f.notifier.statuses(), updates)
}

func TestConfirm_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()
	i1 := f.item(t, u1, models.ItemTypeTrade)
	i2 := f.item(t, u2, models.ItemTypeTrade)

	pending, err := f.svc.Propose(ctx, u1, i1.ID, i2.ID)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, pending.ID, u1)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	_, err = f.svc.Confirm(ctx, pending.ID, uuid.New())
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.Confirm(ctx, uuid.New(), u1)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestConfirm_AfterFinalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trade, _, _ := f.acceptedTrade(t)

	_, err := f.svc.Confirm(ctx, trade.ID, trade.OffererID)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, trade.ID, trade.RequesterID)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, trade.ID, trade.OffererID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

// Scenario C: дар затрагивает только одну вещь
func TestConfirm_Donation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u3, u4 := uuid.New(), uuid.New()
	i3 := f.item(t, u3, models.ItemTypeDonation)
	other := f.item(t, u4, models.ItemTypeTrade)

	trade, err := f.svc.Propose(ctx, u4, i3.ID, i3.ID)
	require.NoError(t, err)
	assert.Equal(t, i3.ID, trade.OfferedItemID)
	assert.Equal(t, u4, trade.OffererID)
	assert.Equal(t, u3, trade.RequesterID)

	_, err = f.svc.Accept(ctx, trade.ID, u3)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, trade.ID, u3)
	require.NoError(t, err)
	got, err := f.svc.Confirm(ctx, trade.ID, u4)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusConfirmed, got.Status)

	item, err := f.store.GetItem(ctx, i3.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusTraded, item.Status)

	untouched, err := f.store.GetItem(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusAvailable, untouched.Status)
}

func TestConfirm_DonationWithoutOfferedItem(t *testing.T) {
	f := newFixture(t)
	u3, u4 := uuid.New(), uuid.New()
	i3 := f.item(t, u3, models.ItemTypeDonation)

	trade, err := f.svc.Propose(context.Background(), u4, uuid.Nil, i3.ID)
	require.NoError(t, err)
	assert.Equal(t, i3.ID, trade.OfferedItemID)
	assert.Equal(t, []uuid.UUID{i3.ID}, trade.ItemIDs())
}

func TestConfirm_ConcurrentFinalizesExactlyOnce(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(t)
		ctx := context.Background()
		trade, i1, i2 := f.acceptedTrade(t)

		var wg sync.WaitGroup
		results := make([]error, 2)
		for j, actor := range []uuid.UUID{trade.OffererID, trade.RequesterID} {
			wg.Add(1)
			go func(j int, actor uuid.UUID) {
				defer wg.Done()
				_, results[j] = f.svc.Confirm(ctx, trade.ID, actor)
			}(j, actor)
		}
		wg.Wait()

		for _, err := range results {
			require.NoError(t, err)
		}

		got, err := f.store.GetTrade(ctx, trade.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TradeStatusConfirmed, got.Status)
		assert.True(t, got.ConfirmedByOfferer)
		assert.True(t, got.ConfirmedByRequester)

		for _, id := range []uuid.UUID{i1.ID, i2.ID} {
			item, err := f.store.GetItem(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.ItemStatusTraded, item.Status)
		}

		confirmed := 0
		for _, status := range f.notifier.statuses() {
			if status == models.TradeStatusConfirmed {
				confirmed++
			}
		}
		assert.Equal(t, 1, confirmed)
	}
}
