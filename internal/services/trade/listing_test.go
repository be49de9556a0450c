package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-exchange/internal/models"
)

func TestStatusLabel(t *testing.T) {
	statuses := []models.TradeStatus{
		models.TradeStatusPending,
		models.TradeStatusAccepted,
		models.TradeStatusConfirmed,
		models.TradeStatusRejected,
		models.TradeStatusCancelled,
	}
	seen := make(map[string]bool)
	for _, status := range statuses {
		label := StatusLabel(status)
		assert.NotEmpty(t, label)
		assert.False(t, seen[label], "label %q repeated", label)
		seen[label] = true
	}
	assert.Equal(t, StatusLabel(models.TradeStatusPending), StatusLabel("unknown"))
}

func TestListTrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()
	i1 := f.item(t, u1, models.ItemTypeTrade)
	i2 := f.item(t, u2, models.ItemTypeTrade)
	i3 := f.item(t, u3, models.ItemTypeDonation)
	i4 := f.item(t, u3, models.ItemTypeTrade)

	older, err := f.svc.Propose(ctx, u1, i1.ID, i2.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	donation, err := f.svc.Propose(ctx, u1, uuid.Nil, i3.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	received, err := f.svc.Propose(ctx, u3, i4.ID, i1.ID)
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, received.ID, u1)
	require.NoError(t, err)

	list, err := f.svc.ListTrades(ctx, u1)
	require.NoError(t, err)

	require.Len(t, list.Sent, 2)
	assert.Equal(t, donation.ID, list.Sent[0].ID)
	assert.Equal(t, older.ID, list.Sent[1].ID)

	assert.True(t, list.Sent[0].IsDonation)
	assert.Nil(t, list.Sent[0].OfferedItem)
	require.NotNil(t, list.Sent[0].RequestedItem)
	assert.Equal(t, i3.ID, list.Sent[0].RequestedItem.ID)

	assert.False(t, list.Sent[1].IsDonation)
	require.NotNil(t, list.Sent[1].OfferedItem)
	assert.Equal(t, i1.ID, list.Sent[1].OfferedItem.ID)
	assert.Equal(t, StatusLabel(models.TradeStatusPending), list.Sent[1].StatusLabel)

	require.Len(t, list.Received, 1)
	assert.Equal(t, received.ID, list.Received[0].ID)
	assert.Equal(t, StatusLabel(models.TradeStatusRejected), list.Received[0].StatusLabel)

	// Посторонний пользователь ничего не видит
	empty, err := f.svc.ListTrades(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty.Sent)
	assert.Empty(t, empty.Received)
}
