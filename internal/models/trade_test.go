package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTradeStatus_Transitions(t *testing.T) {
	all := []TradeStatus{
		TradeStatusPending, TradeStatusAccepted, TradeStatusConfirmed,
		TradeStatusRejected, TradeStatusCancelled,
	}
	allowed := map[[2]TradeStatus]bool{
		{TradeStatusPending, TradeStatusAccepted}:   true,
		{TradeStatusPending, TradeStatusRejected}:   true,
		{TradeStatusPending, TradeStatusCancelled}:  true,
		{TradeStatusAccepted, TradeStatusConfirmed}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]TradeStatus{from, to}], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestTradeStatus_IsTerminal(t *testing.T) {
	assert.False(t, TradeStatusPending.IsTerminal())
	assert.False(t, TradeStatusAccepted.IsTerminal())
	assert.True(t, TradeStatusConfirmed.IsTerminal())
	assert.True(t, TradeStatusRejected.IsTerminal())
	assert.True(t, TradeStatusCancelled.IsTerminal())
}

func TestTradeRequest_Roles(t *testing.T) {
	offerer, requester, stranger := uuid.New(), uuid.New(), uuid.New()
	trade := &TradeRequest{OffererID: offerer, RequesterID: requester, ConfirmedByRequester: true}

	role, ok := trade.RoleOf(offerer)
	assert.True(t, ok)
	assert.Equal(t, RoleOfferer, role)

	role, ok = trade.RoleOf(requester)
	assert.True(t, ok)
	assert.Equal(t, RoleRequester, role)

	assert.False(t, trade.IsParticipant(stranger))
	assert.False(t, trade.ConfirmedBy(RoleOfferer))
	assert.True(t, trade.ConfirmedBy(RoleRequester))
}

func TestTradeRequest_ItemIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{a, b}, (&TradeRequest{OfferedItemID: a, RequestedItemID: b}).ItemIDs())
	assert.Equal(t, []uuid.UUID{b}, (&TradeRequest{OfferedItemID: b, RequestedItemID: b}).ItemIDs())
}

func TestMessage_Before(t *testing.T) {
	now := time.Now()
	first := &Message{CreatedAt: now, Seq: 1}
	second := &Message{CreatedAt: now, Seq: 2}
	later := &Message{CreatedAt: now.Add(time.Millisecond), Seq: 0}

	assert.True(t, first.Before(second))
	assert.False(t, second.Before(first))
	assert.True(t, second.Before(later))
}
