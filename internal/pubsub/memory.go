package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/monitoring"
)

type subscriber struct {
	ch chan models.Message
}

// MemoryBroker рассылает сообщения внутри одного процесса
type MemoryBroker struct {
	mu         sync.RWMutex
	bufferSize int
	channels   map[uuid.UUID]map[*subscriber]struct{}
}

// NewMemoryBroker создаёт брокер; bufferSize <= 0 означает DefaultBufferSize
func NewMemoryBroker(bufferSize int) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &MemoryBroker{
		bufferSize: bufferSize,
		channels:   make(map[uuid.UUID]map[*subscriber]struct{}),
	}
}

func (b *MemoryBroker) Publish(_ context.Context, msg models.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.channels[msg.TradeID] {
		select {
		case sub.ch <- msg:
		default:
			monitoring.ChannelDroppedTotal.Inc()
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, tradeID uuid.UUID) (*Subscription, error) {
	sub := &subscriber{ch: make(chan models.Message, b.bufferSize)}

	b.mu.Lock()
	if b.channels[tradeID] == nil {
		b.channels[tradeID] = make(map[*subscriber]struct{})
	}
	b.channels[tradeID][sub] = struct{}{}
	b.mu.Unlock()

	return newSubscription(sub.ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// После Close брокера канал уже закрыт
		subs := b.channels[tradeID]
		if _, ok := subs[sub]; !ok {
			return
		}
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.channels, tradeID)
		}
		close(sub.ch)
	}), nil
}

// Close закрывает все подписки
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for tradeID, subs := range b.channels {
		for sub := range subs {
			close(sub.ch)
		}
		delete(b.channels, tradeID)
	}
	return nil
}
