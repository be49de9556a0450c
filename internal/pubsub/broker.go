// Package pubsub доставляет новые сообщения переписки живым подписчикам.
// Доставка best-effort и не более одного раза: медленный подписчик теряет
// сообщения, полная история всегда доступна из хранилища.
package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/models"
)

// DefaultBufferSize задаёт размер буфера канала одного подписчика
const DefaultBufferSize = 64

// Broker публикует сообщения по каналу обмена
type Broker interface {
	Publish(ctx context.Context, msg models.Message) error
	Subscribe(ctx context.Context, tradeID uuid.UUID) (*Subscription, error)
	Close() error
}

// Subscription представляет подписку на канал одного обмена
type Subscription struct {
	C <-chan models.Message

	once   sync.Once
	cancel func()
}

func newSubscription(c <-chan models.Message, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Close отменяет подписку; повторный вызов безопасен
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}
