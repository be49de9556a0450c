package models

import (
	"time"

	"github.com/google/uuid"
)

// Message представляет сообщение в переписке по обмену
type Message struct {
	ID        uuid.UUID `json:"id"`
	TradeID   uuid.UUID `json:"trade_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Seq       int64     `json:"seq"`
}

// Before задаёт полный порядок сообщений: время создания, затем порядковый номер вставки
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.Seq < other.Seq
}
