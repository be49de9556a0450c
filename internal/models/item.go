package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemType определяет, отдаётся ли вещь в обмен или бесплатно
type ItemType string

const (
	ItemTypeTrade    ItemType = "trade"
	ItemTypeDonation ItemType = "donation"
)

// ItemStatus определяет доступность вещи для новых обменов
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusTraded    ItemStatus = "traded"
)

// Item представляет вещь, выставленную пользователем
type Item struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	ImageURL    string     `json:"image_url,omitempty"`
	Type        ItemType   `json:"type"`
	Status      ItemStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsAvailable сообщает, можно ли использовать вещь в новом обмене
func (i *Item) IsAvailable() bool {
	return i.Status == ItemStatusAvailable
}

// IsDonation сообщает, отдаётся ли вещь бесплатно
func (i *Item) IsDonation() bool {
	return i.Type == ItemTypeDonation
}

// ValidItemType проверяет тип вещи
func ValidItemType(t ItemType) bool {
	return t == ItemTypeTrade || t == ItemTypeDonation
}
