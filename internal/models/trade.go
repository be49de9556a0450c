package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus определяет состояние предложения обмена
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusAccepted  TradeStatus = "accepted"
	TradeStatusConfirmed TradeStatus = "confirmed"
	TradeStatusRejected  TradeStatus = "rejected"
	TradeStatusCancelled TradeStatus = "cancelled"
)

// IsTerminal сообщает, что из статуса больше нет переходов
func (s TradeStatus) IsTerminal() bool {
	return s == TradeStatusConfirmed || s == TradeStatusRejected || s == TradeStatusCancelled
}

// CanTransition проверяет переход по графу состояний обмена
func (s TradeStatus) CanTransition(to TradeStatus) bool {
	switch s {
	case TradeStatusPending:
		return to == TradeStatusAccepted || to == TradeStatusRejected || to == TradeStatusCancelled
	case TradeStatusAccepted:
		return to == TradeStatusConfirmed
	}
	return false
}

// TradeRole определяет сторону обмена
type TradeRole string

const (
	RoleOfferer   TradeRole = "offerer"
	RoleRequester TradeRole = "requester"
)

// TradeRequest представляет предложение обмена или запрос на получение дара.
// OffererID хранит автора предложения, RequesterID хранит владельца запрошенной вещи.
// Для дара OfferedItemID совпадает с RequestedItemID.
type TradeRequest struct {
	ID                   uuid.UUID   `json:"id"`
	OfferedItemID        uuid.UUID   `json:"offered_item_id"`
	RequestedItemID      uuid.UUID   `json:"requested_item_id"`
	OffererID            uuid.UUID   `json:"offerer_id"`
	RequesterID          uuid.UUID   `json:"requester_id"`
	Status               TradeStatus `json:"status"`
	ConfirmedByOfferer   bool        `json:"confirmed_by_offerer"`
	ConfirmedByRequester bool        `json:"confirmed_by_requester"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// RoleOf возвращает роль пользователя в обмене
func (t *TradeRequest) RoleOf(userID uuid.UUID) (TradeRole, bool) {
	switch userID {
	case t.OffererID:
		return RoleOfferer, true
	case t.RequesterID:
		return RoleRequester, true
	}
	return "", false
}

// IsParticipant сообщает, является ли пользователь одной из сторон обмена
func (t *TradeRequest) IsParticipant(userID uuid.UUID) bool {
	_, ok := t.RoleOf(userID)
	return ok
}

// ConfirmedBy возвращает флаг подтверждения для роли
func (t *TradeRequest) ConfirmedBy(role TradeRole) bool {
	if role == RoleOfferer {
		return t.ConfirmedByOfferer
	}
	return t.ConfirmedByRequester
}

// ItemIDs возвращает связанные вещи без повторов
func (t *TradeRequest) ItemIDs() []uuid.UUID {
	if t.OfferedItemID == t.RequestedItemID {
		return []uuid.UUID{t.RequestedItemID}
	}
	return []uuid.UUID{t.OfferedItemID, t.RequestedItemID}
}

// TradeView представляет обмен вместе с вещами для отображения в списках
type TradeView struct {
	TradeRequest
	StatusLabel   string `json:"status_label"`
	IsDonation    bool   `json:"is_donation"`
	OfferedItem   *Item  `json:"offered_item,omitempty"`
	RequestedItem *Item  `json:"requested_item,omitempty"`
}

// TradeList разделяет обмены пользователя на отправленные и полученные
type TradeList struct {
	Sent     []TradeView `json:"sent"`
	Received []TradeView `json:"received"`
}
