// Package store описывает хранилище вещей, обменов и сообщений.
// Реализации обязаны выполнять условные обновления атомарно:
// переход статуса и подтверждение проверяют ожидаемое состояние записи
// и применяются целиком либо не применяются вовсе.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/models"
)

var (
	// ErrConflict: запись изменилась между чтением и условной записью
	ErrConflict = errors.New("concurrent update conflict")
	// ErrDuplicate: такое ожидающее предложение уже существует
	ErrDuplicate = errors.New("duplicate pending trade")
	// ErrItemUnavailable: одна из вещей уже отмечена как обменянная
	ErrItemUnavailable = errors.New("item is no longer available")
)

// ItemRegistry представляет реестр вещей. Доступность вещи меняется только внутри TradeStore.ConfirmTrade.
type ItemRegistry interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItemsByOwner(ctx context.Context, userID uuid.UUID) ([]models.Item, error)
}

// ConfirmUpdate описывает условную запись подтверждения.
// Запись применяется, только если обмен в статусе accepted и флаги совпадают с ожидаемыми.
// При Finalize в той же атомарной записи обмен становится confirmed, а вещи ItemIDs становятся traded.
type ConfirmUpdate struct {
	TradeID         uuid.UUID
	Role            models.TradeRole
	ExpectOfferer   bool
	ExpectRequester bool
	Finalize        bool
	ItemIDs         []uuid.UUID
}

// TradeStore хранит предложения обмена
type TradeStore interface {
	CreateTrade(ctx context.Context, trade *models.TradeRequest) error
	GetTrade(ctx context.Context, id uuid.UUID) (*models.TradeRequest, error)
	// ListTradesByUser возвращает обмены, где пользователь является одной из сторон, новые первыми
	ListTradesByUser(ctx context.Context, userID uuid.UUID) ([]models.TradeRequest, error)
	// TransitionStatus меняет статус только если текущий равен from, иначе ErrConflict
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.TradeStatus) (*models.TradeRequest, error)
	ConfirmTrade(ctx context.Context, upd ConfirmUpdate) (*models.TradeRequest, error)
}

// MessageStore хранит переписку по обменам
type MessageStore interface {
	// AppendMessage сохраняет сообщение, если обмен в статусе accepted, иначе ErrConflict.
	// CreatedAt и Seq назначает хранилище; CreatedAt не убывает вместе с Seq.
	AppendMessage(ctx context.Context, msg *models.Message) error
	// ListMessages возвращает историю по возрастанию (created_at, seq)
	ListMessages(ctx context.Context, tradeID uuid.UUID) ([]models.Message, error)
}

// Store объединяет все хранилища движка
type Store interface {
	ItemRegistry
	TradeStore
	MessageStore
}

// CheckConfirmUpdate проверяет согласованность запроса подтверждения и возвращает новые значения флагов
func CheckConfirmUpdate(upd ConfirmUpdate) (offerer, requester bool, err error) {
	offerer, requester = upd.ExpectOfferer, upd.ExpectRequester
	switch upd.Role {
	case models.RoleOfferer:
		offerer = true
	case models.RoleRequester:
		requester = true
	default:
		return false, false, errors.New("unknown trade role")
	}
	if upd.Finalize && !(offerer && requester) {
		return false, false, errors.New("finalize requires both confirmations")
	}
	if upd.Finalize && len(upd.ItemIDs) == 0 {
		return false, false, errors.New("finalize requires linked items")
	}
	return offerer, requester, nil
}
