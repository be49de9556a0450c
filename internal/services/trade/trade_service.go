package trade

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/db"
	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/monitoring"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
	"github.com/rajivgeraev/flippy-exchange/internal/utils"
)

// Notifier получает обмен после каждого изменения его состояния
type Notifier interface {
	TradeUpdated(trade models.TradeRequest)
}

// TradeService представляет сервис для работы с обменами
type TradeService struct {
	store      store.Store
	clock      utils.Clock
	notifier   Notifier
	maxRetries int
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(st store.Store, clock utils.Clock, maxRetries int) *TradeService {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	if maxRetries <= 0 {
		maxRetries = db.DefaultMaxRetries
	}
	return &TradeService{
		store:      st,
		clock:      clock,
		maxRetries: maxRetries,
	}
}

// SetNotifier подключает рассылку обновлений обменов
func (s *TradeService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *TradeService) notify(trade *models.TradeRequest) {
	if s.notifier != nil {
		s.notifier.TradeUpdated(*trade)
	}
}

// Propose создает предложение обмена. Для дара offeredItemID может быть uuid.Nil
func (s *TradeService) Propose(ctx context.Context, offererID, offeredItemID, requestedItemID uuid.UUID) (*models.TradeRequest, error) {
	requested, err := s.store.GetItem(ctx, requestedItemID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: requested item %s does not exist", errs.ErrInvalidProposal, requestedItemID)
		}
		return nil, err
	}

	if requested.UserID == offererID {
		return nil, fmt.Errorf("%w: cannot propose a trade for your own item", errs.ErrInvalidProposal)
	}
	if !requested.IsAvailable() {
		return nil, fmt.Errorf("%w: requested item is no longer available", errs.ErrInvalidProposal)
	}

	if requested.IsDonation() {
		if offeredItemID == uuid.Nil {
			offeredItemID = requested.ID
		}
		if offeredItemID != requested.ID {
			return nil, fmt.Errorf("%w: a donation request must reference the donated item", errs.ErrInvalidProposal)
		}
	} else {
		if offeredItemID == uuid.Nil || offeredItemID == requested.ID {
			return nil, fmt.Errorf("%w: an item must be offered in exchange", errs.ErrInvalidProposal)
		}
		offered, err := s.store.GetItem(ctx, offeredItemID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil, fmt.Errorf("%w: offered item %s does not exist", errs.ErrInvalidProposal, offeredItemID)
			}
			return nil, err
		}
		if offered.UserID != offererID {
			return nil, fmt.Errorf("%w: offered item belongs to another user", errs.ErrInvalidProposal)
		}
		if !offered.IsAvailable() {
			return nil, fmt.Errorf("%w: offered item is no longer available", errs.ErrInvalidProposal)
		}
	}

	now := s.clock.Now()
	trade := &models.TradeRequest{
		ID:              uuid.New(),
		OfferedItemID:   offeredItemID,
		RequestedItemID: requested.ID,
		OffererID:       offererID,
		RequesterID:     requested.UserID,
		Status:          models.TradeStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateTrade(ctx, trade); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: the same proposal is already pending", errs.ErrInvalidProposal)
		}
		log.Printf("Ошибка создания предложения обмена: %v", err)
		return nil, err
	}

	monitoring.TradesProposedTotal.Inc()
	log.Printf("Создано предложение обмена %s от пользователя %s", trade.ID, offererID)
	s.notify(trade)
	return trade, nil
}

// Accept принимает предложение; доступно только владельцу запрошенной вещи
func (s *TradeService) Accept(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, error) {
	return s.transition(ctx, tradeID, actorID, models.RoleRequester, models.TradeStatusAccepted)
}

// Reject отклоняет предложение; доступно только владельцу запрошенной вещи
func (s *TradeService) Reject(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, error) {
	return s.transition(ctx, tradeID, actorID, models.RoleRequester, models.TradeStatusRejected)
}

// Cancel отзывает предложение; доступно только автору
func (s *TradeService) Cancel(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, error) {
	return s.transition(ctx, tradeID, actorID, models.RoleOfferer, models.TradeStatusCancelled)
}

// transition выполняет переход из pending через сравнение с ожидаемым статусом
func (s *TradeService) transition(ctx context.Context, tradeID, actorID uuid.UUID, allowed models.TradeRole, to models.TradeStatus) (*models.TradeRequest, error) {
	trade, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	role, ok := trade.RoleOf(actorID)
	if !ok {
		return nil, fmt.Errorf("%w: not a participant of trade %s", errs.ErrForbidden, tradeID)
	}
	// участник завершённого обмена получает InvalidState, а не Forbidden
	if !trade.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: trade is %s", errs.ErrInvalidState, trade.Status)
	}
	if role != allowed {
		return nil, fmt.Errorf("%w: only the %s may move the trade to %s", errs.ErrForbidden, allowed, to)
	}

	if to == models.TradeStatusAccepted {
		if err := s.checkItemsAvailable(ctx, trade); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.TransitionStatus(ctx, tradeID, trade.Status, to)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: trade was changed concurrently", errs.ErrInvalidState)
		}
		log.Printf("Ошибка обновления статуса обмена %s: %v", tradeID, err)
		return nil, err
	}

	monitoring.RecordTransition(string(trade.Status), string(to))
	log.Printf("Обмен %s: %s -> %s (пользователь %s)", tradeID, trade.Status, to, actorID)
	s.notify(updated)
	return updated, nil
}

func (s *TradeService) checkItemsAvailable(ctx context.Context, trade *models.TradeRequest) error {
	for _, id := range trade.ItemIDs() {
		item, err := s.store.GetItem(ctx, id)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return fmt.Errorf("%w: item %s no longer exists", errs.ErrInvalidState, id)
			}
			return err
		}
		if !item.IsAvailable() {
			return fmt.Errorf("%w: item %s has already been traded", errs.ErrInvalidState, id)
		}
	}
	return nil
}

// GetTrade возвращает обмен одному из его участников
func (s *TradeService) GetTrade(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, error) {
	trade, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.IsParticipant(actorID) {
		return nil, fmt.Errorf("%w: not a participant of trade %s", errs.ErrForbidden, tradeID)
	}
	return trade, nil
}
