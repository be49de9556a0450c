// Package memory реализует хранилище в памяти процесса. Один мьютекс служит точкой
// сериализации для всех условных записей. Используется в тестах и при STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
	"github.com/rajivgeraev/flippy-exchange/internal/utils"
)

// Store реализует store.Store
type Store struct {
	mu       sync.Mutex
	clock    utils.Clock
	items    map[uuid.UUID]models.Item
	trades   map[uuid.UUID]models.TradeRequest
	messages map[uuid.UUID][]models.Message
	seq      int64
}

var _ store.Store = (*Store)(nil)

// New создаёт пустое хранилище
func New(clock utils.Clock) *Store {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &Store{
		clock:    clock,
		items:    make(map[uuid.UUID]models.Item),
		trades:   make(map[uuid.UUID]models.TradeRequest),
		messages: make(map[uuid.UUID][]models.Message),
	}
}

func (s *Store) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("item %s: %w", item.ID, store.ErrDuplicate)
	}
	s.items[item.ID] = *item
	return nil
}

func (s *Store) GetItem(_ context.Context, id uuid.UUID) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, errs.ErrNotFound)
	}
	return &item, nil
}

func (s *Store) ListItemsByOwner(_ context.Context, userID uuid.UUID) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.Item
	for _, item := range s.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CreateTrade(_ context.Context, trade *models.TradeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.trades {
		if existing.Status == models.TradeStatusPending &&
			existing.OffererID == trade.OffererID &&
			existing.OfferedItemID == trade.OfferedItemID &&
			existing.RequestedItemID == trade.RequestedItemID {
			return store.ErrDuplicate
		}
	}
	s.trades[trade.ID] = *trade
	return nil
}

func (s *Store) GetTrade(_ context.Context, id uuid.UUID) (*models.TradeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, ok := s.trades[id]
	if !ok {
		return nil, fmt.Errorf("trade %s: %w", id, errs.ErrNotFound)
	}
	return &trade, nil
}

func (s *Store) ListTradesByUser(_ context.Context, userID uuid.UUID) ([]models.TradeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var trades []models.TradeRequest
	for _, trade := range s.trades {
		if trade.OffererID == userID || trade.RequesterID == userID {
			trades = append(trades, trade)
		}
	}
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].CreatedAt.After(trades[j].CreatedAt)
	})
	return trades, nil
}

func (s *Store) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.TradeStatus) (*models.TradeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, ok := s.trades[id]
	if !ok {
		return nil, fmt.Errorf("trade %s: %w", id, errs.ErrNotFound)
	}
	if trade.Status != from {
		return nil, store.ErrConflict
	}
	trade.Status = to
	trade.UpdatedAt = s.clock.Now()
	s.trades[id] = trade
	return &trade, nil
}

func (s *Store) ConfirmTrade(_ context.Context, upd store.ConfirmUpdate) (*models.TradeRequest, error) {
	offerer, requester, err := store.CheckConfirmUpdate(upd)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trade, ok := s.trades[upd.TradeID]
	if !ok {
		return nil, fmt.Errorf("trade %s: %w", upd.TradeID, errs.ErrNotFound)
	}
	if trade.Status != models.TradeStatusAccepted ||
		trade.ConfirmedByOfferer != upd.ExpectOfferer ||
		trade.ConfirmedByRequester != upd.ExpectRequester {
		return nil, store.ErrConflict
	}

	// Все проверки до первой записи: либо меняется всё, либо ничего
	if upd.Finalize {
		for _, id := range upd.ItemIDs {
			item, ok := s.items[id]
			if !ok {
				return nil, fmt.Errorf("item %s: %w", id, errs.ErrNotFound)
			}
			if !item.IsAvailable() {
				return nil, fmt.Errorf("item %s: %w", id, store.ErrItemUnavailable)
			}
		}
	}

	trade.ConfirmedByOfferer = offerer
	trade.ConfirmedByRequester = requester
	trade.UpdatedAt = s.clock.Now()
	if upd.Finalize {
		trade.Status = models.TradeStatusConfirmed
		for _, id := range upd.ItemIDs {
			item := s.items[id]
			item.Status = models.ItemStatusTraded
			s.items[id] = item
		}
	}
	s.trades[trade.ID] = trade
	return &trade, nil
}

func (s *Store) AppendMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, ok := s.trades[msg.TradeID]
	if !ok {
		return fmt.Errorf("trade %s: %w", msg.TradeID, errs.ErrNotFound)
	}
	if trade.Status != models.TradeStatusAccepted {
		return store.ErrConflict
	}

	s.seq++
	msg.Seq = s.seq
	msg.CreatedAt = s.clock.Now()
	history := s.messages[msg.TradeID]
	if n := len(history); n > 0 && msg.CreatedAt.Before(history[n-1].CreatedAt) {
		msg.CreatedAt = history[n-1].CreatedAt
	}
	s.messages[msg.TradeID] = append(history, *msg)
	return nil
}

func (s *Store) ListMessages(_ context.Context, tradeID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.messages[tradeID]
	messages := make([]models.Message, len(history))
	copy(messages, history)
	return messages, nil
}
