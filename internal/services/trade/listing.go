package trade

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/models"
)

var statusLabels = map[models.TradeStatus]string{
	models.TradeStatusPending:   "Ожидает ответа",
	models.TradeStatusAccepted:  "В обсуждении",
	models.TradeStatusConfirmed: "Обмен состоялся",
	models.TradeStatusRejected:  "Отклонено",
	models.TradeStatusCancelled: "Отменено",
}

// StatusLabel возвращает подпись статуса для интерфейса
func StatusLabel(status models.TradeStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return statusLabels[models.TradeStatusPending]
}

// ListTrades возвращает обмены пользователя: отправленные и полученные, новые первыми
func (s *TradeService) ListTrades(ctx context.Context, userID uuid.UUID) (*models.TradeList, error) {
	trades, err := s.store.ListTradesByUser(ctx, userID)
	if err != nil {
		log.Printf("Ошибка получения обменов пользователя %s: %v", userID, err)
		return nil, err
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].CreatedAt.After(trades[j].CreatedAt)
	})

	list := &models.TradeList{
		Sent:     []models.TradeView{},
		Received: []models.TradeView{},
	}
	items := make(map[uuid.UUID]*models.Item)

	for _, trade := range trades {
		view := s.buildView(ctx, trade, items)
		switch userID {
		case trade.OffererID:
			list.Sent = append(list.Sent, view)
		case trade.RequesterID:
			list.Received = append(list.Received, view)
		}
	}
	return list, nil
}

func (s *TradeService) buildView(ctx context.Context, trade models.TradeRequest, cache map[uuid.UUID]*models.Item) models.TradeView {
	view := models.TradeView{
		TradeRequest: trade,
		StatusLabel:  StatusLabel(trade.Status),
	}

	view.RequestedItem = s.lookupItem(ctx, trade.RequestedItemID, cache)
	if view.RequestedItem != nil {
		view.IsDonation = view.RequestedItem.IsDonation()
	} else {
		view.IsDonation = trade.OfferedItemID == trade.RequestedItemID
	}

	// Для дара предлагаемой вещи нет
	if !view.IsDonation {
		view.OfferedItem = s.lookupItem(ctx, trade.OfferedItemID, cache)
	}
	return view
}

func (s *TradeService) lookupItem(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*models.Item) *models.Item {
	if item, ok := cache[id]; ok {
		return item
	}
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		log.Printf("Ошибка получения вещи %s: %v", id, err)
		item = nil
	}
	cache[id] = item
	return item
}
