package trade

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/db"
	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/middleware"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/response"
)

// CreateTrade создает новое предложение обмена
func (s *TradeService) CreateTrade(c fiber.Ctx) error {
	userID, err := middleware.CurrentUser(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	var requestData struct {
		OfferedItemID   string `json:"offered_item_id"`
		RequestedItemID string `json:"requested_item_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	requestedItemID, err := uuid.Parse(requestData.RequestedItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID запрошенной вещи"})
	}

	// Для дара предлагаемую вещь можно не указывать
	offeredItemID := uuid.Nil
	if requestData.OfferedItemID != "" {
		if offeredItemID, err = uuid.Parse(requestData.OfferedItemID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предлагаемой вещи"})
		}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	trade, err := s.Propose(ctx, userID, offeredItemID, requestedItemID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"trade":   trade,
	})
}

// GetMyTrades возвращает отправленные и полученные предложения пользователя
func (s *TradeService) GetMyTrades(c fiber.Ctx) error {
	userID, err := middleware.CurrentUser(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	list, err := s.ListTrades(ctx, userID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"sent":     list.Sent,
		"received": list.Received,
	})
}

// GetTradeByID возвращает предложение обмена участнику
func (s *TradeService) GetTradeByID(c fiber.Ctx) error {
	userID, tradeID, err := parseTradeRequest(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	trade, err := s.GetTrade(ctx, tradeID, userID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"trade":        trade,
		"status_label": StatusLabel(trade.Status),
	})
}

// UpdateTradeStatus обновляет статус предложения обмена (принятие/отклонение/отмена)
func (s *TradeService) UpdateTradeStatus(c fiber.Ctx) error {
	userID, tradeID, err := parseTradeRequest(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	var requestData struct {
		Status string `json:"status"` // accepted, rejected, canceled
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	var action func(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, error)
	switch requestData.Status {
	case "accepted":
		action = s.Accept
	case "rejected":
		action = s.Reject
	case "canceled", "cancelled":
		action = s.Cancel
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус предложения обмена"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	trade, err := action(ctx, tradeID, userID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"trade":   trade,
	})
}

// ConfirmTrade подтверждает, что обмен состоялся
func (s *TradeService) ConfirmTrade(c fiber.Ctx) error {
	userID, tradeID, err := parseTradeRequest(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	trade, err := s.Confirm(ctx, tradeID, userID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"trade":     trade,
		"completed": trade.Status == models.TradeStatusConfirmed,
	})
}

func parseTradeRequest(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := middleware.CurrentUser(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: malformed trade id", errs.ErrInvalidInput)
	}
	return userID, tradeID, nil
}
