package chat

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/db"
	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/middleware"
	"github.com/rajivgeraev/flippy-exchange/internal/response"
)

// GetMessages возвращает историю переписки по обмену
func (s *ChatService) GetMessages(c fiber.Ctx) error {
	userID, tradeID, err := parseChatRequest(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	messages, err := s.ListMessages(ctx, tradeID, userID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// PostMessage отправляет сообщение в переписку по обмену
func (s *ChatService) PostMessage(c fiber.Ctx) error {
	userID, tradeID, err := parseChatRequest(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	var requestData struct {
		Content string `json:"content"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msg, err := s.SendMessage(ctx, tradeID, userID, requestData.Content)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": msg,
	})
}

func parseChatRequest(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
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
