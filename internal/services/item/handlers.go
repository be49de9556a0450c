package item

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/db"
	"github.com/rajivgeraev/flippy-exchange/internal/middleware"
	"github.com/rajivgeraev/flippy-exchange/internal/response"
)

// CreateItem обрабатывает создание новой вещи
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID, err := middleware.CurrentUser(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	var requestData NewItem
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := s.Create(ctx, userID, requestData)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// GetMyItems возвращает вещи текущего пользователя
func (s *ItemService) GetMyItems(c fiber.Ctx) error {
	userID, err := middleware.CurrentUser(c)
	if err != nil {
		return response.WriteError(c, err)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	items, err := s.ListByOwner(ctx, userID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"items": items,
	})
}

// GetItem возвращает одну вещь по ID
func (s *ItemService) GetItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := s.Get(ctx, itemID)
	if err != nil {
		return response.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"item": item,
	})
}
