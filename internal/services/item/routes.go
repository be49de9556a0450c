package item

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API вещей.
// router должен уже проверять авторизацию
func (s *ItemService) SetupRoutes(router fiber.Router) {
	api := router.Group("/items")

	api.Post("/", s.CreateItem)

	// Маршрут для получения списка своих вещей
	api.Get("/my", s.GetMyItems)

	api.Get("/:id", s.GetItem)
}
