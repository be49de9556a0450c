package trade

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API обменов.
// router должен уже проверять авторизацию
func (s *TradeService) SetupRoutes(router fiber.Router) {
	api := router.Group("/trades")

	// Создание предложения и список предложений пользователя
	api.Post("/", s.CreateTrade)
	api.Get("/", s.GetMyTrades)

	api.Get("/:id", s.GetTradeByID)

	// Принятие, отклонение или отмена
	api.Put("/:id/status", s.UpdateTradeStatus)

	api.Post("/:id/confirm", s.ConfirmTrade)
}
