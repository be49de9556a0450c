package chat

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты переписки по обмену.
// router должен уже проверять авторизацию
func (s *ChatService) SetupRoutes(router fiber.Router) {
	router.Get("/trades/:id/messages", s.GetMessages)
	router.Post("/trades/:id/messages", s.PostMessage)
}
