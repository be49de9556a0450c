package response

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
)

type ErrorMapping struct {
	HTTPStatus  int
	Message     string
	// HideDetails не отдаёт клиенту текст ошибки
	HideDetails bool
}

var errorMappings = map[error]ErrorMapping{
	errs.ErrInvalidProposal: {
		HTTPStatus: fiber.StatusUnprocessableEntity,
		Message:    "Предложение обмена невозможно",
	},
	errs.ErrInvalidState: {
		HTTPStatus: fiber.StatusConflict,
		Message:    "Действие недоступно в текущем статусе обмена",
	},
	errs.ErrForbidden: {
		HTTPStatus:  fiber.StatusForbidden,
		Message:     "Нет доступа к этому обмену",
		HideDetails: true,
	},
	errs.ErrInvalidInput: {
		HTTPStatus: fiber.StatusBadRequest,
		Message:    "Неверный формат данных",
	},
	errs.ErrNotFound: {
		HTTPStatus: fiber.StatusNotFound,
		Message:    "Не найдено",
	},
	errs.ErrUnauthenticated: {
		HTTPStatus: fiber.StatusUnauthorized,
		Message:    "Пользователь не авторизован",
	},
}

// MapError возвращает HTTP статус и сообщение для ошибки сервиса
func MapError(err error) (int, fiber.Map) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			if mapping.HideDetails {
				return mapping.HTTPStatus, fiber.Map{"error": mapping.Message}
			}
			return mapping.HTTPStatus, fiber.Map{"error": mapping.Message, "details": err.Error()}
		}
	}
	return fiber.StatusInternalServerError, fiber.Map{"error": "Внутренняя ошибка сервера"}
}

// WriteError отправляет ошибку клиенту; неизвестные ошибки логируются
func WriteError(c fiber.Ctx, err error) error {
	status, body := MapError(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("Ошибка обработки запроса %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(body)
}
