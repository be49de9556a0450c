package monitoring

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
)

// FiberMiddleware записывает длительность и количество HTTP-запросов по шаблону маршрута
func FiberMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		code := strconv.Itoa(status)
		HTTPRequestDuration.WithLabelValues(route, c.Method(), code).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(route, c.Method(), code).Inc()

		return err
	}
}
