package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/ratelimit"
)

// RateLimit limita por empresa y usuario (después de AuthMiddleware). limiter nil = sin límite.
func RateLimit(limiter ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		key := GetCompanyID(c) + ":" + GetUserID(c)
		if key == ":" {
			key = "ip:" + c.IP()
		}
		d, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			return err
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.RetryAfter.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas solicitudes, intente más tarde",
			})
		}
		return c.Next()
	}
}
