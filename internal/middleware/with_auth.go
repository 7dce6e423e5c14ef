package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/konverge-api/internal/utils"
)

// RequireUser rejects requests that reached the handler without an
// authenticated user.
func RequireUser(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); !ok {
			return utils.SendErrorCode(c, fiber.StatusUnauthorized, "unauthorized", "authentication required")
		}
		return handler(c)
	}
}
