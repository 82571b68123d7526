// middleware/admin_auth.go
package middleware

import (
	"bonus-listing-system/logging"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier checks an admin session token.
type TokenVerifier interface {
	VerifyToken(raw string) error
}

// AdminAuthMiddleware admits requests carrying a valid admin session cookie.
func AdminAuthMiddleware(auth TokenVerifier, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.VerifyToken(c.Cookies(cookieName)); err != nil {
			logging.Ctx(c.UserContext()).Debug().Err(err).Str("path", c.Path()).Msg("🚫 [ADMIN_AUTH] rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		c.Locals(LocalsAdmin, true)
		return c.Next()
	}
}
