package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/seatlink/seatlink-backend/internal/services"
)

// RequireAuth validates the Bearer session token and stores the
// authenticated identity in the request context. Handlers read
// c.Locals("accountID") and c.Locals("role") instead of any ambient
// session state.
func RequireAuth(sessions *services.SessionService, roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token required",
			})
		}

		claims, err := sessions.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		if len(allowed) > 0 && !allowed[claims.Role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}

		c.Locals("accountID", claims.AccountID)
		c.Locals("role", claims.Role)
		c.Locals("mobile", claims.Mobile)
		return c.Next()
	}
}
