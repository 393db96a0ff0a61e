package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nathanntongai/plantmaint-backend/internal/services"
)

// RequireAuth validates the Bearer token and puts the caller's
// identity into request locals (userID, companyID, role).
func RequireAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or malformed authorization header",
			})
		}

		claims, err := authService.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("companyID", claims.CompanyID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}
