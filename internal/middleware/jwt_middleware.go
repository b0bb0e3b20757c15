package middleware

import (
	"strings"

	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set for authenticated requests.
const (
	LocalOperatorID = "operator_id"
	LocalUsername   = "username"
)

// AuthRequired rejects requests without a valid operator token and records
// the operator on the request for later handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, reason := bearerToken(c.Get(fiber.HeaderAuthorization))
		if reason != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": reason})
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalOperatorID, claims["operator_id"])
		c.Locals(LocalUsername, claims["username"])
		return c.Next()
	}
}

// Operator returns the username recorded by AuthRequired, or "" when the
// request was not authenticated.
func Operator(c *fiber.Ctx) string {
	username, _ := c.Locals(LocalUsername).(string)
	return username
}

func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "Authorization header is required"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", "Authorization header format must be 'Bearer <token>'"
	}
	return token, ""
}
