package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"crewmanager/utils"
)

// Protected enforces the Auth0 bearer scheme on user-facing endpoints. On
// success the caller's login id (token subject) and display name are stored
// in Locals for handlers to use as the acting identity.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		claims, err := utils.ParseAccessToken(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		actor := claims.Subject
		if actor == "" {
			actor = "Unknown"
		}
		c.Locals("actor", actor)
		c.Locals("actorName", claims.Name)

		return c.Next()
	}
}

// Actor returns the acting identity set by Protected or APIKeyAuth.
func Actor(c *fiber.Ctx) string {
	if actor, ok := c.Locals("actor").(string); ok && actor != "" {
		return actor
	}
	return "Unknown"
}
