package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cabiir/FianlFitnessGym/pkg/utils"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalUserID = "user_id"

func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return utils.RespondFail(c, fiber.StatusUnauthorized, "You are not logged in. Please log in to get access")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return utils.RespondFail(c, fiber.StatusUnauthorized, "Invalid authorization header format")
		}

		claims, err := utils.ValidateToken(parts[1], secret)
		if err != nil {
			return utils.RespondFail(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(LocalUserID, claims.UserID)

		return c.Next()
	}
}
