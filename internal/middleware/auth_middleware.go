package middleware

import (
	"strings"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/database"
	"diyari_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware requires an "Authorization: Bearer" token.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authenticate(c, bearerToken(c))
	}
}

// StreamAuthMiddleware also accepts ?access_token= since EventSource
// cannot send headers.
func StreamAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("access_token")
		}
		return authenticate(c, token)
	}
}

func authenticate(c *fiber.Ctx, token string) error {
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access token required",
		})
	}

	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	c.Locals("user", claims)
	c.Locals("currentUser", &user)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the user loaded by the auth middleware.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals("currentUser").(*model.User)
	return user
}
