package middleware

import (
	"errors"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminOnly must run after AuthMiddleware.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CheckPropertyOwnership loads the property in :id and lets only its owner
// or an admin through. The property is stored in Locals("property").
func CheckPropertyOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid property ID",
			})
		}

		var property model.Property
		if err := database.GetDB().First(&property, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Property not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not fetch property",
			})
		}

		if user == nil || (property.UserID != user.ID && !user.IsAdmin()) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this property",
			})
		}

		c.Locals("property", &property)
		return c.Next()
	}
}
