package controller

import (
	"diyari_backend/pkg/utils/location"

	"github.com/gofiber/fiber/v2"
)

func GetGovernorates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"governorates": location.GetGovernorates(),
	})
}

func GetDistricts(c *fiber.Ctx) error {
	governorate, ok := location.Find(c.Params("governorate"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "Governorate not found")
	}

	return c.JSON(fiber.Map{
		"governorate": governorate.Name,
		"districts":   governorate.Districts,
	})
}
