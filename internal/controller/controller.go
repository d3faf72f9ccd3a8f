package controller

import (
	"errors"
	"strconv"
	"strings"

	"diyari_backend/pkg/config"
	"diyari_backend/pkg/utils/jwt"
	"diyari_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"
)

var (
	uploads  config.UploadConfig
	payments config.StripeConfig
)

// Init hands the controllers the settings they read per request.
func Init(cfg *config.Config) {
	uploads = cfg.Upload
	payments = cfg.Stripe
	if payments.SecretKey != "" {
		stripe.Key = payments.SecretKey
	}
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Diyari Real Estate API is running!",
		"timestamp": c.Context().Time(),
	})
}

func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("user").(*jwt.Claims).UserID
}

// getQueryInt reads an integer query value clamped to [min, max]; missing or
// malformed values fall back to def.
func getQueryInt(c *fiber.Ctx, key string, def, min, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func pagination(c *fiber.Ctx, defaultLimit int) (page, limit, offset int) {
	page = getQueryInt(c, "page", 1, 1, 1<<20)
	limit = getQueryInt(c, "limit", defaultLimit, 1, 100)
	return page, limit, (page - 1) * limit
}

var errInvalidID = errors.New("invalid id")

func paramID(c *fiber.Ctx, key string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// validationFailed writes the 400 for a failed validator run. A missing
// required field reports requiredMsg; any other rule reports the details.
func validationFailed(c *fiber.Ctx, errs validation.FieldErrors, requiredMsg string) error {
	if errs.MissingRequired() {
		return errorJSON(c, fiber.StatusBadRequest, requiredMsg)
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Invalid input",
		"details": errs,
	})
}

// bindJSON parses and validates the body into input. When ok is false the
// response has been written and err is what the handler returns.
func bindJSON(c *fiber.Ctx, input interface{}, requiredMsg string) (ok bool, err error) {
	if err := c.BodyParser(input); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "Invalid input")
	}
	return validateInput(c, input, requiredMsg)
}

func validateInput(c *fiber.Ctx, input interface{}, requiredMsg string) (ok bool, err error) {
	if errs := validation.Struct(input); errs != nil {
		return false, validationFailed(c, errs, requiredMsg)
	}
	return true, nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// preview cuts s to n runes.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
