package router

import (
	"errors"
	"log"

	"diyari_backend/internal/controller"
	"diyari_backend/internal/middleware"
	"diyari_backend/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the application with every route mounted.
func New(cfg *config.Config) *fiber.App {
	controller.Init(cfg)

	app := fiber.New(fiber.Config{
		AppName:      "Diyari API",
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if cfg.Upload.Driver != "r2" {
		app.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)
	}

	app.Get("/", controller.Health)
	setupRoutes(app, cfg)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong!",
	})
}

func setupRoutes(app *fiber.App, cfg *config.Config) {
	api := app.Group("/api")
	api.Get("/health", controller.Health)

	// Auth Routes
	authLimiter := middleware.AuthRateLimiter(cfg.Server.AuthRateMax, cfg.Server.AuthRateWindow)
	auth := api.Group("/auth")
	auth.Post("/register", authLimiter, controller.Register)
	auth.Post("/login", authLimiter, controller.Login)
	auth.Get("/me", middleware.AuthMiddleware(), controller.GetMe)

	// Public reference data and payments
	api.Get("/locations/governorates", controller.GetGovernorates)
	api.Get("/locations/governorates/:governorate/districts", controller.GetDistricts)
	api.Get("/promotions/plans", controller.ListPromotionPlans)
	api.Post("/webhooks/stripe", controller.StripeWebhook)

	// Property Routes
	properties := api.Group("/properties", middleware.AuthMiddleware())
	properties.Get("/feed", controller.GetFeed)
	properties.Get("/reels", controller.GetReels)
	properties.Get("/my", controller.ListMyProperties)
	properties.Get("/user/:username", controller.ListUserProperties)
	properties.Get("/:id", controller.GetProperty)
	properties.Post("/", controller.CreateProperty)
	properties.Patch("/:id/status", middleware.CheckPropertyOwnership(), controller.UpdatePropertyStatus)
	properties.Delete("/:id", middleware.CheckPropertyOwnership(), controller.DeleteProperty)
	properties.Post("/:id/like", controller.ToggleLike)
	properties.Get("/:id/comments", controller.GetComments)
	properties.Post("/:id/comments", controller.AddComment)
	properties.Post("/:id/promote", middleware.CheckPropertyOwnership(), controller.PromoteProperty)

	// Property Request Routes
	requests := api.Group("/property-requests", middleware.AuthMiddleware())
	requests.Post("/", controller.CreatePropertyRequest)
	requests.Get("/my-requests", controller.GetMyRequests)
	requests.Get("/active", controller.GetActiveRequests)
	requests.Patch("/:id/status", controller.UpdateRequestStatus)
	requests.Delete("/:id", controller.DeletePropertyRequest)

	// Message Routes
	messages := api.Group("/messages", middleware.AuthMiddleware())
	messages.Get("/conversations", controller.GetConversations)
	messages.Get("/conversation/:userId", controller.GetConversation)
	messages.Post("/send", controller.SendMessage)
	messages.Post("/property-inquiry", controller.SendPropertyInquiry)
	messages.Delete("/:id", controller.DeleteMessage)

	// Notification Routes; EventSource cannot set headers, so the stream
	// also takes the token from the query string
	notifications := api.Group("/notifications")
	notifications.Get("/stream", middleware.StreamAuthMiddleware(), controller.StreamNotifications)

	notifProtected := notifications.Use(middleware.AuthMiddleware())
	notifProtected.Get("/", controller.GetNotifications)
	notifProtected.Get("/unread-count", controller.GetUnreadCount)
	notifProtected.Patch("/mark-all-read", controller.MarkAllNotificationsRead)
	notifProtected.Patch("/:id/read", controller.MarkNotificationRead)
	notifProtected.Delete("/:id", controller.DeleteNotification)

	// User Routes
	users := api.Group("/users", middleware.AuthMiddleware())
	users.Get("/search/:query", controller.SearchUsers)
	users.Put("/profile", controller.UpdateProfile)
	users.Post("/me/push-tokens", controller.RegisterPushToken)
	users.Delete("/me/push-tokens", controller.DeletePushToken)
	users.Get("/:username", controller.GetUserProfile)
	users.Post("/:username/follow", controller.ToggleFollow)

	// Admin Routes
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.Get("/users", controller.ListUsers)
	admin.Get("/properties", controller.ListAllProperties)
	admin.Get("/stats", controller.GetAdminStats)
	admin.Delete("/users/:id", controller.DeleteUser)
	admin.Delete("/properties/:id", controller.AdminDeleteProperty)
	admin.Patch("/properties/:id/featured", controller.SetFeatured)
	admin.Patch("/users/:id/role", controller.SetUserRole)
}
