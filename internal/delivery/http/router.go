package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// AppConfig configures the fiber application.
type AppConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins string
	RequestLogging   bool
}

// NewApp creates the fiber app with the standard middleware stack.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "EV Site Planner API v1.0",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	if cfg.RequestLogging {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	origins := cfg.CORSAllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	return app
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	app.Get("/", handler.Home)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/models", handler.ListModels)
		api.Get("/sample", handler.Sample)
		api.Get("/predictions", handler.RecentPredictions)

		// Site analysis
		api.Post("/predict", handler.Predict)
		api.Post("/batch_analyze", handler.BatchAnalyze)
	}
}

// ErrorHandler renders unhandled errors as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
