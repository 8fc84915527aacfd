package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/handler"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/repository"
	"portfolio-backend/internal/service"
	"portfolio-backend/internal/service/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (media upload will not work)", err)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	reviews := v1.Group("/reviews")
	reviews.Get("/", h.Review.GetTree)
	reviews.Get("/rating", h.Review.GetRating)

	checkout := v1.Group("/checkout")
	checkout.Post("/session", h.Checkout.CreateSession)

	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Get("/users/me", h.Auth.Me)

	protectedReviews := protected.Group("/reviews")
	protectedReviews.Post("/", h.Review.Create)
	protectedReviews.Put("/:commentId", h.Review.Update)
	protectedReviews.Delete("/:commentId", h.Review.Delete)
	protectedReviews.Post("/:commentId/media", h.Media.Upload)

	protected.Delete("/media/:mediaId", h.Media.Delete)

	audit := protected.Group("/audit")
	audit.Get("/recent", h.Audit.GetRecentActivities)
}
