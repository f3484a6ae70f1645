// main.go
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"bragbook/database"
	"bragbook/encryption"
	"bragbook/handlers"
	"bragbook/middleware"
	"bragbook/models"
	"bragbook/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Wire up the achievement ledger
	coach := services.NewCoachService()
	hub := services.NewEventHub()
	ledger := services.NewLedger(database.GetDB(), coach, hub, getEnvInt("COACHING_LIMIT", services.DefaultCoachingLimit))

	handlers.InitAchievementHandlers(ledger)
	handlers.InitWSHandlers(hub)

	// Seed demo data when asked to
	if getEnv("SEED_DEMO_DATA", "false") == "true" {
		seedDemoData(ledger)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/reset-password", handlers.ResetPassword)

	// User routes (require authentication)
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)

	// Achievement routes
	achievementGroup := api.Group("/achievements")
	achievementGroup.Use(middleware.AuthMiddleware)
	achievementGroup.Get("/", handlers.GetAchievements)
	achievementGroup.Post("/", handlers.CreateAchievement)
	achievementGroup.Post("/:id/coach", handlers.CoachAchievement)

	// Badge routes
	badgeGroup := api.Group("/badges")
	badgeGroup.Use(middleware.AuthMiddleware)
	badgeGroup.Get("/", handlers.GetBadges)

	// Live progress feed
	app.Get("/ws", handlers.WebSocketUpgrade, middleware.WebSocketAuthMiddleware, handlers.ProgressFeed)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🤖 AI coaching configured: %v", coach.Configured())
	log.Printf("🌐 Progress feed available at ws://localhost:%s/ws", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if err := encryption.ValidateKey(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// seedDemoData creates a demo account with a couple of achievements
func seedDemoData(ledger *services.Ledger) {
	db := database.GetDB()

	var existing models.User
	if err := db.Where("username = ?", "demo").First(&existing).Error; err == nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to seed demo user: %v", err)
		return
	}

	user := models.User{
		Username: "demo",
		Password: string(hashedPassword),
		Level:    1,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("Failed to seed demo user: %v", err)
		return
	}

	today := time.Now().Format("2006-01-02")
	for _, title := range []string{"Created my first account", "Started the achievement tracker"} {
		if _, err := ledger.CreateAchievement(user.ID, services.CreateAchievementInput{
			Title:           title,
			AchievementDate: today,
		}); err != nil {
			log.Printf("Failed to seed demo achievement: %v", err)
		}
	}

	log.Println("✅ Demo data seeded")
}

// Helper functions

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
