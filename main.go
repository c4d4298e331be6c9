package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/seatlink/seatlink-backend/database"
	"github.com/seatlink/seatlink-backend/internal/config"
	"github.com/seatlink/seatlink-backend/internal/jobs"
	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/routes"
	"github.com/seatlink/seatlink-backend/internal/services"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize storage
	var store storage.Store

	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Customer{},
			&models.Driver{},
			&models.Listing{},
			&models.Booking{},
			&models.OTPChallenge{},
			&models.RateLimitRecord{},
			&models.Verification{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}
	storage.SetStore(store)

	// Notifier: Twilio when configured, log line otherwise
	var notifier services.Notifier
	twilioNotifier, err := services.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	if err != nil {
		log.Println("⚠️  Twilio not configured - OTP codes will be logged instead of sent")
		notifier = &services.LogNotifier{}
	} else {
		log.Println("✅ Twilio notifier initialized")
		notifier = twilioNotifier
	}

	// Core verification services
	otps := services.NewOTPStore(store)
	limiter := services.NewRateLimiter(store)
	verification := services.NewVerificationService(otps, limiter, notifier, cfg.ExposeOTPInResponse)
	sessions := services.NewSessionService(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	accounts := services.NewAccountService(store, otps, sessions)

	if cfg.ExposeOTPInResponse {
		log.Println("⚠️  EXPOSE_OTP_IN_RESPONSE enabled - OTP codes are echoed to clients")
	}

	// Housekeeping: sweep expired challenges and stale rate limits
	cleanupJob := jobs.NewCleanupJob(otps, limiter)
	cleanupJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "SeatLink Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Token",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint with service status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "SeatLink Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": cfg.Environment,
			"storage":     storageType(cfg),
		}

		if !cfg.UseMemoryStore && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var customerCount, driverCount, listingCount, bookingCount int64
			database.DB.Model(&models.Customer{}).Count(&customerCount)
			database.DB.Model(&models.Driver{}).Count(&driverCount)
			database.DB.Model(&models.Listing{}).Count(&listingCount)
			database.DB.Model(&models.Booking{}).Count(&bookingCount)

			response["database"] = fiber.Map{
				"status":    dbStatus,
				"customers": customerCount,
				"drivers":   driverCount,
				"listings":  listingCount,
				"bookings":  bookingCount,
			}
		}

		return c.JSON(response)
	})

	// Setup routes
	routes.SetupRoutes(app, cfg, store, verification, accounts, sessions, notifier)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		cleanupJob.Stop()
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 SeatLink Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func storageType(cfg *config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	if os.Getenv("DB_NAME") != "" {
		return "PostgreSQL Database"
	}
	return "SQLite Database"
}
