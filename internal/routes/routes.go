package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seatlink/seatlink-backend/internal/config"
	"github.com/seatlink/seatlink-backend/internal/handlers"
	"github.com/seatlink/seatlink-backend/internal/middleware"
	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/services"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	store storage.Store,
	verification *services.VerificationService,
	accounts *services.AccountService,
	sessions *services.SessionService,
	notifier services.Notifier,
) {
	authHandler := handlers.NewAuthHandler(verification, accounts)
	listingHandler := handlers.NewListingHandler(store)
	bookingHandler := handlers.NewBookingHandler(store)
	adminHandler := handlers.NewAdminHandler(store, notifier)

	app.Get("/health", handlers.HealthCheck)

	// ========== OTP WIRE CONTRACT ==========
	app.Post("/otp/send", authHandler.SendOTP)
	app.Post("/otp/verify", authHandler.VerifyOTP)

	// ========== API ROUTES ==========
	api := app.Group("/api")

	// Customer account resolution (requires a consumed OTP challenge)
	customers := api.Group("/customers")
	customers.Post("/login", authHandler.LoginCustomer)
	customers.Post("/register", authHandler.RegisterCustomer)

	// Driver account resolution
	drivers := api.Group("/drivers")
	drivers.Post("/login", authHandler.LoginDriver)
	drivers.Post("/register", authHandler.RegisterDriver)

	// Listings
	listings := api.Group("/listings")
	listings.Get("/", listingHandler.SearchListings)
	listings.Get("/:id", listingHandler.GetListing)
	listings.Post("/", middleware.RequireAuth(sessions, models.RoleDriver), listingHandler.CreateListing)
	listings.Delete("/:id", middleware.RequireAuth(sessions, models.RoleDriver), listingHandler.CancelListing)
	listings.Get("/:listingID/bookings", middleware.RequireAuth(sessions, models.RoleDriver), bookingHandler.GetListingBookings)

	drivers.Get("/me/listings", middleware.RequireAuth(sessions, models.RoleDriver), listingHandler.GetDriverListings)

	// Bookings
	bookings := api.Group("/bookings", middleware.RequireAuth(sessions, models.RoleCustomer))
	bookings.Post("/", bookingHandler.CreateBooking)
	bookings.Get("/", bookingHandler.GetCustomerBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Delete("/:id", bookingHandler.CancelBooking)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdmin(cfg.AdminToken))
	admin.Get("/verifications/pending", adminHandler.GetPendingVerifications)
	admin.Put("/verifications/:verificationID", adminHandler.UpdateVerification)
	admin.Post("/accounts/suspend", adminHandler.SuspendAccount)
	admin.Post("/accounts/reactivate", adminHandler.ReactivateAccount)
}
