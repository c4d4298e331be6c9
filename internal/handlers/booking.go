package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// BookingHandler handles booking-related requests
type BookingHandler struct {
	store storage.Store
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(store storage.Store) *BookingHandler {
	return &BookingHandler{
		store: store,
	}
}

// CreateBooking handles reserving seats on a listing for the
// authenticated customer
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	customerID, _ := c.Locals("accountID").(string)

	var req struct {
		ListingID string `json:"listing_id"`
		Seats     int    `json:"seats"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ListingID == "" || req.Seats <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Listing ID and a positive seat count are required",
		})
	}

	booking, err := h.store.CreateBooking(req.ListingID, customerID, req.Seats)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrListingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		case errors.Is(err, storage.ErrCustomerNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		case errors.Is(err, storage.ErrListingNotOpen):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Listing is not open for booking",
			})
		case errors.Is(err, storage.ErrSeatsUnavailable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Not enough seats available",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create booking",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// GetBooking retrieves booking by ID
func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Booking ID is required",
		})
	}

	booking, err := h.store.GetBooking(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Booking not found",
		})
	}

	return c.JSON(booking)
}

// GetCustomerBookings retrieves all bookings for the authenticated
// customer
func (h *BookingHandler) GetCustomerBookings(c *fiber.Ctx) error {
	customerID, _ := c.Locals("accountID").(string)

	bookings, err := h.store.GetBookingsByCustomer(customerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve bookings",
		})
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetListingBookings retrieves all bookings for a listing
func (h *BookingHandler) GetListingBookings(c *fiber.Ctx) error {
	listingID := c.Params("listingID")
	if listingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Listing ID is required",
		})
	}

	bookings, err := h.store.GetBookingsByListing(listingID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve bookings",
		})
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// CancelBooking cancels a booking the authenticated customer owns
func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	customerID, _ := c.Locals("accountID").(string)
	id := c.Params("id")

	booking, err := h.store.GetBooking(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Booking not found",
		})
	}
	if booking.CustomerID != customerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Booking belongs to another customer",
		})
	}

	if err := h.store.UpdateBookingStatus(id, models.BookingStatusCancelled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel booking",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Booking cancelled successfully",
	})
}
