package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// ListingHandler handles ride listing requests
type ListingHandler struct {
	store storage.Store
}

// NewListingHandler creates a new listing handler
func NewListingHandler(store storage.Store) *ListingHandler {
	return &ListingHandler{
		store: store,
	}
}

// CreateListing handles publishing a new ride. Only verified drivers
// may publish.
func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	driverID, _ := c.Locals("accountID").(string)

	driver, err := h.store.GetDriverByID(driverID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Driver not found",
		})
	}
	if !driver.CanPublish() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Driver is not verified to publish listings",
		})
	}

	var req struct {
		FromCity     string  `json:"from_city"`
		ToCity       string  `json:"to_city"`
		PickupPoint  string  `json:"pickup_point"`
		DropPoint    string  `json:"drop_point"`
		DepartureAt  string  `json:"departure_at"`
		TotalSeats   int     `json:"total_seats"`
		PricePerSeat float64 `json:"price_per_seat"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.FromCity == "" || req.ToCity == "" || req.TotalSeats <= 0 || req.PricePerSeat <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Route, seats and price are required",
		})
	}
	if req.TotalSeats > driver.SeatCapacity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Seats exceed vehicle capacity",
		})
	}

	departureAt, err := time.Parse(time.RFC3339, req.DepartureAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "departure_at must be an RFC3339 timestamp",
		})
	}

	listing := &models.Listing{
		DriverID:     driver.DriverID,
		DriverName:   driver.Name,
		FromCity:     req.FromCity,
		ToCity:       req.ToCity,
		PickupPoint:  req.PickupPoint,
		DropPoint:    req.DropPoint,
		VehicleType:  driver.VehicleType,
		TotalSeats:   req.TotalSeats,
		PricePerSeat: req.PricePerSeat,
		DepartureAt:  departureAt,
	}

	listing, err = h.store.CreateListing(listing)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create listing",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Listing created successfully",
		"listing": listing,
	})
}

// GetListing retrieves a listing by ID
func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Listing ID is required",
		})
	}

	listing, err := h.store.GetListing(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	return c.JSON(listing)
}

// SearchListings retrieves open listings matching the query parameters
func (h *ListingHandler) SearchListings(c *fiber.Ctx) error {
	search := &models.ListingSearch{
		FromCity:    c.Query("from"),
		ToCity:      c.Query("to"),
		VehicleType: c.Query("vehicle_type"),
		DateFrom:    c.Query("date_from"),
	}

	listings, err := h.store.SearchListings(search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search listings",
		})
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"count":    len(listings),
	})
}

// GetDriverListings retrieves all listings for the authenticated driver
func (h *ListingHandler) GetDriverListings(c *fiber.Ctx) error {
	driverID, _ := c.Locals("accountID").(string)

	listings, err := h.store.GetListingsByDriver(driverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve listings",
		})
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"count":    len(listings),
	})
}

// CancelListing closes a listing the authenticated driver owns
func (h *ListingHandler) CancelListing(c *fiber.Ctx) error {
	driverID, _ := c.Locals("accountID").(string)
	id := c.Params("id")

	listing, err := h.store.GetListing(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}
	if listing.DriverID != driverID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Listing belongs to another driver",
		})
	}

	if err := h.store.UpdateListingStatus(id, models.ListingStatusCancelled); err != nil {
		if errors.Is(err, storage.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel listing",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Listing cancelled successfully",
	})
}
