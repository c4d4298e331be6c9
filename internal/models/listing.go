package models

import "time"

// Listing represents a ride a driver has published: a route, a
// departure time and a number of bookable seats.
type Listing struct {
	ID         string `json:"id"`
	DriverID   string `json:"driver_id"`
	DriverName string `json:"driver_name"`

	// Route details
	FromCity    string  `json:"from_city"`
	ToCity      string  `json:"to_city"`
	PickupPoint string  `json:"pickup_point"`
	DropPoint   string  `json:"drop_point"`
	Distance    float64 `json:"distance"` // in km

	// Vehicle and capacity
	VehicleType  string  `json:"vehicle_type"`
	TotalSeats   int     `json:"total_seats"`
	PricePerSeat float64 `json:"price_per_seat"`

	// Timing
	DepartureAt time.Time `json:"departure_at"`

	// Status
	Status string `json:"status"` // "open", "full", "closed", "cancelled"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListingSearch parameters for searching listings
type ListingSearch struct {
	FromCity    string `json:"from_city"`
	ToCity      string `json:"to_city"`
	VehicleType string `json:"vehicle_type"`
	DateFrom    string `json:"date_from"`
}

// ListingStatus constants
const (
	ListingStatusOpen      = "open"
	ListingStatusFull      = "full"
	ListingStatusClosed    = "closed"
	ListingStatusCancelled = "cancelled"
)
