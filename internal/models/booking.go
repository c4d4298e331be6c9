package models

import "time"

// Booking represents a confirmed seat reservation on a listing.
type Booking struct {
	ID         string `json:"id"`
	ListingID  string `json:"listing_id"`
	CustomerID string `json:"customer_id"`
	DriverID   string `json:"driver_id"`

	Seats  int     `json:"seats"`
	Amount float64 `json:"amount"` // seats * price per seat

	Status string `json:"status"` // "confirmed", "cancelled", "completed"

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingStatus constants
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)
