package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Driver represents a vehicle owner in the system. Drivers register
// after OTP verification but may only publish listings once an admin
// has approved their documents.
type Driver struct {
	gorm.Model
	DriverID     string  `json:"driver_id" gorm:"uniqueIndex"`
	Name         string  `json:"name"`
	Mobile       string  `json:"mobile" gorm:"uniqueIndex"` // 10-digit, verified via OTP
	LicenseNo    string  `json:"license_no"`
	VehicleNo    string  `json:"vehicle_no" gorm:"uniqueIndex"`
	VehicleType  string  `json:"vehicle_type"` // e.g. "sedan", "suv", "tempo traveller"
	SeatCapacity int     `json:"seat_capacity"`
	Verified     bool    `json:"verified" gorm:"default:false"`
	Rating       float64 `json:"rating" gorm:"default:5.0"`
	TotalTrips   int     `json:"total_trips" gorm:"default:0"`
	IsActive     bool    `json:"is_active" gorm:"default:true"`
	IsSuspended  bool    `json:"is_suspended" gorm:"default:false"`
}

// BeforeCreate hook to auto-generate DriverID and normalize data
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.DriverID == "" {
		d.DriverID = fmt.Sprintf("DR%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}

	// Normalize vehicle number (remove spaces, convert to uppercase)
	d.VehicleNo = strings.ToUpper(strings.ReplaceAll(d.VehicleNo, " ", ""))
	d.Mobile = NormalizeMobile(d.Mobile)

	if d.Rating == 0 {
		d.Rating = 5.0
	}

	return nil
}

// DriverRegistration is the payload for new driver registration.
// The mobile must already carry a consumed OTP challenge.
type DriverRegistration struct {
	Name         string `json:"name" validate:"required"`
	Mobile       string `json:"mobile" validate:"required"`
	LicenseNo    string `json:"license_no" validate:"required"`
	VehicleNo    string `json:"vehicle_no" validate:"required"`
	VehicleType  string `json:"vehicle_type" validate:"required"`
	SeatCapacity int    `json:"seat_capacity" validate:"required"`
}

// CanPublish reports whether the driver may create new listings.
func (d *Driver) CanPublish() bool {
	return d.Verified && d.IsActive && !d.IsSuspended
}
