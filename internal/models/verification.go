package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Verification tracks a driver's document check, reviewed by an admin
// before the driver may publish listings.
type Verification struct {
	gorm.Model
	VerificationID string     `json:"verification_id" gorm:"uniqueIndex"`
	DriverID       string     `json:"driver_id" gorm:"index"`
	DocumentType   string     `json:"document_type"` // "DL", "RC", "Aadhaar"
	DocumentURL    string     `json:"document_url"`
	Status         string     `json:"status" gorm:"default:pending"` // "pending", "approved", "rejected"
	AdminNotes     string     `json:"admin_notes"`
	VerifiedBy     string     `json:"verified_by"`
	VerifiedAt     *time.Time `json:"verified_at"`
}

func (v *Verification) BeforeCreate(tx *gorm.DB) error {
	if v.VerificationID == "" {
		v.VerificationID = fmt.Sprintf("VER%d", time.Now().UnixNano())
	}
	return nil
}
