package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer represents a rider account, created only after OTP
// verification of the mobile number.
type Customer struct {
	gorm.Model
	CustomerID  string `json:"customer_id" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile" gorm:"uniqueIndex"` // 10-digit, verified via OTP
	Email       string `json:"email"`
	City        string `json:"city"`
	TotalRides  int    `json:"total_rides" gorm:"default:0"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsSuspended bool   `json:"is_suspended" gorm:"default:false"`
}

// BeforeCreate hook to auto-generate CustomerID and normalize the mobile
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.CustomerID == "" {
		c.CustomerID = fmt.Sprintf("CU%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	c.Mobile = NormalizeMobile(c.Mobile)
	return nil
}

// CustomerRegistration is the payload for new customer registration.
// The mobile must already carry a consumed OTP challenge.
type CustomerRegistration struct {
	Name   string `json:"name" validate:"required"`
	Mobile string `json:"mobile" validate:"required"`
	Email  string `json:"email"`
	City   string `json:"city"`
}

// NormalizeMobile strips spaces and a leading country prefix, keeping
// the bare 10-digit subscriber number used as the identity key.
func NormalizeMobile(mobile string) string {
	m := strings.ReplaceAll(mobile, " ", "")
	m = strings.TrimPrefix(m, "+")
	if len(m) == 12 && strings.HasPrefix(m, "91") {
		m = m[2:]
	}
	return m
}
