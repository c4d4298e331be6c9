package models

import (
	"time"

	"gorm.io/gorm"
)

// OTPChallenge is the server-side record of one outstanding OTP
// expectation for a (mobile, role) pair. At most one live challenge may
// exist per pair; issuing a new one replaces any prior challenge.
type OTPChallenge struct {
	gorm.Model
	Mobile    string    `gorm:"not null;index:idx_challenge_key"`
	Role      string    `gorm:"not null;index:idx_challenge_key"` // "customer" or "driver"
	Code      string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Attempts  int       `gorm:"default:0"`
	Consumed  bool      `gorm:"default:false"`
}

// Expired reports whether the challenge's TTL has passed at now.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Live reports whether the challenge can still be verified: not yet
// consumed and not expired.
func (c *OTPChallenge) Live(now time.Time) bool {
	return !c.Consumed && !c.Expired(now)
}
