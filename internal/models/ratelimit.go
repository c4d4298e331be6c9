package models

import (
	"time"

	"gorm.io/gorm"
)

// Limit type constants, one per limited action class.
const (
	LimitTypeOTPSend   = "otp_send"
	LimitTypeOTPVerify = "otp_verify"
)

// RateLimitRecord counts attempts for one (identifier, limit type) pair
// over a sliding window, and holds an optional lockout timestamp.
type RateLimitRecord struct {
	gorm.Model
	Identifier  string `gorm:"not null;index:idx_rate_key"`
	LimitType   string `gorm:"not null;index:idx_rate_key"`
	Attempts    int    `gorm:"default:0"`
	WindowStart time.Time
	LastAttempt time.Time
	LockedUntil *time.Time
}

// Locked reports whether an explicit lockout is active at now. While
// locked, attempts are refused regardless of window counting.
func (r *RateLimitRecord) Locked(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}
