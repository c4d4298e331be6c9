package services

import (
	"errors"
	"fmt"
	"time"
)

// Verification failure reasons. Every failure path returns one of these
// (or a typed struct wrapping one) so callers can pick the right
// transition instead of parsing messages.
var (
	ErrChallengeNotFound = errors.New("no verification code found, request a new one")
	ErrChallengeExpired  = errors.New("verification code expired, request a new one")
	ErrCodeMismatch      = errors.New("incorrect verification code")
	ErrAttemptsExhausted = errors.New("too many incorrect attempts, request a new code")
	ErrRateLimited       = errors.New("too many requests, try again later")
	ErrAccountNotFound   = errors.New("no account found for this mobile number")
	ErrAccountConflict   = errors.New("an account already exists for this mobile number")
	ErrMobileNotVerified = errors.New("mobile number not verified")
	ErrAccountSuspended  = errors.New("account is suspended")
)

// CodeMismatchError reports a failed code comparison along with how
// many attempts remain on the current challenge.
type CodeMismatchError struct {
	RemainingAttempts int
}

func (e *CodeMismatchError) Error() string {
	return fmt.Sprintf("incorrect verification code, %d attempts remaining", e.RemainingAttempts)
}

func (e *CodeMismatchError) Unwrap() error {
	return ErrCodeMismatch
}

// RateLimitedError refuses an action because of window counting or an
// active lockout. LockedUntil is set only when an explicit lock is in
// force.
type RateLimitedError struct {
	LockedUntil *time.Time
}

func (e *RateLimitedError) Error() string {
	if e.LockedUntil != nil {
		return fmt.Sprintf("too many attempts, locked until %s", e.LockedUntil.Format(time.RFC3339))
	}
	return "too many requests, try again later"
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
