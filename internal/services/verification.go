package services

import (
	"errors"
	"log"
	"time"

	"github.com/seatlink/seatlink-backend/internal/models"
)

// Rate limit policy per action class. Sends are windowed but never
// hard-locked; exhausting a challenge's verify attempts escalates to an
// explicit lock.
const (
	sendLimitMax   = 5
	sendWindow     = 10 * time.Minute
	verifyLimitMax = 5
	verifyWindow   = 10 * time.Minute
	verifyLockFor  = 15 * time.Minute
)

// VerificationService composes the OTP store and the rate limiter into
// the externally callable send/verify protocol.
type VerificationService struct {
	otps     *OTPStore
	limiter  *RateLimiter
	notifier Notifier

	// exposeCode echoes the raw code back to the caller. Development
	// escape hatch, wired from config, never set in production.
	exposeCode bool
}

// NewVerificationService creates the send/verify orchestrator.
func NewVerificationService(otps *OTPStore, limiter *RateLimiter, notifier Notifier, exposeCode bool) *VerificationService {
	return &VerificationService{
		otps:       otps,
		limiter:    limiter,
		notifier:   notifier,
		exposeCode: exposeCode,
	}
}

// limiter identifiers are scoped per (mobile, role) so the same number
// can hold independent challenges per account class
func limitID(mobile, role string) string {
	return mobile + ":" + role
}

// SendResult is what SendOTP hands back to the transport layer.
type SendResult struct {
	ExpiresAt time.Time
	// Code is populated only when the service was built with
	// exposeCode enabled.
	Code string
}

// SendOTP issues and dispatches a fresh challenge for (mobile, role),
// subject to the send rate limit.
func (s *VerificationService) SendOTP(mobile, role string) (*SendResult, error) {
	id := limitID(mobile, role)

	check, err := s.limiter.Check(id, models.LimitTypeOTPSend, sendLimitMax, sendWindow)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, &RateLimitedError{LockedUntil: check.LockedUntil}
	}

	if err := s.limiter.Record(id, models.LimitTypeOTPSend, sendWindow); err != nil {
		return nil, err
	}

	challenge, err := s.otps.Issue(mobile, role)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendOTP(mobile, challenge.Code); err != nil {
		// The challenge stays issued; the client can retry via resend
		log.Printf("Failed to deliver OTP to %s: %v", mobile, err)
	}

	result := &SendResult{ExpiresAt: challenge.ExpiresAt}
	if s.exposeCode {
		result.Code = challenge.Code
	}
	return result, nil
}

// VerifyOTP checks a submitted code against the live challenge, subject
// to the verify rate limit. Exhausting the challenge's attempt cap
// escalates to an explicit lock so a fresh challenge cannot be used to
// continue guessing immediately.
func (s *VerificationService) VerifyOTP(mobile, role, code string) error {
	id := limitID(mobile, role)

	check, err := s.limiter.Check(id, models.LimitTypeOTPVerify, verifyLimitMax, verifyWindow)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return &RateLimitedError{LockedUntil: check.LockedUntil}
	}

	if err := s.limiter.Record(id, models.LimitTypeOTPVerify, verifyWindow); err != nil {
		return err
	}

	_, err = s.otps.AttemptVerify(mobile, role, code)
	if err != nil {
		var mismatch *CodeMismatchError
		if errors.As(err, &mismatch) && mismatch.RemainingAttempts == 0 {
			if lockErr := s.limiter.Lock(id, models.LimitTypeOTPVerify, verifyLockFor); lockErr != nil {
				log.Printf("Failed to lock verify attempts for %s: %v", mobile, lockErr)
			}
		}
		return err
	}

	// Success leaves the challenge consumed (not cleared) so the
	// following registration/login can confirm this exact verification
	return nil
}

// ResendOTP re-issues a challenge for the same key. The send limit
// applies exactly as for the first send.
func (s *VerificationService) ResendOTP(mobile, role string) (*SendResult, error) {
	return s.SendOTP(mobile, role)
}
