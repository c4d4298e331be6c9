package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
	"github.com/seatlink/seatlink-backend/internal/utils"
)

const (
	// OTPTTL is how long an issued challenge stays verifiable.
	OTPTTL = 5 * time.Minute

	// MaxVerifyAttempts caps guesses against a single challenge.
	MaxVerifyAttempts = 5
)

// OTPStore is the single source of truth for challenge existence,
// freshness and consumption. At most one live challenge exists per
// (mobile, role); issuing replaces any prior one.
type OTPStore struct {
	store       storage.Store
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time

	// Per-key critical sections so attempt-then-compare stays atomic
	// for a given challenge even under concurrent verifies.
	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// NewOTPStore creates an OTP store over the given storage backend.
func NewOTPStore(store storage.Store) *OTPStore {
	return &OTPStore{
		store:       store,
		ttl:         OTPTTL,
		maxAttempts: MaxVerifyAttempts,
		now:         time.Now,
		keyLocks:    make(map[string]*sync.Mutex),
	}
}

func (s *OTPStore) keyLock(mobile, role string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := mobile + "|" + role
	lock, exists := s.keyLocks[key]
	if !exists {
		lock = &sync.Mutex{}
		s.keyLocks[key] = lock
	}
	return lock
}

// Issue replaces any existing challenge for (mobile, role) with a fresh
// one. Issuance itself is never rate-limited here; that is the
// RateLimiter's job.
func (s *OTPStore) Issue(mobile, role string) (*models.OTPChallenge, error) {
	lock := s.keyLock(mobile, role)
	lock.Lock()
	defer lock.Unlock()

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	// Enforce at-most-one-active: the old challenge, live or not, goes
	if err := s.store.DeleteOTPChallenge(mobile, role); err != nil {
		return nil, err
	}

	challenge := &models.OTPChallenge{
		Mobile:    mobile,
		Role:      role,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
		Attempts:  0,
		Consumed:  false,
	}
	if err := s.store.SaveOTPChallenge(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// Peek returns the current unexpired challenge without mutating it.
// Used to confirm a mobile has been OTP-verified before registration
// or login completes.
func (s *OTPStore) Peek(mobile, role string) (*models.OTPChallenge, error) {
	challenge, err := s.store.GetOTPChallenge(mobile, role)
	if err != nil {
		return nil, ErrChallengeNotFound
	}
	if challenge.Expired(s.now()) {
		return nil, ErrChallengeExpired
	}
	return challenge, nil
}

// VerifyResult reports the outcome of one verification attempt.
type VerifyResult struct {
	Matched           bool
	RemainingAttempts int
}

// AttemptVerify charges an attempt against the live challenge and then
// compares the code. The ordering is deliberate: the attempt is counted
// before the comparison so the cap cannot be bypassed by rapid-fire
// guessing. On match the challenge is marked consumed.
func (s *OTPStore) AttemptVerify(mobile, role, code string) (*VerifyResult, error) {
	lock := s.keyLock(mobile, role)
	lock.Lock()
	defer lock.Unlock()

	challenge, err := s.store.GetOTPChallenge(mobile, role)
	if err != nil {
		return nil, ErrChallengeNotFound
	}
	if challenge.Consumed {
		// A consumed challenge can never match again
		return nil, ErrChallengeNotFound
	}
	if challenge.Expired(s.now()) {
		return nil, ErrChallengeExpired
	}
	if challenge.Attempts >= s.maxAttempts {
		return nil, ErrAttemptsExhausted
	}

	challenge.Attempts++
	if err := s.store.SaveOTPChallenge(challenge); err != nil {
		return nil, err
	}

	remaining := s.maxAttempts - challenge.Attempts
	if challenge.Code != code {
		return &VerifyResult{Matched: false, RemainingAttempts: remaining},
			&CodeMismatchError{RemainingAttempts: remaining}
	}

	challenge.Consumed = true
	if err := s.store.SaveOTPChallenge(challenge); err != nil {
		return nil, err
	}
	return &VerifyResult{Matched: true, RemainingAttempts: remaining}, nil
}

// Clear erases the challenge once the surrounding registration or login
// has spent it, so the same verification cannot authorize a second
// account action.
func (s *OTPStore) Clear(mobile, role string) error {
	lock := s.keyLock(mobile, role)
	lock.Lock()
	defer lock.Unlock()

	return s.store.DeleteOTPChallenge(mobile, role)
}

// SweepExpired deletes challenges past their TTL. Housekeeping only;
// expiry is re-checked on every read regardless.
func (s *OTPStore) SweepExpired() error {
	return s.store.DeleteExpiredOTPChallenges(s.now())
}
