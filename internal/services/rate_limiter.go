package services

import (
	"sync"
	"time"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// RateLimiter bounds the rate of OTP sends and verify attempts per
// identifier, independent of the per-challenge attempt cap. Check,
// Record and Lock are separate so callers apply different policies per
// action class; the limiter itself never decides when to lock.
type RateLimiter struct {
	store storage.Store
	now   func() time.Time

	mu sync.Mutex
}

// NewRateLimiter creates a rate limiter over the given storage backend.
func NewRateLimiter(store storage.Store) *RateLimiter {
	return &RateLimiter{
		store: store,
		now:   time.Now,
	}
}

// CheckResult reports whether an action is allowed and, when refused by
// an explicit lockout, until when.
type CheckResult struct {
	Allowed     bool
	LockedUntil *time.Time
}

// Check reports whether another attempt is allowed right now. An active
// lock always refuses. Otherwise the attempt count within the current
// window decides. Stale windows are reset eagerly here, so an old count
// never lingers past its window.
func (r *RateLimiter) Check(identifier, limitType string, maxAttempts int, window time.Duration) (*CheckResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	record, err := r.store.GetRateLimitRecord(identifier, limitType)
	if err != nil {
		// No record yet means no attempts yet
		return &CheckResult{Allowed: true}, nil
	}

	// Lock monotonicity: while locked, nothing else matters
	if record.Locked(now) {
		return &CheckResult{Allowed: false, LockedUntil: record.LockedUntil}, nil
	}

	// Window expired: reset the counter now rather than waiting for the
	// next Record call to do it incidentally
	if now.Sub(record.LastAttempt) > window {
		record.Attempts = 0
		record.WindowStart = now
		record.LockedUntil = nil
		if err := r.store.SaveRateLimitRecord(record); err != nil {
			return nil, err
		}
		return &CheckResult{Allowed: true}, nil
	}

	if record.Attempts >= maxAttempts {
		return &CheckResult{Allowed: false}, nil
	}
	return &CheckResult{Allowed: true}, nil
}

// Record counts one attempt, creating the record on first use and
// starting a fresh window when the previous one has lapsed.
func (r *RateLimiter) Record(identifier, limitType string, window time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	record, err := r.store.GetRateLimitRecord(identifier, limitType)
	if err != nil {
		record = &models.RateLimitRecord{
			Identifier:  identifier,
			LimitType:   limitType,
			Attempts:    1,
			WindowStart: now,
			LastAttempt: now,
		}
		return r.store.SaveRateLimitRecord(record)
	}

	if now.Sub(record.LastAttempt) > window {
		record.Attempts = 1
		record.WindowStart = now
	} else {
		record.Attempts++
	}
	record.LastAttempt = now
	return r.store.SaveRateLimitRecord(record)
}

// Lock refuses all further attempts for the identifier until now+d,
// overriding normal windowing until that instant passes.
func (r *RateLimiter) Lock(identifier, limitType string, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	record, err := r.store.GetRateLimitRecord(identifier, limitType)
	if err != nil {
		record = &models.RateLimitRecord{
			Identifier:  identifier,
			LimitType:   limitType,
			WindowStart: now,
			LastAttempt: now,
		}
	}

	lockedUntil := now.Add(d)
	record.LockedUntil = &lockedUntil
	return r.store.SaveRateLimitRecord(record)
}

// SweepStale deletes records idle longer than the given age, skipping
// anything still locked. Housekeeping only.
func (r *RateLimiter) SweepStale(age time.Duration) error {
	return r.store.DeleteStaleRateLimitRecords(r.now().Add(-age))
}
