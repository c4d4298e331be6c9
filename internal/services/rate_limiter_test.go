package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

func newTestRateLimiter(t *testing.T) (*RateLimiter, *storage.MemoryStore, *time.Time) {
	t.Helper()

	ms := storage.NewMemoryStore()
	r := NewRateLimiter(ms)

	now := time.Now()
	r.now = func() time.Time { return now }
	return r, ms, &now
}

func TestCheckAllowsFirstUse(t *testing.T) {
	r, _, _ := newTestRateLimiter(t)

	result, err := r.Check("9876543210:customer", models.LimitTypeOTPSend, 5, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.Nil(t, result.LockedUntil)
}

func TestCheckRefusesAtWindowCap(t *testing.T) {
	r, _, _ := newTestRateLimiter(t)
	id := "9876543210:customer"

	for i := 0; i < 5; i++ {
		result, err := r.Check(id, models.LimitTypeOTPSend, 5, 10*time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed, "attempt %d should be allowed", i+1)
		require.NoError(t, r.Record(id, models.LimitTypeOTPSend, 10*time.Minute))
	}

	result, err := r.Check(id, models.LimitTypeOTPSend, 5, 10*time.Minute)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Nil(t, result.LockedUntil, "a window cap is not an explicit lock")
}

func TestCheckResetsStaleWindow(t *testing.T) {
	r, ms, now := newTestRateLimiter(t)
	id := "9876543210:customer"

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(id, models.LimitTypeOTPSend, 10*time.Minute))
	}

	*now = now.Add(10*time.Minute + time.Second)

	result, err := r.Check(id, models.LimitTypeOTPSend, 5, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)

	// The reset is written back, not just computed
	record, err := ms.GetRateLimitRecord(id, models.LimitTypeOTPSend)
	require.NoError(t, err)
	require.Equal(t, 0, record.Attempts)
}

func TestRecordStartsFreshWindowAfterLapse(t *testing.T) {
	r, ms, now := newTestRateLimiter(t)
	id := "9876543210:customer"

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Record(id, models.LimitTypeOTPVerify, 10*time.Minute))
	}

	*now = now.Add(11 * time.Minute)
	require.NoError(t, r.Record(id, models.LimitTypeOTPVerify, 10*time.Minute))

	record, err := ms.GetRateLimitRecord(id, models.LimitTypeOTPVerify)
	require.NoError(t, err)
	require.Equal(t, 1, record.Attempts)
	require.Equal(t, *now, record.WindowStart)
}

func TestLockRefusesRegardlessOfWindow(t *testing.T) {
	r, _, now := newTestRateLimiter(t)
	id := "9876543210:customer"

	require.NoError(t, r.Record(id, models.LimitTypeOTPVerify, 10*time.Minute))
	require.NoError(t, r.Lock(id, models.LimitTypeOTPVerify, 15*time.Minute))

	// Past the counting window but still inside the lock
	*now = now.Add(12 * time.Minute)

	result, err := r.Check(id, models.LimitTypeOTPVerify, 5, 10*time.Minute)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.NotNil(t, result.LockedUntil)

	// Lock expiry restores normal windowing
	*now = now.Add(4 * time.Minute)

	result, err = r.Check(id, models.LimitTypeOTPVerify, 5, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func TestLockOnUnknownIdentifierCreatesRecord(t *testing.T) {
	r, _, _ := newTestRateLimiter(t)
	id := "9123456789:driver"

	require.NoError(t, r.Lock(id, models.LimitTypeOTPVerify, 15*time.Minute))

	result, err := r.Check(id, models.LimitTypeOTPVerify, 5, 10*time.Minute)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.NotNil(t, result.LockedUntil)
}

func TestLimitTypesAreIndependent(t *testing.T) {
	r, _, _ := newTestRateLimiter(t)
	id := "9876543210:customer"

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(id, models.LimitTypeOTPSend, 10*time.Minute))
	}

	sendResult, err := r.Check(id, models.LimitTypeOTPSend, 5, 10*time.Minute)
	require.NoError(t, err)
	require.False(t, sendResult.Allowed)

	verifyResult, err := r.Check(id, models.LimitTypeOTPVerify, 5, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, verifyResult.Allowed)
}

func TestSweepStaleRemovesIdleRecords(t *testing.T) {
	r, ms, now := newTestRateLimiter(t)

	require.NoError(t, r.Record("old:customer", models.LimitTypeOTPSend, 10*time.Minute))

	*now = now.Add(48 * time.Hour)
	require.NoError(t, r.Record("fresh:customer", models.LimitTypeOTPSend, 10*time.Minute))

	require.NoError(t, r.SweepStale(24*time.Hour))

	_, err := ms.GetRateLimitRecord("old:customer", models.LimitTypeOTPSend)
	require.ErrorIs(t, err, storage.ErrRateLimitNotFound)

	_, err = ms.GetRateLimitRecord("fresh:customer", models.LimitTypeOTPSend)
	require.NoError(t, err)
}
