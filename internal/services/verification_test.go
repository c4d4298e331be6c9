package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// captureNotifier records what would have gone out over SMS.
type captureNotifier struct {
	codes map[string]string
	err   error
}

func (n *captureNotifier) SendOTP(mobile, code string) error {
	if n.codes == nil {
		n.codes = make(map[string]string)
	}
	n.codes[mobile] = code
	return n.err
}

func newTestVerification(t *testing.T, exposeCode bool) (*VerificationService, *captureNotifier, *time.Time) {
	t.Helper()

	ms := storage.NewMemoryStore()
	otps := NewOTPStore(ms)
	limiter := NewRateLimiter(ms)

	now := time.Now()
	otps.now = func() time.Time { return now }
	limiter.now = func() time.Time { return now }

	notifier := &captureNotifier{}
	return NewVerificationService(otps, limiter, notifier, exposeCode), notifier, &now
}

func TestSendOTPDispatchesCode(t *testing.T) {
	svc, notifier, now := newTestVerification(t, false)

	result, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, now.Add(OTPTTL), result.ExpiresAt)
	require.Empty(t, result.Code, "code must not leak unless exposure is enabled")
	require.Len(t, notifier.codes["9876543210"], 6)
}

func TestSendOTPExposesCodeInDevMode(t *testing.T) {
	svc, notifier, _ := newTestVerification(t, true)

	result, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, notifier.codes["9876543210"], result.Code)
}

func TestSendOTPSurvivesDeliveryFailure(t *testing.T) {
	svc, notifier, _ := newTestVerification(t, true)
	notifier.err = errors.New("twilio unreachable")

	result, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err, "delivery failure must not fail the send")

	// The challenge is live; a verify against it still works
	require.NoError(t, svc.VerifyOTP("9876543210", models.RoleCustomer, result.Code))
}

func TestSendOTPRateLimited(t *testing.T) {
	svc, _, now := newTestVerification(t, false)

	for i := 0; i < 5; i++ {
		_, err := svc.SendOTP("9876543210", models.RoleCustomer)
		require.NoError(t, err, "send %d should pass", i+1)
	}

	_, err := svc.SendOTP("9876543210", models.RoleCustomer)
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	require.ErrorIs(t, err, ErrRateLimited)
	require.Nil(t, limited.LockedUntil, "send limiting never locks")

	// A different role on the same number is unaffected
	_, err = svc.SendOTP("9876543210", models.RoleDriver)
	require.NoError(t, err)

	// The window lapsing restores sends
	*now = now.Add(11 * time.Minute)
	_, err = svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)
}

func TestVerifyOTPHappyPath(t *testing.T) {
	svc, _, _ := newTestVerification(t, true)

	result, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyOTP("9876543210", models.RoleCustomer, result.Code))

	// Consumed, so the same code cannot verify twice
	err = svc.VerifyOTP("9876543210", models.RoleCustomer, result.Code)
	require.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestVerifyOTPMismatchReportsRemaining(t *testing.T) {
	svc, _, _ := newTestVerification(t, true)

	result, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	err = svc.VerifyOTP("9876543210", models.RoleCustomer, wrongFor(result.Code))
	var mismatch *CodeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, 4, mismatch.RemainingAttempts)
}

func TestVerifyOTPLocksAfterExhaustion(t *testing.T) {
	svc, _, now := newTestVerification(t, true)

	result, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err := svc.VerifyOTP("9876543210", models.RoleCustomer, wrongFor(result.Code))
		var mismatch *CodeMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, 4-i, mismatch.RemainingAttempts)
	}

	// Locked: even the correct code against a fresh challenge is refused
	err = svc.VerifyOTP("9876543210", models.RoleCustomer, result.Code)
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	require.NotNil(t, limited.LockedUntil)
	require.Equal(t, now.Add(verifyLockFor), *limited.LockedUntil)

	// Still locked after the counting window would have reset
	*now = now.Add(12 * time.Minute)
	err = svc.VerifyOTP("9876543210", models.RoleCustomer, result.Code)
	require.ErrorAs(t, err, &limited)

	// Lock expiry restores verifies; the old challenge is long expired
	*now = now.Add(4 * time.Minute)
	err = svc.VerifyOTP("9876543210", models.RoleCustomer, result.Code)
	require.ErrorIs(t, err, ErrChallengeExpired)
}

func TestVerifyOTPExpiredChallenge(t *testing.T) {
	svc, _, now := newTestVerification(t, true)

	result, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	*now = now.Add(OTPTTL + time.Second)

	err = svc.VerifyOTP("9876543210", models.RoleCustomer, result.Code)
	require.ErrorIs(t, err, ErrChallengeExpired)
}

func TestResendReplacesChallenge(t *testing.T) {
	svc, _, _ := newTestVerification(t, true)

	first, err := svc.SendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	second, err := svc.ResendOTP("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	// Only the latest code verifies
	if first.Code != second.Code {
		err = svc.VerifyOTP("9876543210", models.RoleCustomer, first.Code)
		var mismatch *CodeMismatchError
		require.ErrorAs(t, err, &mismatch)
	}
	require.NoError(t, svc.VerifyOTP("9876543210", models.RoleCustomer, second.Code))
}

// wrongFor returns a 6-digit code guaranteed not to equal the given one.
func wrongFor(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
