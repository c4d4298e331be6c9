package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// wrongCode returns a 6-digit code guaranteed not to match the challenge.
func wrongCode(c *models.OTPChallenge) string {
	if c.Code == "000000" {
		return "111111"
	}
	return "000000"
}

func newTestOTPStore(t *testing.T) (*OTPStore, *storage.MemoryStore, *time.Time) {
	t.Helper()

	ms := storage.NewMemoryStore()
	s := NewOTPStore(ms)

	now := time.Now()
	s.now = func() time.Time { return now }
	return s, ms, &now
}

func TestIssueReplacesExistingChallenge(t *testing.T) {
	s, ms, _ := newTestOTPStore(t)

	first, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	// Burn two attempts against the first challenge
	_, _ = s.AttemptVerify("9876543210", models.RoleCustomer, wrongCode(first))
	_, _ = s.AttemptVerify("9876543210", models.RoleCustomer, wrongCode(first))

	second, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	stored, err := ms.GetOTPChallenge("9876543210", models.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, second.Code, stored.Code)
	require.Equal(t, 0, stored.Attempts, "replacement must reset the attempt count")
	require.False(t, stored.Consumed)
}

func TestIssueIsScopedToRole(t *testing.T) {
	s, _, _ := newTestOTPStore(t)

	customer, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)
	driver, err := s.Issue("9876543210", models.RoleDriver)
	require.NoError(t, err)

	// The driver challenge must not have displaced the customer one
	result, err := s.AttemptVerify("9876543210", models.RoleCustomer, customer.Code)
	require.NoError(t, err)
	require.True(t, result.Matched)

	result, err = s.AttemptVerify("9876543210", models.RoleDriver, driver.Code)
	require.NoError(t, err)
	require.True(t, result.Matched)
}

func TestAttemptVerifyMatch(t *testing.T) {
	s, _, _ := newTestOTPStore(t)

	challenge, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	result, err := s.AttemptVerify("9876543210", models.RoleCustomer, challenge.Code)
	require.NoError(t, err)
	require.True(t, result.Matched)

	verified, err := s.Peek("9876543210", models.RoleCustomer)
	require.NoError(t, err)
	require.True(t, verified.Consumed)
}

func TestAttemptVerifyNoReplay(t *testing.T) {
	s, _, _ := newTestOTPStore(t)

	challenge, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	_, err = s.AttemptVerify("9876543210", models.RoleCustomer, challenge.Code)
	require.NoError(t, err)

	// The same code must never match a second time
	_, err = s.AttemptVerify("9876543210", models.RoleCustomer, challenge.Code)
	require.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestAttemptVerifyMismatchCountsDown(t *testing.T) {
	s, _, _ := newTestOTPStore(t)

	challenge, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	for want := MaxVerifyAttempts - 1; want >= 0; want-- {
		result, err := s.AttemptVerify("9876543210", models.RoleCustomer, wrongCode(challenge))
		require.Error(t, err)

		var mismatch *CodeMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.ErrorIs(t, err, ErrCodeMismatch)
		require.Equal(t, want, mismatch.RemainingAttempts)
		require.Equal(t, want, result.RemainingAttempts)
	}

	// Attempts exhausted: even the correct code is refused now
	_, err = s.AttemptVerify("9876543210", models.RoleCustomer, challenge.Code)
	require.ErrorIs(t, err, ErrAttemptsExhausted)
}

func TestAttemptVerifyExpired(t *testing.T) {
	s, _, now := newTestOTPStore(t)

	challenge, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	*now = now.Add(OTPTTL + time.Second)

	_, err = s.AttemptVerify("9876543210", models.RoleCustomer, challenge.Code)
	require.ErrorIs(t, err, ErrChallengeExpired)

	_, err = s.Peek("9876543210", models.RoleCustomer)
	require.ErrorIs(t, err, ErrChallengeExpired)
}

func TestAttemptVerifyUnknownMobile(t *testing.T) {
	s, _, _ := newTestOTPStore(t)

	_, err := s.AttemptVerify("9876543210", models.RoleCustomer, "123456")
	require.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestClearRemovesChallenge(t *testing.T) {
	s, _, _ := newTestOTPStore(t)

	challenge, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)

	result, err := s.AttemptVerify("9876543210", models.RoleCustomer, challenge.Code)
	require.NoError(t, err)
	require.True(t, result.Matched)

	require.NoError(t, s.Clear("9876543210", models.RoleCustomer))

	_, err = s.Peek("9876543210", models.RoleCustomer)
	require.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestSweepExpired(t *testing.T) {
	s, _, now := newTestOTPStore(t)

	_, err := s.Issue("9876543210", models.RoleCustomer)
	require.NoError(t, err)
	_, err = s.Issue("9123456789", models.RoleCustomer)
	require.NoError(t, err)

	*now = now.Add(OTPTTL + time.Minute)
	fresh, err := s.Issue("9000000001", models.RoleDriver)
	require.NoError(t, err)

	require.NoError(t, s.SweepExpired())

	_, err = s.Peek("9876543210", models.RoleCustomer)
	require.True(t, errors.Is(err, ErrChallengeNotFound))
	_, err = s.Peek("9123456789", models.RoleCustomer)
	require.True(t, errors.Is(err, ErrChallengeNotFound))

	kept, err := s.Peek("9000000001", models.RoleDriver)
	require.NoError(t, err)
	require.Equal(t, fresh.Code, kept.Code)
}
