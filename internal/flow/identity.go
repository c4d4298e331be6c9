package flow

import (
	"errors"
	"time"

	"github.com/seatlink/seatlink-backend/internal/services"
)

// Step is one stage of the identity flow.
type Step string

const (
	// StepMobile collects the mobile number.
	StepMobile Step = "mobile"
	// StepOTP collects the 6-digit code while the challenge counts down.
	StepOTP Step = "otp"
	// StepRegister collects the new-account profile after a successful
	// verify with no existing account.
	StepRegister Step = "register"
	// StepAuthenticated is the terminal success state.
	StepAuthenticated Step = "authenticated"
)

// ResendCooldown is how long after a send the resend action stays
// disabled, independent of the challenge TTL.
const ResendCooldown = 60 * time.Second

// Flow state machine errors.
var (
	ErrInvalidTransition = errors.New("action not valid in current step")
	ErrResendCooldown    = errors.New("resend not available yet")
	ErrBusy              = errors.New("a request is already in flight")
)

// Verifier is the server half of the protocol the flow drives.
type Verifier interface {
	SendOTP(mobile, role string) (*services.SendResult, error)
	VerifyOTP(mobile, role, code string) error
}

// AccountLookup answers the login-vs-register branch after a verify.
type AccountLookup interface {
	AccountExists(mobile, role string) (bool, error)
}

// Flow is the three-step identity state machine for one role:
// mobile -> otp -> register or straight to authenticated. State is
// held client-side and discarded on abandonment; the server challenge
// is left to expire.
type Flow struct {
	verifier Verifier
	accounts AccountLookup
	role     string
	now      func() time.Time

	step          Step
	mobile        string
	expiresAt     time.Time
	resendReadyAt time.Time
	loading       bool
	needsResend   bool
	lastError     string
	// remainingAttempts is the server's hint after a mismatch; -1 when
	// unknown.
	remainingAttempts int
}

// New creates a flow at the mobile-entry step.
func New(verifier Verifier, accounts AccountLookup, role string) *Flow {
	return &Flow{
		verifier:          verifier,
		accounts:          accounts,
		role:              role,
		now:               time.Now,
		step:              StepMobile,
		remainingAttempts: -1,
	}
}

// Step returns the current step.
func (f *Flow) Step() Step { return f.step }

// Mobile returns the pending mobile number. While on the register step
// it is displayed read-only; substituting an unverified number is not
// possible.
func (f *Flow) Mobile() string { return f.mobile }

// LastError returns the most recent error text surfaced to the user.
func (f *Flow) LastError() string { return f.lastError }

// RemainingAttempts returns the server's remaining-attempts hint, or -1
// when no mismatch has been reported for the current challenge.
func (f *Flow) RemainingAttempts() int { return f.remainingAttempts }

// CountdownSeconds returns how long the current challenge stays valid.
func (f *Flow) CountdownSeconds() int {
	if f.step != StepOTP {
		return 0
	}
	remaining := int(f.expiresAt.Sub(f.now()).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResendCooldownSeconds returns how long until resend becomes available.
func (f *Flow) ResendCooldownSeconds() int {
	remaining := int(f.resendReadyAt.Sub(f.now()).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanResend reports whether the resend action is currently available.
func (f *Flow) CanResend() bool {
	return f.step == StepOTP && !f.now().Before(f.resendReadyAt)
}

// Expired reports whether the current challenge's countdown has run out.
func (f *Flow) Expired() bool {
	return f.step == StepOTP && f.now().After(f.expiresAt)
}

// NeedsResend reports whether further code entry is pointless and the
// UI should force a resend instead.
func (f *Flow) NeedsResend() bool {
	return f.needsResend || f.Expired()
}

// SubmitMobile requests an OTP for the entered number and, on success,
// advances to the code-entry step. On failure the flow stays on the
// mobile step with an inline error.
func (f *Flow) SubmitMobile(mobile string) error {
	if f.step != StepMobile {
		return ErrInvalidTransition
	}
	if f.loading {
		return ErrBusy
	}

	f.loading = true
	defer func() { f.loading = false }()

	result, err := f.verifier.SendOTP(mobile, f.role)
	if err != nil {
		f.lastError = err.Error()
		return err
	}

	f.mobile = mobile
	f.expiresAt = result.ExpiresAt
	f.resendReadyAt = f.now().Add(ResendCooldown)
	f.step = StepOTP
	f.lastError = ""
	f.needsResend = false
	f.remainingAttempts = -1
	return nil
}

// InputCode feeds the code-entry field. Verification triggers
// automatically once the input reaches exactly 6 digits, provided no
// request is in flight and the challenge has not expired.
func (f *Flow) InputCode(code string) error {
	if f.step != StepOTP {
		return ErrInvalidTransition
	}
	if len(code) != 6 || f.loading || f.Expired() {
		return nil
	}
	return f.SubmitCode(code)
}

// SubmitCode verifies the entered code. On success the flow resolves
// the account branch: existing account authenticates directly, a new
// one moves to registration.
func (f *Flow) SubmitCode(code string) error {
	if f.step != StepOTP {
		return ErrInvalidTransition
	}
	if f.loading {
		return ErrBusy
	}

	f.loading = true
	defer func() { f.loading = false }()

	if err := f.verifier.VerifyOTP(f.mobile, f.role, code); err != nil {
		f.lastError = err.Error()

		var mismatch *services.CodeMismatchError
		if errors.As(err, &mismatch) {
			f.remainingAttempts = mismatch.RemainingAttempts
		}
		if errors.Is(err, services.ErrChallengeExpired) {
			// Further codes are pointless; the UI flips to force resend
			f.needsResend = true
		}
		return err
	}

	exists, err := f.accounts.AccountExists(f.mobile, f.role)
	if err != nil {
		f.lastError = err.Error()
		return err
	}

	f.lastError = ""
	f.remainingAttempts = -1
	if exists {
		f.step = StepAuthenticated
	} else {
		f.step = StepRegister
	}
	return nil
}

// Resend re-requests a code for the same number, resetting the
// countdown and restarting the cooldown. Prior errors are cleared.
func (f *Flow) Resend() error {
	if f.step != StepOTP {
		return ErrInvalidTransition
	}
	if !f.CanResend() {
		return ErrResendCooldown
	}
	if f.loading {
		return ErrBusy
	}

	f.loading = true
	defer func() { f.loading = false }()

	result, err := f.verifier.SendOTP(f.mobile, f.role)
	if err != nil {
		f.lastError = err.Error()
		return err
	}

	f.expiresAt = result.ExpiresAt
	f.resendReadyAt = f.now().Add(ResendCooldown)
	f.lastError = ""
	f.needsResend = false
	f.remainingAttempts = -1
	return nil
}

// CompleteRegistration marks the profile form as submitted and
// authenticates. Only reachable after a successful verify in this flow.
func (f *Flow) CompleteRegistration() error {
	if f.step != StepRegister {
		return ErrInvalidTransition
	}
	f.step = StepAuthenticated
	return nil
}

// ChangeNumber discards the in-progress challenge context and returns
// to mobile entry. The server-side challenge is left to expire or be
// replaced by the next send.
func (f *Flow) ChangeNumber() {
	f.step = StepMobile
	f.mobile = ""
	f.expiresAt = time.Time{}
	f.resendReadyAt = time.Time{}
	f.lastError = ""
	f.needsResend = false
	f.remainingAttempts = -1
}
