package services

import (
	"errors"
	"log"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// AccountService resolves a verified mobile number into an account:
// login when one exists, registration when it does not. Both paths
// require a consumed, unexpired OTP challenge and spend it on success.
type AccountService struct {
	store    storage.Store
	otps     *OTPStore
	sessions *SessionService
}

// NewAccountService creates the account resolution service.
func NewAccountService(store storage.Store, otps *OTPStore, sessions *SessionService) *AccountService {
	return &AccountService{
		store:    store,
		otps:     otps,
		sessions: sessions,
	}
}

// AccountExists reports whether an account is registered for the mobile
// under the given role.
func (s *AccountService) AccountExists(mobile, role string) (bool, error) {
	mobile = models.NormalizeMobile(mobile)
	switch role {
	case models.RoleCustomer:
		_, err := s.store.GetCustomerByMobile(mobile)
		if errors.Is(err, storage.ErrCustomerNotFound) {
			return false, nil
		}
		return err == nil, err
	case models.RoleDriver:
		_, err := s.store.GetDriverByMobile(mobile)
		if errors.Is(err, storage.ErrDriverNotFound) {
			return false, nil
		}
		return err == nil, err
	}
	return false, errors.New("unknown role: " + role)
}

// requireVerified confirms the mobile carries a consumed, unexpired
// challenge. This is the postcondition VerifyOTP leaves behind; without
// it no account operation may proceed.
func (s *AccountService) requireVerified(mobile, role string) error {
	challenge, err := s.otps.Peek(mobile, role)
	if err != nil {
		return ErrMobileNotVerified
	}
	if !challenge.Consumed {
		return ErrMobileNotVerified
	}
	return nil
}

// spendChallenge erases the consumed challenge once an account action
// has completed, so it cannot authorize a second one.
func (s *AccountService) spendChallenge(mobile, role string) {
	if err := s.otps.Clear(mobile, role); err != nil {
		log.Printf("Failed to clear challenge for %s (%s): %v", mobile, role, err)
	}
}

// LoginCustomer issues a session for an existing customer account.
// ErrAccountNotFound is the branch signal that moves the identity flow
// to registration; it is not a failure of the flow itself.
func (s *AccountService) LoginCustomer(mobile string) (*models.Customer, string, error) {
	mobile = models.NormalizeMobile(mobile)
	if err := s.requireVerified(mobile, models.RoleCustomer); err != nil {
		return nil, "", err
	}

	customer, err := s.store.GetCustomerByMobile(mobile)
	if err != nil {
		if errors.Is(err, storage.ErrCustomerNotFound) {
			return nil, "", ErrAccountNotFound
		}
		return nil, "", err
	}
	if customer.IsSuspended {
		return nil, "", ErrAccountSuspended
	}

	token, err := s.sessions.Issue(customer.CustomerID, models.RoleCustomer, customer.Mobile)
	if err != nil {
		return nil, "", err
	}

	s.spendChallenge(mobile, models.RoleCustomer)
	return customer, token, nil
}

// RegisterCustomer creates a customer account for a verified mobile.
func (s *AccountService) RegisterCustomer(reg *models.CustomerRegistration) (*models.Customer, string, error) {
	mobile := models.NormalizeMobile(reg.Mobile)
	if err := s.requireVerified(mobile, models.RoleCustomer); err != nil {
		return nil, "", err
	}

	customer, err := s.store.CreateCustomer(reg)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateMobile) {
			return nil, "", ErrAccountConflict
		}
		return nil, "", err
	}

	token, err := s.sessions.Issue(customer.CustomerID, models.RoleCustomer, customer.Mobile)
	if err != nil {
		return nil, "", err
	}

	s.spendChallenge(mobile, models.RoleCustomer)
	return customer, token, nil
}

// LoginDriver issues a session for an existing driver account.
func (s *AccountService) LoginDriver(mobile string) (*models.Driver, string, error) {
	mobile = models.NormalizeMobile(mobile)
	if err := s.requireVerified(mobile, models.RoleDriver); err != nil {
		return nil, "", err
	}

	driver, err := s.store.GetDriverByMobile(mobile)
	if err != nil {
		if errors.Is(err, storage.ErrDriverNotFound) {
			return nil, "", ErrAccountNotFound
		}
		return nil, "", err
	}
	if driver.IsSuspended {
		return nil, "", ErrAccountSuspended
	}

	token, err := s.sessions.Issue(driver.DriverID, models.RoleDriver, driver.Mobile)
	if err != nil {
		return nil, "", err
	}

	s.spendChallenge(mobile, models.RoleDriver)
	return driver, token, nil
}

// RegisterDriver creates a driver account for a verified mobile and
// opens a pending document verification for admin review.
func (s *AccountService) RegisterDriver(reg *models.DriverRegistration) (*models.Driver, string, error) {
	mobile := models.NormalizeMobile(reg.Mobile)
	if err := s.requireVerified(mobile, models.RoleDriver); err != nil {
		return nil, "", err
	}

	driver, err := s.store.CreateDriver(reg)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateMobile) {
			return nil, "", ErrAccountConflict
		}
		return nil, "", err
	}

	if _, err := s.store.CreateVerification(&models.Verification{
		DriverID:     driver.DriverID,
		DocumentType: "DL",
	}); err != nil {
		log.Printf("Failed to open verification for driver %s: %v", driver.DriverID, err)
	}

	token, err := s.sessions.Issue(driver.DriverID, models.RoleDriver, driver.Mobile)
	if err != nil {
		return nil, "", err
	}

	s.spendChallenge(mobile, models.RoleDriver)
	return driver, token, nil
}
