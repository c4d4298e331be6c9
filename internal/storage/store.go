package storage

import (
	"errors"
	"time"

	"github.com/seatlink/seatlink-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Typed storage errors. Callers branch on these rather than matching
// error strings.
var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrDriverNotFound       = errors.New("driver not found")
	ErrListingNotFound      = errors.New("listing not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrChallengeNotFound    = errors.New("otp challenge not found")
	ErrRateLimitNotFound    = errors.New("rate limit record not found")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrDuplicateMobile      = errors.New("mobile number already registered")
	ErrDuplicateVehicle     = errors.New("vehicle number already registered")
	ErrListingNotOpen       = errors.New("listing not open for booking")
	ErrSeatsUnavailable     = errors.New("not enough seats available")
)

// Store defines the interface for storage operations
type Store interface {
	// Customer operations
	CreateCustomer(reg *models.CustomerRegistration) (*models.Customer, error)
	GetCustomerByID(customerID string) (*models.Customer, error)
	GetCustomerByMobile(mobile string) (*models.Customer, error)
	GetAllCustomers() ([]*models.Customer, error)
	UpdateCustomer(customer *models.Customer) error

	// Driver operations
	CreateDriver(reg *models.DriverRegistration) (*models.Driver, error)
	GetDriverByID(driverID string) (*models.Driver, error)
	GetDriverByMobile(mobile string) (*models.Driver, error)
	GetAllDrivers() ([]*models.Driver, error)
	UpdateDriver(driver *models.Driver) error

	// Listing operations
	CreateListing(listing *models.Listing) (*models.Listing, error)
	GetListing(id string) (*models.Listing, error)
	SearchListings(search *models.ListingSearch) ([]*models.Listing, error)
	GetListingsByDriver(driverID string) ([]*models.Listing, error)
	UpdateListing(listing *models.Listing) error
	UpdateListingStatus(id string, status string) error

	// Booking operations
	CreateBooking(listingID, customerID string, seats int) (*models.Booking, error)
	GetBooking(id string) (*models.Booking, error)
	GetBookingsByCustomer(customerID string) ([]*models.Booking, error)
	GetBookingsByListing(listingID string) ([]*models.Booking, error)
	UpdateBookingStatus(id string, status string) error

	// OTP challenge operations. Only services.OTPStore may call these;
	// going through the challenge invariants any other way is a bug.
	GetOTPChallenge(mobile, role string) (*models.OTPChallenge, error)
	SaveOTPChallenge(challenge *models.OTPChallenge) error
	DeleteOTPChallenge(mobile, role string) error
	DeleteExpiredOTPChallenges(now time.Time) error

	// Rate limit operations. Only services.RateLimiter may call these.
	GetRateLimitRecord(identifier, limitType string) (*models.RateLimitRecord, error)
	SaveRateLimitRecord(record *models.RateLimitRecord) error
	DeleteStaleRateLimitRecords(before time.Time) error

	// Admin operations
	CreateVerification(verification *models.Verification) (*models.Verification, error)
	GetVerification(verificationID string) (*models.Verification, error)
	GetPendingVerifications() ([]*models.Verification, error)
	UpdateVerificationStatus(verificationID string, status string, adminNotes string) error
	SuspendAccount(role string, accountID string, reason string) error
	ReactivateAccount(role string, accountID string) error
}
