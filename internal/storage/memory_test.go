package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seatlink/seatlink-backend/internal/models"
)

func seedCustomer(t *testing.T, m *MemoryStore, mobile string) *models.Customer {
	t.Helper()

	customer, err := m.CreateCustomer(&models.CustomerRegistration{
		Name:   "Asha",
		Mobile: mobile,
	})
	require.NoError(t, err)
	return customer
}

func seedDriver(t *testing.T, m *MemoryStore, mobile, vehicleNo string) *models.Driver {
	t.Helper()

	driver, err := m.CreateDriver(&models.DriverRegistration{
		Name:         "Ravi",
		Mobile:       mobile,
		LicenseNo:    "KA01 20230001234",
		VehicleNo:    vehicleNo,
		VehicleType:  "sedan",
		SeatCapacity: 4,
	})
	require.NoError(t, err)
	return driver
}

func seedListing(t *testing.T, m *MemoryStore, driverID string, seats int) *models.Listing {
	t.Helper()

	listing, err := m.CreateListing(&models.Listing{
		DriverID:     driverID,
		FromCity:     "Bangalore",
		ToCity:       "Mysore",
		VehicleType:  "sedan",
		TotalSeats:   seats,
		PricePerSeat: 450,
		DepartureAt:  time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return listing
}

func TestCreateCustomerRejectsDuplicateMobile(t *testing.T) {
	m := NewMemoryStore()

	seedCustomer(t, m, "9876543210")
	_, err := m.CreateCustomer(&models.CustomerRegistration{
		Name:   "Asha Again",
		Mobile: "+91 98765 43210", // same number, different formatting
	})
	require.ErrorIs(t, err, ErrDuplicateMobile)
}

func TestCreateDriverRejectsDuplicateVehicle(t *testing.T) {
	m := NewMemoryStore()

	seedDriver(t, m, "9000000001", "KA01AB1234")
	_, err := m.CreateDriver(&models.DriverRegistration{
		Name:         "Suresh",
		Mobile:       "9000000002",
		LicenseNo:    "KA02 20230005678",
		VehicleNo:    "KA01AB1234",
		VehicleType:  "suv",
		SeatCapacity: 6,
	})
	require.ErrorIs(t, err, ErrDuplicateVehicle)
}

func TestCreateBookingSeatAccounting(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "9000000001", "KA01AB1234")
	customer := seedCustomer(t, m, "9876543210")
	listing := seedListing(t, m, driver.DriverID, 4)

	booking, err := m.CreateBooking(listing.ID, customer.CustomerID, 3)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusConfirmed, booking.Status)
	require.Equal(t, float64(3)*450, booking.Amount)
	require.Equal(t, driver.DriverID, booking.DriverID)

	// Only 1 seat left
	_, err = m.CreateBooking(listing.ID, customer.CustomerID, 2)
	require.ErrorIs(t, err, ErrSeatsUnavailable)

	// Taking the last seat flips the listing to full
	_, err = m.CreateBooking(listing.ID, customer.CustomerID, 1)
	require.NoError(t, err)

	updated, err := m.GetListing(listing.ID)
	require.NoError(t, err)
	require.Equal(t, models.ListingStatusFull, updated.Status)

	// Full listings refuse further bookings outright
	_, err = m.CreateBooking(listing.ID, customer.CustomerID, 1)
	require.ErrorIs(t, err, ErrListingNotOpen)
}

func TestCreateBookingIgnoresCancelledSeats(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "9000000001", "KA01AB1234")
	customer := seedCustomer(t, m, "9876543210")
	listing := seedListing(t, m, driver.DriverID, 4)

	booking, err := m.CreateBooking(listing.ID, customer.CustomerID, 3)
	require.NoError(t, err)
	require.NoError(t, m.UpdateBookingStatus(booking.ID, models.BookingStatusCancelled))

	// Cancelled seats are free again
	_, err = m.CreateBooking(listing.ID, customer.CustomerID, 4)
	require.NoError(t, err)
}

func TestCreateBookingValidatesReferences(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "9000000001", "KA01AB1234")
	customer := seedCustomer(t, m, "9876543210")
	listing := seedListing(t, m, driver.DriverID, 4)

	_, err := m.CreateBooking("RD99999", customer.CustomerID, 1)
	require.ErrorIs(t, err, ErrListingNotFound)

	_, err = m.CreateBooking(listing.ID, "CU99999", 1)
	require.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestSearchListingsFilters(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "9000000001", "KA01AB1234")

	blrMys := seedListing(t, m, driver.DriverID, 4)
	other, err := m.CreateListing(&models.Listing{
		DriverID:     driver.DriverID,
		FromCity:     "Bangalore",
		ToCity:       "Chennai",
		VehicleType:  "sedan",
		TotalSeats:   4,
		PricePerSeat: 900,
		DepartureAt:  time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	results, err := m.SearchListings(&models.ListingSearch{FromCity: "Bangalore", ToCity: "Mysore"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, blrMys.ID, results[0].ID)

	// Closed listings drop out of search
	require.NoError(t, m.UpdateListingStatus(other.ID, models.ListingStatusClosed))
	results, err = m.SearchListings(&models.ListingSearch{FromCity: "Bangalore"})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestGetBookingsByCustomerAndListing(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "9000000001", "KA01AB1234")
	asha := seedCustomer(t, m, "9876543210")
	ravi := seedCustomer(t, m, "9123456789")
	listing := seedListing(t, m, driver.DriverID, 4)

	_, err := m.CreateBooking(listing.ID, asha.CustomerID, 1)
	require.NoError(t, err)
	_, err = m.CreateBooking(listing.ID, ravi.CustomerID, 2)
	require.NoError(t, err)

	byCustomer, err := m.GetBookingsByCustomer(asha.CustomerID)
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)

	byListing, err := m.GetBookingsByListing(listing.ID)
	require.NoError(t, err)
	require.Len(t, byListing, 2)
}

func TestSuspendAndReactivateAccount(t *testing.T) {
	m := NewMemoryStore()
	customer := seedCustomer(t, m, "9876543210")

	require.NoError(t, m.SuspendAccount(models.RoleCustomer, customer.CustomerID, "chargeback abuse"))
	suspended, err := m.GetCustomerByID(customer.CustomerID)
	require.NoError(t, err)
	require.True(t, suspended.IsSuspended)

	require.NoError(t, m.ReactivateAccount(models.RoleCustomer, customer.CustomerID))
	active, err := m.GetCustomerByID(customer.CustomerID)
	require.NoError(t, err)
	require.False(t, active.IsSuspended)
}

func TestVerificationLifecycle(t *testing.T) {
	m := NewMemoryStore()
	driver := seedDriver(t, m, "9000000001", "KA01AB1234")

	created, err := m.CreateVerification(&models.Verification{
		DriverID:     driver.DriverID,
		DocumentType: "DL",
	})
	require.NoError(t, err)
	require.Equal(t, "pending", created.Status)
	require.NotEmpty(t, created.VerificationID)

	pending, err := m.GetPendingVerifications()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, m.UpdateVerificationStatus(created.VerificationID, "approved", "documents look good"))

	pending, err = m.GetPendingVerifications()
	require.NoError(t, err)
	require.Empty(t, pending)

	approved, err := m.GetVerification(created.VerificationID)
	require.NoError(t, err)
	require.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.VerifiedAt)
}
