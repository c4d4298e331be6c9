package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/seatlink/seatlink-backend/internal/models"
)

// MemoryStore holds all data in memory for tests and local development
type MemoryStore struct {
	customers     map[string]*models.Customer
	drivers       map[string]*models.Driver
	listings      map[string]*models.Listing
	bookings      map[string]*models.Booking
	challenges    map[string]*models.OTPChallenge
	rateLimits    map[string]*models.RateLimitRecord
	verifications map[string]*models.Verification

	// Mutexes for thread safety
	customerMu     sync.RWMutex
	driverMu       sync.RWMutex
	listingMu      sync.RWMutex
	bookingMu      sync.RWMutex
	challengeMu    sync.RWMutex
	rateLimitMu    sync.RWMutex
	verificationMu sync.RWMutex

	// Counters for ID generation
	customerCounter     int
	driverCounter       int
	listingCounter      int
	bookingCounter      int
	verificationCounter int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:     make(map[string]*models.Customer),
		drivers:       make(map[string]*models.Driver),
		listings:      make(map[string]*models.Listing),
		bookings:      make(map[string]*models.Booking),
		challenges:    make(map[string]*models.OTPChallenge),
		rateLimits:    make(map[string]*models.RateLimitRecord),
		verifications: make(map[string]*models.Verification),
	}
}

func challengeKey(mobile, role string) string {
	return mobile + "|" + role
}

func rateLimitKey(identifier, limitType string) string {
	return identifier + "|" + limitType
}

// Customer operations

func (m *MemoryStore) CreateCustomer(reg *models.CustomerRegistration) (*models.Customer, error) {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	mobile := models.NormalizeMobile(reg.Mobile)
	for _, c := range m.customers {
		if c.Mobile == mobile {
			return nil, ErrDuplicateMobile
		}
	}

	m.customerCounter++
	customer := &models.Customer{
		CustomerID: fmt.Sprintf("CU%05d", m.customerCounter),
		Name:       reg.Name,
		Mobile:     mobile,
		Email:      reg.Email,
		City:       reg.City,
		IsActive:   true,
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	m.customers[customer.CustomerID] = customer
	return customer, nil
}

func (m *MemoryStore) GetCustomerByID(customerID string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	customer, exists := m.customers[customerID]
	if !exists {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

func (m *MemoryStore) GetCustomerByMobile(mobile string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	mobile = models.NormalizeMobile(mobile)
	for _, customer := range m.customers {
		if customer.Mobile == mobile {
			return customer, nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (m *MemoryStore) GetAllCustomers() ([]*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	customers := make([]*models.Customer, 0, len(m.customers))
	for _, customer := range m.customers {
		customers = append(customers, customer)
	}
	return customers, nil
}

func (m *MemoryStore) UpdateCustomer(customer *models.Customer) error {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	if _, exists := m.customers[customer.CustomerID]; !exists {
		return ErrCustomerNotFound
	}
	customer.UpdatedAt = time.Now()
	m.customers[customer.CustomerID] = customer
	return nil
}

// Driver operations

func (m *MemoryStore) CreateDriver(reg *models.DriverRegistration) (*models.Driver, error) {
	m.driverMu.Lock()
	defer m.driverMu.Unlock()

	mobile := models.NormalizeMobile(reg.Mobile)
	for _, d := range m.drivers {
		if d.Mobile == mobile {
			return nil, ErrDuplicateMobile
		}
		if d.VehicleNo == reg.VehicleNo {
			return nil, ErrDuplicateVehicle
		}
	}

	m.driverCounter++
	driver := &models.Driver{
		DriverID:     fmt.Sprintf("DR%05d", m.driverCounter),
		Name:         reg.Name,
		Mobile:       mobile,
		LicenseNo:    reg.LicenseNo,
		VehicleNo:    reg.VehicleNo,
		VehicleType:  reg.VehicleType,
		SeatCapacity: reg.SeatCapacity,
		Verified:     false,
		Rating:       5.0,
		IsActive:     true,
	}
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()

	m.drivers[driver.DriverID] = driver
	return driver, nil
}

func (m *MemoryStore) GetDriverByID(driverID string) (*models.Driver, error) {
	m.driverMu.RLock()
	defer m.driverMu.RUnlock()

	driver, exists := m.drivers[driverID]
	if !exists {
		return nil, ErrDriverNotFound
	}
	return driver, nil
}

func (m *MemoryStore) GetDriverByMobile(mobile string) (*models.Driver, error) {
	m.driverMu.RLock()
	defer m.driverMu.RUnlock()

	mobile = models.NormalizeMobile(mobile)
	for _, driver := range m.drivers {
		if driver.Mobile == mobile {
			return driver, nil
		}
	}
	return nil, ErrDriverNotFound
}

func (m *MemoryStore) GetAllDrivers() ([]*models.Driver, error) {
	m.driverMu.RLock()
	defer m.driverMu.RUnlock()

	drivers := make([]*models.Driver, 0, len(m.drivers))
	for _, driver := range m.drivers {
		drivers = append(drivers, driver)
	}
	return drivers, nil
}

func (m *MemoryStore) UpdateDriver(driver *models.Driver) error {
	m.driverMu.Lock()
	defer m.driverMu.Unlock()

	if _, exists := m.drivers[driver.DriverID]; !exists {
		return ErrDriverNotFound
	}
	driver.UpdatedAt = time.Now()
	m.drivers[driver.DriverID] = driver
	return nil
}

// Listing operations

func (m *MemoryStore) CreateListing(listing *models.Listing) (*models.Listing, error) {
	m.listingMu.Lock()
	defer m.listingMu.Unlock()

	m.listingCounter++
	listing.ID = fmt.Sprintf("RD%05d", m.listingCounter)
	listing.Status = models.ListingStatusOpen
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()

	m.listings[listing.ID] = listing
	return listing, nil
}

func (m *MemoryStore) GetListing(id string) (*models.Listing, error) {
	m.listingMu.RLock()
	defer m.listingMu.RUnlock()

	listing, exists := m.listings[id]
	if !exists {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

func (m *MemoryStore) SearchListings(search *models.ListingSearch) ([]*models.Listing, error) {
	m.listingMu.RLock()
	defer m.listingMu.RUnlock()

	var results []*models.Listing
	for _, listing := range m.listings {
		if listing.Status != models.ListingStatusOpen {
			continue
		}

		// Match criteria
		if search.FromCity != "" && listing.FromCity != search.FromCity {
			continue
		}
		if search.ToCity != "" && listing.ToCity != search.ToCity {
			continue
		}
		if search.VehicleType != "" && listing.VehicleType != search.VehicleType {
			continue
		}

		results = append(results, listing)
	}
	return results, nil
}

func (m *MemoryStore) GetListingsByDriver(driverID string) ([]*models.Listing, error) {
	m.listingMu.RLock()
	defer m.listingMu.RUnlock()

	var listings []*models.Listing
	for _, listing := range m.listings {
		if listing.DriverID == driverID {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

func (m *MemoryStore) UpdateListing(listing *models.Listing) error {
	m.listingMu.Lock()
	defer m.listingMu.Unlock()

	if _, exists := m.listings[listing.ID]; !exists {
		return ErrListingNotFound
	}
	listing.UpdatedAt = time.Now()
	m.listings[listing.ID] = listing
	return nil
}

func (m *MemoryStore) UpdateListingStatus(id string, status string) error {
	m.listingMu.Lock()
	defer m.listingMu.Unlock()

	listing, exists := m.listings[id]
	if !exists {
		return ErrListingNotFound
	}
	listing.Status = status
	listing.UpdatedAt = time.Now()
	return nil
}

// Booking operations

func (m *MemoryStore) CreateBooking(listingID, customerID string, seats int) (*models.Booking, error) {
	listing, err := m.GetListing(listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.ListingStatusOpen {
		return nil, ErrListingNotOpen
	}

	if _, err := m.GetCustomerByID(customerID); err != nil {
		return nil, err
	}

	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	// Sum-and-compare seat check against confirmed bookings
	booked := 0
	for _, b := range m.bookings {
		if b.ListingID == listingID && b.Status == models.BookingStatusConfirmed {
			booked += b.Seats
		}
	}
	if booked+seats > listing.TotalSeats {
		return nil, ErrSeatsUnavailable
	}

	m.bookingCounter++
	now := time.Now()

	booking := &models.Booking{
		ID:          fmt.Sprintf("BK%05d", m.bookingCounter),
		ListingID:   listingID,
		CustomerID:  customerID,
		DriverID:    listing.DriverID,
		Seats:       seats,
		Amount:      float64(seats) * listing.PricePerSeat,
		Status:      models.BookingStatusConfirmed,
		ConfirmedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Mark the listing full once the last seat goes
	if booked+seats == listing.TotalSeats {
		m.listingMu.Lock()
		listing.Status = models.ListingStatusFull
		listing.UpdatedAt = now
		m.listingMu.Unlock()
	}

	m.bookings[booking.ID] = booking
	return booking, nil
}

func (m *MemoryStore) GetBooking(id string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	booking, exists := m.bookings[id]
	if !exists {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (m *MemoryStore) GetBookingsByCustomer(customerID string) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, booking := range m.bookings {
		if booking.CustomerID == customerID {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

func (m *MemoryStore) GetBookingsByListing(listingID string) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, booking := range m.bookings {
		if booking.ListingID == listingID {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

func (m *MemoryStore) UpdateBookingStatus(id string, status string) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	booking, exists := m.bookings[id]
	if !exists {
		return ErrBookingNotFound
	}
	now := time.Now()
	booking.Status = status
	booking.UpdatedAt = now
	switch status {
	case models.BookingStatusCancelled:
		booking.CancelledAt = &now
	case models.BookingStatusCompleted:
		booking.CompletedAt = &now
	}
	return nil
}

// OTP challenge operations

func (m *MemoryStore) GetOTPChallenge(mobile, role string) (*models.OTPChallenge, error) {
	m.challengeMu.RLock()
	defer m.challengeMu.RUnlock()

	challenge, exists := m.challenges[challengeKey(mobile, role)]
	if !exists {
		return nil, ErrChallengeNotFound
	}
	return challenge, nil
}

func (m *MemoryStore) SaveOTPChallenge(challenge *models.OTPChallenge) error {
	m.challengeMu.Lock()
	defer m.challengeMu.Unlock()

	m.challenges[challengeKey(challenge.Mobile, challenge.Role)] = challenge
	return nil
}

func (m *MemoryStore) DeleteOTPChallenge(mobile, role string) error {
	m.challengeMu.Lock()
	defer m.challengeMu.Unlock()

	delete(m.challenges, challengeKey(mobile, role))
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPChallenges(now time.Time) error {
	m.challengeMu.Lock()
	defer m.challengeMu.Unlock()

	for key, challenge := range m.challenges {
		if challenge.Expired(now) {
			delete(m.challenges, key)
		}
	}
	return nil
}

// Rate limit operations

func (m *MemoryStore) GetRateLimitRecord(identifier, limitType string) (*models.RateLimitRecord, error) {
	m.rateLimitMu.RLock()
	defer m.rateLimitMu.RUnlock()

	record, exists := m.rateLimits[rateLimitKey(identifier, limitType)]
	if !exists {
		return nil, ErrRateLimitNotFound
	}
	return record, nil
}

func (m *MemoryStore) SaveRateLimitRecord(record *models.RateLimitRecord) error {
	m.rateLimitMu.Lock()
	defer m.rateLimitMu.Unlock()

	m.rateLimits[rateLimitKey(record.Identifier, record.LimitType)] = record
	return nil
}

func (m *MemoryStore) DeleteStaleRateLimitRecords(before time.Time) error {
	m.rateLimitMu.Lock()
	defer m.rateLimitMu.Unlock()

	for key, record := range m.rateLimits {
		if record.LastAttempt.Before(before) && !record.Locked(time.Now()) {
			delete(m.rateLimits, key)
		}
	}
	return nil
}

// Admin operations

func (m *MemoryStore) CreateVerification(verification *models.Verification) (*models.Verification, error) {
	m.verificationMu.Lock()
	defer m.verificationMu.Unlock()

	m.verificationCounter++
	if verification.VerificationID == "" {
		verification.VerificationID = fmt.Sprintf("VER%05d", m.verificationCounter)
	}
	if verification.Status == "" {
		verification.Status = "pending"
	}
	verification.CreatedAt = time.Now()
	verification.UpdatedAt = time.Now()

	m.verifications[verification.VerificationID] = verification
	return verification, nil
}

func (m *MemoryStore) GetVerification(verificationID string) (*models.Verification, error) {
	m.verificationMu.RLock()
	defer m.verificationMu.RUnlock()

	verification, exists := m.verifications[verificationID]
	if !exists {
		return nil, ErrVerificationNotFound
	}
	return verification, nil
}

func (m *MemoryStore) GetPendingVerifications() ([]*models.Verification, error) {
	m.verificationMu.RLock()
	defer m.verificationMu.RUnlock()

	var pending []*models.Verification
	for _, verification := range m.verifications {
		if verification.Status == "pending" {
			pending = append(pending, verification)
		}
	}
	return pending, nil
}

func (m *MemoryStore) UpdateVerificationStatus(verificationID string, status string, adminNotes string) error {
	m.verificationMu.Lock()
	defer m.verificationMu.Unlock()

	verification, exists := m.verifications[verificationID]
	if !exists {
		return ErrVerificationNotFound
	}
	now := time.Now()
	verification.Status = status
	verification.AdminNotes = adminNotes
	verification.VerifiedAt = &now
	verification.UpdatedAt = now
	return nil
}

func (m *MemoryStore) SuspendAccount(role string, accountID string, reason string) error {
	switch role {
	case models.RoleDriver:
		driver, err := m.GetDriverByID(accountID)
		if err != nil {
			return err
		}
		driver.IsSuspended = true
		return m.UpdateDriver(driver)
	case models.RoleCustomer:
		customer, err := m.GetCustomerByID(accountID)
		if err != nil {
			return err
		}
		customer.IsSuspended = true
		return m.UpdateCustomer(customer)
	}
	return fmt.Errorf("unknown role: %s", role)
}

func (m *MemoryStore) ReactivateAccount(role string, accountID string) error {
	switch role {
	case models.RoleDriver:
		driver, err := m.GetDriverByID(accountID)
		if err != nil {
			return err
		}
		driver.IsSuspended = false
		return m.UpdateDriver(driver)
	case models.RoleCustomer:
		customer, err := m.GetCustomerByID(accountID)
		if err != nil {
			return err
		}
		customer.IsSuspended = false
		return m.UpdateCustomer(customer)
	}
	return fmt.Errorf("unknown role: %s", role)
}
