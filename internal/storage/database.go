package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/utils"
)

// DatabaseStore persists everything through GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given database
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// Customer operations

func (s *DatabaseStore) CreateCustomer(reg *models.CustomerRegistration) (*models.Customer, error) {
	mobile := models.NormalizeMobile(reg.Mobile)

	var count int64
	s.db.Model(&models.Customer{}).Where("mobile = ?", mobile).Count(&count)
	if count > 0 {
		return nil, ErrDuplicateMobile
	}

	customer := &models.Customer{
		Name:     reg.Name,
		Mobile:   mobile,
		Email:    reg.Email,
		City:     reg.City,
		IsActive: true,
	}
	if err := s.db.Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *DatabaseStore) GetCustomerByID(customerID string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Where("customer_id = ?", customerID).First(&customer).Error
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	return &customer, nil
}

func (s *DatabaseStore) GetCustomerByMobile(mobile string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Where("mobile = ?", models.NormalizeMobile(mobile)).First(&customer).Error
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	return &customer, nil
}

func (s *DatabaseStore) GetAllCustomers() ([]*models.Customer, error) {
	var customers []*models.Customer
	if err := s.db.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *DatabaseStore) UpdateCustomer(customer *models.Customer) error {
	return s.db.Save(customer).Error
}

// Driver operations

func (s *DatabaseStore) CreateDriver(reg *models.DriverRegistration) (*models.Driver, error) {
	mobile := models.NormalizeMobile(reg.Mobile)

	var count int64
	s.db.Model(&models.Driver{}).Where("mobile = ?", mobile).Count(&count)
	if count > 0 {
		return nil, ErrDuplicateMobile
	}
	s.db.Model(&models.Driver{}).Where("vehicle_no = ?", reg.VehicleNo).Count(&count)
	if count > 0 {
		return nil, ErrDuplicateVehicle
	}

	driver := &models.Driver{
		Name:         reg.Name,
		Mobile:       mobile,
		LicenseNo:    reg.LicenseNo,
		VehicleNo:    reg.VehicleNo,
		VehicleType:  reg.VehicleType,
		SeatCapacity: reg.SeatCapacity,
		IsActive:     true,
	}
	if err := s.db.Create(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *DatabaseStore) GetDriverByID(driverID string) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.Where("driver_id = ?", driverID).First(&driver).Error
	if err != nil {
		return nil, notFound(err, ErrDriverNotFound)
	}
	return &driver, nil
}

func (s *DatabaseStore) GetDriverByMobile(mobile string) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.Where("mobile = ?", models.NormalizeMobile(mobile)).First(&driver).Error
	if err != nil {
		return nil, notFound(err, ErrDriverNotFound)
	}
	return &driver, nil
}

func (s *DatabaseStore) GetAllDrivers() ([]*models.Driver, error) {
	var drivers []*models.Driver
	if err := s.db.Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (s *DatabaseStore) UpdateDriver(driver *models.Driver) error {
	return s.db.Save(driver).Error
}

// Listing operations

func (s *DatabaseStore) CreateListing(listing *models.Listing) (*models.Listing, error) {
	listing.ID = utils.GenerateSecureID("RD")
	listing.Status = models.ListingStatusOpen
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()

	if err := s.db.Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *DatabaseStore) GetListing(id string) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, notFound(err, ErrListingNotFound)
	}
	return &listing, nil
}

func (s *DatabaseStore) SearchListings(search *models.ListingSearch) ([]*models.Listing, error) {
	query := s.db.Where("status = ?", models.ListingStatusOpen)
	if search.FromCity != "" {
		query = query.Where("from_city = ?", search.FromCity)
	}
	if search.ToCity != "" {
		query = query.Where("to_city = ?", search.ToCity)
	}
	if search.VehicleType != "" {
		query = query.Where("vehicle_type = ?", search.VehicleType)
	}

	var listings []*models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *DatabaseStore) GetListingsByDriver(driverID string) ([]*models.Listing, error) {
	var listings []*models.Listing
	if err := s.db.Where("driver_id = ?", driverID).Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *DatabaseStore) UpdateListing(listing *models.Listing) error {
	listing.UpdatedAt = time.Now()
	return s.db.Save(listing).Error
}

func (s *DatabaseStore) UpdateListingStatus(id string, status string) error {
	result := s.db.Model(&models.Listing{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// Booking operations

func (s *DatabaseStore) CreateBooking(listingID, customerID string, seats int) (*models.Booking, error) {
	var booking *models.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Where("id = ?", listingID).First(&listing).Error; err != nil {
			return notFound(err, ErrListingNotFound)
		}
		if listing.Status != models.ListingStatusOpen {
			return ErrListingNotOpen
		}

		var customer models.Customer
		if err := tx.Where("customer_id = ?", customerID).First(&customer).Error; err != nil {
			return notFound(err, ErrCustomerNotFound)
		}

		// Sum-and-compare seat check against confirmed bookings
		var booked int64
		tx.Model(&models.Booking{}).
			Where("listing_id = ? AND status = ?", listingID, models.BookingStatusConfirmed).
			Select("COALESCE(SUM(seats), 0)").Scan(&booked)
		if int(booked)+seats > listing.TotalSeats {
			return ErrSeatsUnavailable
		}

		now := time.Now()
		booking = &models.Booking{
			ID:          utils.GenerateSecureID("BK"),
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
		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		if int(booked)+seats == listing.TotalSeats {
			listing.Status = models.ListingStatusFull
			listing.UpdatedAt = now
			if err := tx.Save(&listing).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *DatabaseStore) GetBooking(id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	return &booking, nil
}

func (s *DatabaseStore) GetBookingsByCustomer(customerID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := s.db.Where("customer_id = ?", customerID).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) GetBookingsByListing(listingID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := s.db.Where("listing_id = ?", listingID).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) UpdateBookingStatus(id string, status string) error {
	updates := map[string]interface{}{"status": status, "updated_at": time.Now()}
	now := time.Now()
	switch status {
	case models.BookingStatusCancelled:
		updates["cancelled_at"] = &now
	case models.BookingStatusCompleted:
		updates["completed_at"] = &now
	}

	result := s.db.Model(&models.Booking{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// OTP challenge operations

func (s *DatabaseStore) GetOTPChallenge(mobile, role string) (*models.OTPChallenge, error) {
	var challenge models.OTPChallenge
	err := s.db.Where("mobile = ? AND role = ?", mobile, role).First(&challenge).Error
	if err != nil {
		return nil, notFound(err, ErrChallengeNotFound)
	}
	return &challenge, nil
}

func (s *DatabaseStore) SaveOTPChallenge(challenge *models.OTPChallenge) error {
	return s.db.Save(challenge).Error
}

func (s *DatabaseStore) DeleteOTPChallenge(mobile, role string) error {
	return s.db.Unscoped().
		Where("mobile = ? AND role = ?", mobile, role).
		Delete(&models.OTPChallenge{}).Error
}

func (s *DatabaseStore) DeleteExpiredOTPChallenges(now time.Time) error {
	return s.db.Unscoped().
		Where("expires_at < ?", now).
		Delete(&models.OTPChallenge{}).Error
}

// Rate limit operations

func (s *DatabaseStore) GetRateLimitRecord(identifier, limitType string) (*models.RateLimitRecord, error) {
	var record models.RateLimitRecord
	err := s.db.Where("identifier = ? AND limit_type = ?", identifier, limitType).First(&record).Error
	if err != nil {
		return nil, notFound(err, ErrRateLimitNotFound)
	}
	return &record, nil
}

func (s *DatabaseStore) SaveRateLimitRecord(record *models.RateLimitRecord) error {
	return s.db.Save(record).Error
}

func (s *DatabaseStore) DeleteStaleRateLimitRecords(before time.Time) error {
	return s.db.Unscoped().
		Where("last_attempt < ? AND (locked_until IS NULL OR locked_until < ?)", before, time.Now()).
		Delete(&models.RateLimitRecord{}).Error
}

// Admin operations

func (s *DatabaseStore) CreateVerification(verification *models.Verification) (*models.Verification, error) {
	if verification.Status == "" {
		verification.Status = "pending"
	}
	if err := s.db.Create(verification).Error; err != nil {
		return nil, err
	}
	return verification, nil
}

func (s *DatabaseStore) GetVerification(verificationID string) (*models.Verification, error) {
	var verification models.Verification
	err := s.db.Where("verification_id = ?", verificationID).First(&verification).Error
	if err != nil {
		return nil, notFound(err, ErrVerificationNotFound)
	}
	return &verification, nil
}

func (s *DatabaseStore) GetPendingVerifications() ([]*models.Verification, error) {
	var pending []*models.Verification
	if err := s.db.Where("status = ?", "pending").Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

func (s *DatabaseStore) UpdateVerificationStatus(verificationID string, status string, adminNotes string) error {
	now := time.Now()
	result := s.db.Model(&models.Verification{}).
		Where("verification_id = ?", verificationID).
		Updates(map[string]interface{}{
			"status":      status,
			"admin_notes": adminNotes,
			"verified_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVerificationNotFound
	}
	return nil
}

func (s *DatabaseStore) SuspendAccount(role string, accountID string, reason string) error {
	switch role {
	case models.RoleDriver:
		result := s.db.Model(&models.Driver{}).Where("driver_id = ?", accountID).
			Update("is_suspended", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDriverNotFound
		}
		return nil
	case models.RoleCustomer:
		result := s.db.Model(&models.Customer{}).Where("customer_id = ?", accountID).
			Update("is_suspended", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCustomerNotFound
		}
		return nil
	}
	return fmt.Errorf("unknown role: %s", role)
}

func (s *DatabaseStore) ReactivateAccount(role string, accountID string) error {
	switch role {
	case models.RoleDriver:
		result := s.db.Model(&models.Driver{}).Where("driver_id = ?", accountID).
			Update("is_suspended", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDriverNotFound
		}
		return nil
	case models.RoleCustomer:
		result := s.db.Model(&models.Customer{}).Where("customer_id = ?", accountID).
			Update("is_suspended", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCustomerNotFound
		}
		return nil
	}
	return fmt.Errorf("unknown role: %s", role)
}
