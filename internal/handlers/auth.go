package handlers

import (
	"errors"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/services"
)

var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// AuthHandler exposes the OTP wire contract and the account resolution
// endpoints (login / register per role).
type AuthHandler struct {
	verification *services.VerificationService
	accounts     *services.AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(verification *services.VerificationService, accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{
		verification: verification,
		accounts:     accounts,
	}
}

// SendOTP handles POST /otp/send
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req struct {
		Mobile   string `json:"mobile"`
		UserType string `json:"userType"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	mobile := models.NormalizeMobile(req.Mobile)
	if !mobilePattern.MatchString(mobile) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid 10-digit mobile number is required",
		})
	}
	if !models.ValidRole(req.UserType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userType must be 'customer' or 'driver'",
		})
	}

	result, err := h.verification.SendOTP(mobile, req.UserType)
	if err != nil {
		return rateLimitedOrInternal(c, err)
	}

	response := fiber.Map{
		"success":   true,
		"expiresAt": result.ExpiresAt.Format(time.RFC3339),
	}
	if result.Code != "" {
		// Development mode only: the code is echoed for manual testing
		response["otp"] = result.Code
	}
	return c.JSON(response)
}

// VerifyOTP handles POST /otp/verify
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Mobile   string `json:"mobile"`
		OTP      string `json:"otp"`
		UserType string `json:"userType"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	mobile := models.NormalizeMobile(req.Mobile)
	if !mobilePattern.MatchString(mobile) || len(req.OTP) != 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid mobile number and 6-digit code are required",
		})
	}
	if !models.ValidRole(req.UserType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userType must be 'customer' or 'driver'",
		})
	}

	if err := h.verification.VerifyOTP(mobile, req.UserType, req.OTP); err != nil {
		var rateLimited *services.RateLimitedError
		if errors.As(err, &rateLimited) {
			return writeRateLimited(c, rateLimited)
		}

		response := fiber.Map{"error": err.Error()}
		var mismatch *services.CodeMismatchError
		if errors.As(err, &mismatch) {
			response["remainingAttempts"] = mismatch.RemainingAttempts
		}
		return c.Status(fiber.StatusBadRequest).JSON(response)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// LoginCustomer handles POST /api/customers/login
func (h *AuthHandler) LoginCustomer(c *fiber.Ctx) error {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	customer, token, err := h.accounts.LoginCustomer(req.Mobile)
	if err != nil {
		return writeAccountError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"token":    token,
		"customer": customer,
	})
}

// RegisterCustomer handles POST /api/customers/register
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var reg models.CustomerRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if reg.Name == "" || reg.Mobile == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and mobile are required",
		})
	}

	customer, token, err := h.accounts.RegisterCustomer(&reg)
	if err != nil {
		return writeAccountError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"token":    token,
		"customer": customer,
	})
}

// LoginDriver handles POST /api/drivers/login
func (h *AuthHandler) LoginDriver(c *fiber.Ctx) error {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	driver, token, err := h.accounts.LoginDriver(req.Mobile)
	if err != nil {
		return writeAccountError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"driver":  driver,
	})
}

// RegisterDriver handles POST /api/drivers/register
func (h *AuthHandler) RegisterDriver(c *fiber.Ctx) error {
	var reg models.DriverRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if reg.Name == "" || reg.Mobile == "" || reg.VehicleNo == "" || reg.LicenseNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, mobile, license and vehicle number are required",
		})
	}

	driver, token, err := h.accounts.RegisterDriver(&reg)
	if err != nil {
		return writeAccountError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"driver":  driver,
	})
}

func writeRateLimited(c *fiber.Ctx, err *services.RateLimitedError) error {
	response := fiber.Map{"error": err.Error()}
	if err.LockedUntil != nil {
		response["lockedUntil"] = err.LockedUntil.Format(time.RFC3339)
	}
	return c.Status(fiber.StatusTooManyRequests).JSON(response)
}

func rateLimitedOrInternal(c *fiber.Ctx, err error) error {
	var rateLimited *services.RateLimitedError
	if errors.As(err, &rateLimited) {
		return writeRateLimited(c, rateLimited)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong, please try again",
	})
}

func writeAccountError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAccountNotFound):
		// Branch signal for the identity flow: move to registration
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ACCOUNT_NOT_FOUND",
		})
	case errors.Is(err, services.ErrAccountConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ACCOUNT_CONFLICT",
		})
	case errors.Is(err, services.ErrMobileNotVerified):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "MOBILE_NOT_VERIFIED",
		})
	case errors.Is(err, services.ErrAccountSuspended):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ACCOUNT_SUSPENDED",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong, please try again",
	})
}
