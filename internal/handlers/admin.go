package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/seatlink/seatlink-backend/internal/models"
	"github.com/seatlink/seatlink-backend/internal/services"
	"github.com/seatlink/seatlink-backend/internal/storage"
)

// AdminHandler handles admin operations
type AdminHandler struct {
	store    storage.Store
	notifier services.Notifier
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, notifier services.Notifier) *AdminHandler {
	return &AdminHandler{
		store:    store,
		notifier: notifier,
	}
}

// GetPendingVerifications gets all pending driver verifications
func (h *AdminHandler) GetPendingVerifications(c *fiber.Ctx) error {
	verifications, err := h.store.GetPendingVerifications()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch pending verifications",
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"verifications": verifications,
		"count":         len(verifications),
	})
}

// UpdateVerification approves or rejects a driver verification
func (h *AdminHandler) UpdateVerification(c *fiber.Ctx) error {
	verificationID := c.Params("verificationID")

	var req struct {
		Status     string `json:"status"` // "approved" or "rejected"
		AdminNotes string `json:"admin_notes"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Status != "approved" && req.Status != "rejected" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status must be 'approved' or 'rejected'",
		})
	}

	verification, err := h.store.GetVerification(verificationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Verification not found",
		})
	}

	err = h.store.UpdateVerificationStatus(verificationID, req.Status, req.AdminNotes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update verification",
		})
	}

	driver, err := h.store.GetDriverByID(verification.DriverID)
	if err != nil {
		log.Printf("Verification %s updated but driver %s not found", verificationID, verification.DriverID)
		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Verification %s successfully", req.Status),
		})
	}

	if req.Status == "approved" {
		driver.Verified = true
		if err := h.store.UpdateDriver(driver); err != nil {
			log.Printf("Failed to mark driver %s verified: %v", driver.DriverID, err)
		}
		log.Printf("Verification %s approved for %s (%s)", verificationID, driver.Name, driver.DriverID)
	} else {
		log.Printf("Verification %s rejected for %s (%s)", verificationID, driver.Name, driver.DriverID)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Verification %s successfully", req.Status),
		"verification": fiber.Map{
			"id":     verificationID,
			"status": req.Status,
		},
	})
}

// SuspendAccount suspends a customer or driver account
func (h *AdminHandler) SuspendAccount(c *fiber.Ctx) error {
	var req struct {
		Role      string `json:"role"`
		AccountID string `json:"account_id"`
		Reason    string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !models.ValidRole(req.Role) || req.AccountID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid role and account ID are required",
		})
	}

	if err := h.store.SuspendAccount(req.Role, req.AccountID, req.Reason); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	log.Printf("Account %s (%s) suspended: %s", req.AccountID, req.Role, req.Reason)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account suspended",
	})
}

// ReactivateAccount lifts a suspension
func (h *AdminHandler) ReactivateAccount(c *fiber.Ctx) error {
	var req struct {
		Role      string `json:"role"`
		AccountID string `json:"account_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !models.ValidRole(req.Role) || req.AccountID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid role and account ID are required",
		})
	}

	if err := h.store.ReactivateAccount(req.Role, req.AccountID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	log.Printf("Account %s (%s) reactivated", req.AccountID, req.Role)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account reactivated",
	})
}
