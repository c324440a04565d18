package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/safeloop/moderation-backend/internal/dto"
	"github.com/safeloop/moderation-backend/internal/identity"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DevicesHandler manages a recipient's push targets and notification
// preferences.
type DevicesHandler struct {
	db *gorm.DB
}

func NewDevicesHandler(db *gorm.DB) *DevicesHandler {
	return &DevicesHandler{db: db}
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (h *DevicesHandler) Register(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req registerDeviceRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "token is required",
		})
	}

	device := models.DeviceToken{
		RecipientUID: userID,
		Token:        req.Token,
		Platform:     req.Platform,
	}
	err = h.db.WithContext(c.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipient_uid"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform"}),
	}).Create(&device).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to register device",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

func (h *DevicesHandler) Unregister(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	token := c.Params("token")
	if err := h.db.WithContext(c.Context()).
		Where("recipient_uid = ? AND token = ?", userID, token).
		Delete(&models.DeviceToken{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to remove device",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}

type updatePrefsRequest struct {
	Disabled []string `json:"disabled"`
}

func (h *DevicesHandler) UpdatePrefs(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req updatePrefsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Disabled == nil {
		req.Disabled = []string{}
	}

	encoded, err := json.Marshal(req.Disabled)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid disabled list",
		})
	}

	prefs := models.NotificationPrefs{
		RecipientUID: userID,
		Disabled:     datatypes.JSON(encoded),
	}
	err = h.db.WithContext(c.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipient_uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"disabled", "updated_at"}),
	}).Create(&prefs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update preferences",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}
