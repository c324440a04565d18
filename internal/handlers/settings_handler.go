package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safeloop/moderation-backend/internal/dto"
	"github.com/safeloop/moderation-backend/internal/settings"
)

// SettingsHandler manages runtime pipeline overrides (thresholds, windows,
// deny-list terms). Admin only.
type SettingsHandler struct {
	settings *settings.Service
}

func NewSettingsHandler(svc *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: svc}
}

func (h *SettingsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"overrides": h.settings.All()})
}

type setSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

func (h *SettingsHandler) Set(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Setting key is required",
		})
	}

	var req setSettingRequest
	if err := c.BodyParser(&req); err != nil || req.Value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Type == "" {
		req.Type = "string"
	}

	if err := h.settings.Set(c.Context(), key, req.Value, req.Type); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save setting",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *SettingsHandler) Delete(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.settings.Delete(c.Context(), key); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete setting",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}
