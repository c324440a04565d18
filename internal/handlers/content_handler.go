package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/content"
	"github.com/safeloop/moderation-backend/internal/dto"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/identity"
)

type ContentHandler struct {
	content *content.Service
}

func NewContentHandler(svc *content.Service) *ContentHandler {
	return &ContentHandler{content: svc}
}

type createContentRequest struct {
	Text string `json:"text"`
}

func (h *ContentHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req createContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.content.CreatePost(c.Context(), &userID, req.Text)
	if err != nil {
		return contentError(c, err, "Failed to create post")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ContentHandler) CreateReply(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	parentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid post ID",
		})
	}

	var req createContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.content.CreateReply(c.Context(), &userID, parentID, req.Text)
	if err != nil {
		return contentError(c, err, "Failed to create reply")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ContentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid post ID",
		})
	}

	item, err := h.content.Get(c.Context(), id)
	if err != nil {
		if faults.Classify(err) == faults.KindInput {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Content not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch content",
		})
	}
	return c.JSON(item)
}

func (h *ContentHandler) Like(c *fiber.Ctx) error {
	return h.likeAction(c, h.content.Like)
}

func (h *ContentHandler) Unlike(c *fiber.Ctx) error {
	return h.likeAction(c, h.content.Unlike)
}

func (h *ContentHandler) likeAction(c *fiber.Ctx, fn func(ctx context.Context, userID, contentID uuid.UUID) error) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	contentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid post ID",
		})
	}

	if err := fn(c.Context(), userID, contentID); err != nil {
		return contentError(c, err, "Failed to update like")
	}
	return c.JSON(fiber.Map{"ok": true})
}

type recordMinutesRequest struct {
	Minutes int `json:"minutes"`
}

func (h *ContentHandler) RecordMinutes(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	teamID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid team ID",
		})
	}

	var req recordMinutesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.content.RecordMinutes(c.Context(), teamID, userID, req.Minutes); err != nil {
		return contentError(c, err, "Failed to record minutes")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func contentError(c *fiber.Ctx, err error, fallback string) error {
	var fe *faults.Error
	if errors.As(err, &fe) && fe.Kind == faults.KindInput {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}
