package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/safeloop/moderation-backend/internal/config"
	"github.com/safeloop/moderation-backend/internal/dto"
	"github.com/safeloop/moderation-backend/internal/events"
)

// EventsHandler ingests document-store lifecycle triggers delivered as
// webhooks and routes them through the pipeline. Delivery is at-least-once
// on the sender side; the envelope's event_id gives best-effort dedup.
type EventsHandler struct {
	cfg *config.Config
	bus *events.Router
}

func NewEventsHandler(cfg *config.Config, bus *events.Router) *EventsHandler {
	return &EventsHandler{cfg: cfg, bus: bus}
}

// Handle authenticates the sender by shared secret and dispatches the
// envelope. Handler-side dependency failures are absorbed by the router, so
// the sender never sees a retryable error for a degraded downstream.
func (h *EventsHandler) Handle(c *fiber.Ctx) error {
	if h.cfg.EventsSecret == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Event ingestion not configured",
		})
	}
	authHeader := c.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte("Bearer "+h.cfg.EventsSecret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var envelope dto.EventEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid event payload",
		})
	}

	ev, err := decodeEvent(envelope)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	if err := h.bus.DispatchDedup(c.Context(), envelope.EventID, ev); err != nil {
		slog.Error("event dispatch rejected", "type", envelope.Type, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Event rejected",
		})
	}

	slog.Info("event processed", "source", c.Params("source"), "type", envelope.Type)
	return c.JSON(fiber.Map{"received": true})
}

func decodeEvent(envelope dto.EventEnvelope) (events.Event, error) {
	switch events.Kind(envelope.Type) {
	case events.KindContentCreated:
		var p dto.ContentCreatedPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return events.ContentCreated{
			ContentID: p.ContentID,
			AuthorID:  p.AuthorID,
			ParentID:  p.ParentID,
			ItemKind:  p.Kind,
		}, nil
	case events.KindReportFiled:
		var p dto.ReportFiledPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return events.ReportFiled{ReportID: p.ReportID, PostID: p.PostID}, nil
	case events.KindLikeDelta:
		var p dto.LikeDeltaPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return events.LikeDelta{ContentID: p.ContentID, Delta: p.Delta}, nil
	case events.KindInboxCreated:
		var p dto.InboxCreatedPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return events.InboxCreated{InboxID: p.InboxID, RecipientUID: p.RecipientUID}, nil
	case events.KindParticipantMinutesChanged:
		var p dto.ParticipantMinutesPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return events.ParticipantMinutesChanged{TeamID: p.TeamID, UserID: p.UserID}, nil
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "unknown event type: "+envelope.Type)
}
