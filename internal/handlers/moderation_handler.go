package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/dto"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/identity"
	"github.com/safeloop/moderation-backend/internal/models"
	"github.com/safeloop/moderation-backend/internal/moderation"
	"github.com/safeloop/moderation-backend/internal/ratelimit"
	"github.com/safeloop/moderation-backend/internal/store"
	"github.com/safeloop/moderation-backend/internal/toxicity"
)

type ModerationHandler struct {
	analyzer *toxicity.Analyzer
	limiter  *ratelimit.Limiter
	pipeline *moderation.Pipeline
	bus      *events.Router
	store    *store.Store
}

func NewModerationHandler(analyzer *toxicity.Analyzer, limiter *ratelimit.Limiter, pipeline *moderation.Pipeline, bus *events.Router, st *store.Store) *ModerationHandler {
	return &ModerationHandler{
		analyzer: analyzer,
		limiter:  limiter,
		pipeline: pipeline,
		bus:      bus,
		store:    st,
	}
}

// AnalyzeText scores a text string without persisting anything.
func (h *ModerationHandler) AnalyzeText(c *fiber.Ctx) error {
	var req dto.AnalyzeTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	verdict := h.analyzer.Analyze(c.Context(), req.Text)
	return c.JSON(dto.AnalyzeTextResponse{
		OK:      !verdict.Blocked,
		Blocked: verdict.Blocked,
		Flagged: verdict.Flagged,
		Score:   verdict.Score,
		Reason:  verdict.Reason,
	})
}

// ReportAbuse files a report, subject to the per-user report window.
func (h *ModerationHandler) ReportAbuse(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ReportAbuseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.PostID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "postId is required",
		})
	}

	suppressed, _ := h.limiter.Gate(c.Context(), userID.String(), models.ActionReport)
	if suppressed {
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
			Error: true, Message: "Too many reports, slow down",
		})
	}

	report, err := h.pipeline.FileReport(c.Context(), req.PostID, userID, req.Reason)
	if err != nil {
		if faults.Classify(err) == faults.KindInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to file report",
		})
	}

	_ = h.bus.Dispatch(c.Context(), events.ReportFiled{ReportID: report.ID, PostID: report.PostID})

	return c.JSON(fiber.Map{"ok": true})
}

// Recheck runs the open-report sweep on demand (admin only).
func (h *ModerationHandler) Recheck(c *fiber.Ctx) error {
	res, err := h.pipeline.RecheckOpenReports(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Recheck failed",
		})
	}
	return c.JSON(dto.RecheckResponse{OK: true, Checked: res.Checked, Hidden: res.Hidden})
}

// ListReports pages reports for the admin panel.
func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit > 100 {
		limit = 100
	}

	reports, total, err := h.store.ListReports(c.Context(), status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// ActionReport applies one reviewer decision to a report's target.
func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	// Admin-token callers carry no JWT; audit those as the zero UUID.
	adminUID, _ := identity.UserID(c)

	err = h.pipeline.Apply(c.Context(), moderation.HumanAction{
		Type:     req.Action,
		ReportID: &reportID,
		AdminUID: adminUID,
		Note:     req.Note,
	})
	if err != nil {
		var fe *faults.Error
		if errors.As(err, &fe) && fe.Kind == faults.KindInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to apply action",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}
