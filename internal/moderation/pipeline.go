// Package moderation orchestrates toxicity analysis and rate limiting into
// persisted verdicts, drives the report lifecycle, and owns the scheduled
// recheck job. All verdict writes are field overwrites derived from current
// state, so redelivered events converge instead of double-penalizing.
package moderation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/models"
	"github.com/safeloop/moderation-backend/internal/toxicity"
	"gorm.io/gorm"
)

// Analyzer scores text for harmful content.
type Analyzer interface {
	Analyze(ctx context.Context, text string) toxicity.Verdict
}

// Gater consults and records the per-actor rate limit in one call.
type Gater interface {
	Gate(ctx context.Context, actorID, actionClass string) (bool, error)
}

// Settings supplies the block threshold used by the recheck job.
type Settings interface {
	BlockThreshold() float64
}

// Store is the persistence surface the state machine needs.
type Store interface {
	GetContent(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	PatchContent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListOpenReports(ctx context.Context, limit int) ([]models.Report, error)
	CloseReport(ctx context.Context, id uuid.UUID, status, autoAction string) error
	AppendAudit(ctx context.Context, entry *models.AuditLogEntry) error
}

type Pipeline struct {
	store    Store
	analyzer Analyzer
	gater    Gater
	settings Settings
	pageSize int
}

func NewPipeline(store Store, analyzer Analyzer, gater Gater, settings Settings, recheckPageSize int) *Pipeline {
	if recheckPageSize <= 0 {
		recheckPageSize = 100
	}
	return &Pipeline{
		store:    store,
		analyzer: analyzer,
		gater:    gater,
		settings: settings,
		pageSize: recheckPageSize,
	}
}

// Bind registers the pipeline's event handlers on the router.
func (p *Pipeline) Bind(r *events.Router) {
	r.On(events.KindContentCreated, func(ctx context.Context, ev events.Event) error {
		return p.HandleContentCreated(ctx, ev.(events.ContentCreated))
	})
	r.On(events.KindReportFiled, func(ctx context.Context, ev events.Event) error {
		return p.HandleReportFiled(ctx, ev.(events.ReportFiled))
	})
}

// HandleContentCreated runs the create-time verdict: rate-limit gate first,
// then analysis regardless of the gate's outcome, then one overwrite patch.
func (p *Pipeline) HandleContentCreated(ctx context.Context, ev events.ContentCreated) error {
	item, err := p.store.GetContent(ctx, ev.ContentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // deleted between commit and delivery
	}
	if err != nil {
		return faults.New(faults.KindDependency, err)
	}

	suppressed := false
	if item.AuthorID != nil {
		class := models.ActionPost
		if item.Kind == models.ContentKindReply {
			class = models.ActionReply
		}
		sup, gateErr := p.gater.Gate(ctx, item.AuthorID.String(), class)
		if gateErr != nil {
			// Fail open: a broken limiter must not block submissions.
			slog.Error("rate-limit gate degraded", "content_id", item.ID, "error", gateErr)
		}
		suppressed = sup
	}

	verdict := p.analyzer.Analyze(ctx, item.Text)

	reviewStatus := item.ReviewStatus
	if reviewStatus == "" {
		reviewStatus = models.ReviewOpen
	}
	if suppressed {
		reviewStatus = models.ReviewRateLimited
	}
	if verdict.Blocked {
		reviewStatus = models.ReviewPending
	}

	fields := map[string]interface{}{
		"toxicity_score":  verdict.Score,
		"toxicity_reason": verdict.Reason,
		"flagged":         verdict.Flagged,
		"hidden":          item.Hidden || suppressed || verdict.Blocked,
		"review_status":   reviewStatus,
	}
	if err := p.store.PatchContent(ctx, item.ID, fields); err != nil {
		return faults.New(faults.KindDependency, err)
	}
	return nil
}

// FileReport creates an open report for a content item.
func (p *Pipeline) FileReport(ctx context.Context, postID, reporterUID uuid.UUID, reason string) (*models.Report, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, faults.Newf(faults.KindInput, "reason is required")
	}
	report := &models.Report{
		PostID:      postID,
		ReporterUID: reporterUID,
		Reason:      reason,
		Status:      models.ReportOpen,
	}
	if err := p.store.CreateReport(ctx, report); err != nil {
		return nil, faults.New(faults.KindDependency, err)
	}
	return report, nil
}

// HandleReportFiled self-heals orphaned reports: a report whose target
// content is already gone is resolved immediately.
func (p *Pipeline) HandleReportFiled(ctx context.Context, ev events.ReportFiled) error {
	_, err := p.store.GetContent(ctx, ev.PostID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if closeErr := p.store.CloseReport(ctx, ev.ReportID, models.ReportResolved, "orphaned"); closeErr != nil {
			return faults.New(faults.KindData, closeErr)
		}
		return nil
	}
	if err != nil {
		return faults.New(faults.KindDependency, err)
	}
	return nil
}
