package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Human reviewer actions.
const (
	ActDismiss   = "dismiss"
	ActHide      = "hide"
	ActApprove   = "approve"
	ActUnhide    = "unhide"
	ActDelete    = "delete"
	ActFlag      = "flag"
	ActClearFlag = "clear_flag"
)

// HumanAction is one reviewer decision on a content item and, optionally,
// the report that prompted it.
type HumanAction struct {
	Type     string
	PostID   uuid.UUID
	ReportID *uuid.UUID
	AdminUID uuid.UUID
	Note     string
}

// Apply executes a reviewer action. The audit append happens whatever the
// outcome of the primary mutation; an audit failure is logged, never
// surfaced.
func (p *Pipeline) Apply(ctx context.Context, a HumanAction) error {
	if a.PostID == uuid.Nil && a.ReportID != nil {
		report, err := p.store.GetReport(ctx, *a.ReportID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return faults.Newf(faults.KindInput, "report not found")
			}
			return faults.New(faults.KindDependency, err)
		}
		a.PostID = report.PostID
	}

	var primaryErr error
	switch a.Type {
	case ActDismiss:
		if a.ReportID == nil {
			primaryErr = faults.Newf(faults.KindInput, "dismiss requires a report")
		} else {
			primaryErr = p.store.CloseReport(ctx, *a.ReportID, models.ReportDismissed, "")
		}
	case ActHide:
		primaryErr = p.store.PatchContent(ctx, a.PostID, map[string]interface{}{
			"hidden":        true,
			"review_status": models.ReviewResolved,
		})
		p.closeLinkedReport(ctx, a, "hidden")
	case ActApprove:
		primaryErr = p.store.PatchContent(ctx, a.PostID, map[string]interface{}{
			"hidden":        false,
			"review_status": models.ReviewApproved,
		})
		p.closeLinkedReport(ctx, a, "approved")
	case ActUnhide:
		primaryErr = p.store.PatchContent(ctx, a.PostID, map[string]interface{}{
			"hidden": false,
		})
	case ActDelete:
		primaryErr = p.store.DeleteContent(ctx, a.PostID)
		p.closeLinkedReport(ctx, a, "deleted")
	case ActFlag:
		primaryErr = p.store.PatchContent(ctx, a.PostID, map[string]interface{}{
			"flagged": true,
		})
	case ActClearFlag:
		primaryErr = p.store.PatchContent(ctx, a.PostID, map[string]interface{}{
			"flagged": false,
		})
	default:
		return faults.Newf(faults.KindInput, "unknown action %q", a.Type)
	}

	p.audit(ctx, a.Type, a.PostID, a.ReportID, a.AdminUID, map[string]interface{}{"note": a.Note})

	if primaryErr != nil {
		var fe *faults.Error
		if errors.As(primaryErr, &fe) {
			return primaryErr
		}
		return faults.New(faults.KindDependency, primaryErr)
	}
	return nil
}

func (p *Pipeline) closeLinkedReport(ctx context.Context, a HumanAction, autoAction string) {
	if a.ReportID == nil {
		return
	}
	if err := p.store.CloseReport(ctx, *a.ReportID, models.ReportResolved, autoAction); err != nil {
		slog.Error("report close failed", "report_id", *a.ReportID, "error", err)
	}
}

// audit appends one trail entry, best effort.
func (p *Pipeline) audit(ctx context.Context, action string, postID uuid.UUID, reportID *uuid.UUID, adminUID uuid.UUID, metadata map[string]interface{}) {
	entry := &models.AuditLogEntry{
		Action:   action,
		PostID:   postID,
		ReportID: reportID,
		AdminUID: adminUID,
	}
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(b)
		}
	}
	if err := p.store.AppendAudit(ctx, entry); err != nil {
		slog.Error("audit append failed", "action", action, "post_id", postID, "error", err)
	}
}
