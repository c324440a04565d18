package moderation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/gorm"
)

// RecheckResult summarizes one recheck pass.
type RecheckResult struct {
	Checked int `json:"checked"`
	Hidden  int `json:"hidden"`
}

// RecheckOpenReports re-evaluates open reports against current verdicts:
// targets past the block threshold, or flagged and still visible, are
// hidden and their reports resolved. Reports whose target is gone are
// resolved as orphaned. Idempotent (a pass over unchanged state hides
// nothing) and safe to run concurrently with itself, since each iteration
// re-reads current state.
func (p *Pipeline) RecheckOpenReports(ctx context.Context) (RecheckResult, error) {
	var res RecheckResult

	reports, err := p.store.ListOpenReports(ctx, p.pageSize)
	if err != nil {
		return res, faults.New(faults.KindDependency, err)
	}

	blockAt := p.settings.BlockThreshold()
	for _, report := range reports {
		res.Checked++

		item, err := p.store.GetContent(ctx, report.PostID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if closeErr := p.store.CloseReport(ctx, report.ID, models.ReportResolved, "orphaned"); closeErr != nil {
				return res, faults.New(faults.KindDependency, closeErr)
			}
			continue
		}
		if err != nil {
			return res, faults.New(faults.KindDependency, err)
		}

		if item.ToxicityScore >= blockAt || (item.Flagged && !item.Hidden) {
			if err := p.store.PatchContent(ctx, item.ID, map[string]interface{}{"hidden": true}); err != nil {
				return res, faults.New(faults.KindDependency, err)
			}
			if err := p.store.CloseReport(ctx, report.ID, models.ReportResolved, "auto_hidden"); err != nil {
				return res, faults.New(faults.KindDependency, err)
			}
			reportID := report.ID
			p.audit(ctx, "auto_hide", item.ID, &reportID, uuid.Nil, map[string]interface{}{
				"score":   item.ToxicityScore,
				"flagged": item.Flagged,
			})
			res.Hidden++
		}
	}
	return res, nil
}
