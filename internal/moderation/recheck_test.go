package moderation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/models"
)

func openReport(store *memStore, postID uuid.UUID) *models.Report {
	r := &models.Report{ID: uuid.New(), PostID: postID, Status: models.ReportOpen}
	store.reports[r.ID] = r
	return r
}

func TestRecheckHidesOverThreshold(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, false, models.ReviewOpen)
	item.ToxicityScore = 0.85
	report := openReport(store, item.ID)

	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)
	res, err := p.RecheckOpenReports(context.Background())
	if err != nil {
		t.Fatalf("RecheckOpenReports: %v", err)
	}

	if res.Checked != 1 || res.Hidden != 1 {
		t.Errorf("result = %+v, want checked 1 hidden 1", res)
	}
	if !store.content[item.ID].Hidden {
		t.Error("over-threshold target should be hidden")
	}
	got := store.reports[report.ID]
	if got.Status != models.ReportResolved || got.AutoAction != "auto_hidden" {
		t.Errorf("report = %q/%q, want resolved/auto_hidden", got.Status, got.AutoAction)
	}
	if len(store.audit) != 1 || store.audit[0].Action != "auto_hide" {
		t.Errorf("audit trail = %+v, want one auto_hide entry", store.audit)
	}
	if store.audit[0].AdminUID != uuid.Nil {
		t.Error("automated hide should be attributed to the zero admin")
	}
}

func TestRecheckHidesFlaggedVisible(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, false, models.ReviewOpen)
	item.Flagged = true
	item.ToxicityScore = 0.7
	openReport(store, item.ID)

	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)
	res, err := p.RecheckOpenReports(context.Background())
	if err != nil {
		t.Fatalf("RecheckOpenReports: %v", err)
	}
	if res.Hidden != 1 {
		t.Errorf("hidden = %d, want 1 (flagged and visible)", res.Hidden)
	}
}

func TestRecheckSkipsBelowThreshold(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, false, models.ReviewOpen)
	item.ToxicityScore = 0.3
	report := openReport(store, item.ID)

	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)
	res, err := p.RecheckOpenReports(context.Background())
	if err != nil {
		t.Fatalf("RecheckOpenReports: %v", err)
	}
	if res.Checked != 1 || res.Hidden != 0 {
		t.Errorf("result = %+v, want checked 1 hidden 0", res)
	}
	if store.reports[report.ID].Status != models.ReportOpen {
		t.Error("report against clean content should stay open for a human")
	}
}

func TestRecheckResolvesOrphans(t *testing.T) {
	store := newMemStore()
	report := openReport(store, uuid.New())

	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)
	res, err := p.RecheckOpenReports(context.Background())
	if err != nil {
		t.Fatalf("RecheckOpenReports: %v", err)
	}
	if res.Checked != 1 || res.Hidden != 0 {
		t.Errorf("result = %+v, want checked 1 hidden 0", res)
	}
	got := store.reports[report.ID]
	if got.Status != models.ReportResolved || got.AutoAction != "orphaned" {
		t.Errorf("report = %q/%q, want resolved/orphaned", got.Status, got.AutoAction)
	}
}

func TestRecheckIsIdempotent(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, false, models.ReviewOpen)
	item.ToxicityScore = 0.95
	openReport(store, item.ID)

	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)

	first, err := p.RecheckOpenReports(context.Background())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if first.Hidden != 1 {
		t.Fatalf("first pass hidden = %d, want 1", first.Hidden)
	}

	second, err := p.RecheckOpenReports(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.Checked != 0 || second.Hidden != 0 {
		t.Errorf("second pass = %+v, want nothing to do", second)
	}
}
