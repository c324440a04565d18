package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/models"
	"github.com/safeloop/moderation-backend/internal/toxicity"
	"gorm.io/gorm"
)

// memStore keeps content, reports and audit rows in maps and applies patches
// the way the real store does: field overwrites on the current row.
type memStore struct {
	content map[uuid.UUID]*models.ContentItem
	reports map[uuid.UUID]*models.Report
	audit   []models.AuditLogEntry

	patchErr error
	auditErr error
}

func newMemStore() *memStore {
	return &memStore{
		content: make(map[uuid.UUID]*models.ContentItem),
		reports: make(map[uuid.UUID]*models.Report),
	}
}

func (m *memStore) GetContent(_ context.Context, id uuid.UUID) (*models.ContentItem, error) {
	item, ok := m.content[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *memStore) PatchContent(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if m.patchErr != nil {
		return m.patchErr
	}
	item, ok := m.content[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "toxicity_score":
			item.ToxicityScore = v.(float64)
		case "toxicity_reason":
			item.ToxicityReason = v.(string)
		case "flagged":
			item.Flagged = v.(bool)
		case "hidden":
			item.Hidden = v.(bool)
		case "review_status":
			item.ReviewStatus = v.(string)
		}
	}
	return nil
}

func (m *memStore) DeleteContent(_ context.Context, id uuid.UUID) error {
	delete(m.content, id)
	return nil
}

func (m *memStore) CreateReport(_ context.Context, report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	copied := *report
	m.reports[report.ID] = &copied
	return nil
}

func (m *memStore) GetReport(_ context.Context, id uuid.UUID) (*models.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memStore) ListOpenReports(_ context.Context, limit int) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if r.Status == models.ReportOpen {
			out = append(out, *r)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) CloseReport(_ context.Context, id uuid.UUID, status, autoAction string) error {
	r, ok := m.reports[id]
	if !ok || r.Status != models.ReportOpen {
		return nil
	}
	r.Status = status
	r.AutoAction = autoAction
	return nil
}

func (m *memStore) AppendAudit(_ context.Context, entry *models.AuditLogEntry) error {
	if m.auditErr != nil {
		return m.auditErr
	}
	m.audit = append(m.audit, *entry)
	return nil
}

type stubAnalyzer struct{ verdict toxicity.Verdict }

func (s stubAnalyzer) Analyze(context.Context, string) toxicity.Verdict { return s.verdict }

type stubGater struct {
	suppress bool
	err      error
}

func (s stubGater) Gate(context.Context, string, string) (bool, error) {
	return s.suppress, s.err
}

type stubSettings struct{ block float64 }

func (s stubSettings) BlockThreshold() float64 { return s.block }

func seedContent(store *memStore, hidden bool, status string) *models.ContentItem {
	author := uuid.New()
	item := &models.ContentItem{
		ID:           uuid.New(),
		AuthorID:     &author,
		Kind:         models.ContentKindPost,
		Text:         "something",
		Hidden:       hidden,
		ReviewStatus: status,
	}
	store.content[item.ID] = item
	return item
}

func TestHandleContentCreatedVerdicts(t *testing.T) {
	tests := []struct {
		name       string
		verdict    toxicity.Verdict
		suppress   bool
		wantHidden bool
		wantStatus string
	}{
		{
			name:       "clean content stays visible",
			verdict:    toxicity.Verdict{Score: 0.1, Reason: "scored"},
			wantHidden: false,
			wantStatus: models.ReviewOpen,
		},
		{
			name:       "flagged content stays visible",
			verdict:    toxicity.Verdict{Flagged: true, Score: 0.7, Reason: "scored"},
			wantHidden: false,
			wantStatus: models.ReviewOpen,
		},
		{
			name:       "blocked content is hidden pending review",
			verdict:    toxicity.Verdict{Blocked: true, Flagged: true, Score: 0.9, Reason: "scored"},
			wantHidden: true,
			wantStatus: models.ReviewPending,
		},
		{
			name:       "rate-limited content is hidden",
			verdict:    toxicity.Verdict{Score: 0.1, Reason: "scored"},
			suppress:   true,
			wantHidden: true,
			wantStatus: models.ReviewRateLimited,
		},
		{
			name:       "blocked wins over rate-limited",
			verdict:    toxicity.Verdict{Blocked: true, Flagged: true, Score: 0.9, Reason: "scored"},
			suppress:   true,
			wantHidden: true,
			wantStatus: models.ReviewPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			item := seedContent(store, false, models.ReviewOpen)

			p := NewPipeline(store, stubAnalyzer{tt.verdict}, stubGater{suppress: tt.suppress}, stubSettings{0.8}, 100)
			err := p.HandleContentCreated(context.Background(), events.ContentCreated{
				ContentID: item.ID,
				AuthorID:  item.AuthorID,
				ItemKind:  item.Kind,
			})
			if err != nil {
				t.Fatalf("HandleContentCreated: %v", err)
			}

			got := store.content[item.ID]
			if got.Hidden != tt.wantHidden {
				t.Errorf("hidden = %v, want %v", got.Hidden, tt.wantHidden)
			}
			if got.ReviewStatus != tt.wantStatus {
				t.Errorf("review_status = %q, want %q", got.ReviewStatus, tt.wantStatus)
			}
			if got.ToxicityScore != tt.verdict.Score {
				t.Errorf("toxicity_score = %v, want %v", got.ToxicityScore, tt.verdict.Score)
			}
		})
	}
}

func TestHandleContentCreatedNeverUnhides(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, true, models.ReviewResolved)

	p := NewPipeline(store, stubAnalyzer{toxicity.Verdict{Score: 0.1, Reason: "scored"}}, stubGater{}, stubSettings{0.8}, 100)
	if err := p.HandleContentCreated(context.Background(), events.ContentCreated{ContentID: item.ID, AuthorID: item.AuthorID}); err != nil {
		t.Fatalf("HandleContentCreated: %v", err)
	}

	if !store.content[item.ID].Hidden {
		t.Error("a clean redelivery must not unhide already-hidden content")
	}
}

func TestHandleContentCreatedGateFailsOpen(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, false, models.ReviewOpen)

	gater := stubGater{suppress: false, err: errors.New("rate-limit store down")}
	p := NewPipeline(store, stubAnalyzer{toxicity.Verdict{Score: 0.1, Reason: "scored"}}, gater, stubSettings{0.8}, 100)
	if err := p.HandleContentCreated(context.Background(), events.ContentCreated{ContentID: item.ID, AuthorID: item.AuthorID}); err != nil {
		t.Fatalf("a degraded gate must not fail the handler: %v", err)
	}
	if store.content[item.ID].Hidden {
		t.Error("content must stay visible when the gate is degraded")
	}
}

func TestHandleContentCreatedMissingContent(t *testing.T) {
	store := newMemStore()
	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)
	if err := p.HandleContentCreated(context.Background(), events.ContentCreated{ContentID: uuid.New()}); err != nil {
		t.Fatalf("deleted content should be a no-op, got %v", err)
	}
}

func TestFileReport(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, false, models.ReviewOpen)
	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)

	_, err := p.FileReport(context.Background(), item.ID, uuid.New(), "  ")
	if faults.Classify(err) != faults.KindInput {
		t.Fatalf("blank reason should be an input error, got %v", err)
	}

	report, err := p.FileReport(context.Background(), item.ID, uuid.New(), "spam")
	if err != nil {
		t.Fatalf("FileReport: %v", err)
	}
	if report.Status != models.ReportOpen {
		t.Errorf("new report status = %q, want open", report.Status)
	}
}

func TestHandleReportFiledResolvesOrphans(t *testing.T) {
	store := newMemStore()
	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)

	report := &models.Report{ID: uuid.New(), PostID: uuid.New(), Status: models.ReportOpen}
	store.reports[report.ID] = report

	if err := p.HandleReportFiled(context.Background(), events.ReportFiled{ReportID: report.ID, PostID: report.PostID}); err != nil {
		t.Fatalf("HandleReportFiled: %v", err)
	}

	got := store.reports[report.ID]
	if got.Status != models.ReportResolved || got.AutoAction != "orphaned" {
		t.Errorf("orphan report = %q/%q, want resolved/orphaned", got.Status, got.AutoAction)
	}
}

func TestHandleReportFiledLeavesValidReportsOpen(t *testing.T) {
	store := newMemStore()
	item := seedContent(store, false, models.ReviewOpen)
	p := NewPipeline(store, stubAnalyzer{}, stubGater{}, stubSettings{0.8}, 100)

	report := &models.Report{ID: uuid.New(), PostID: item.ID, Status: models.ReportOpen}
	store.reports[report.ID] = report

	if err := p.HandleReportFiled(context.Background(), events.ReportFiled{ReportID: report.ID, PostID: item.ID}); err != nil {
		t.Fatalf("HandleReportFiled: %v", err)
	}
	if store.reports[report.ID].Status != models.ReportOpen {
		t.Error("report against live content must stay open")
	}
}
