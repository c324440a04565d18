package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/models"
)

// CreateReport persists a new open report.
func (s *Store) CreateReport(ctx context.Context, report *models.Report) error {
	return s.db.WithContext(ctx).Create(report).Error
}

// GetReport loads one report.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ListOpenReports returns up to limit open reports, newest first.
func (s *Store) ListOpenReports(ctx context.Context, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ReportOpen).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	return reports, err
}

// ListReports returns reports filtered by optional status, newest first.
func (s *Store) ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error
	return reports, total, err
}

// CloseReport moves an open report to a terminal status. Terminal reports
// are never mutated: the WHERE clause makes a second close a no-op.
func (s *Store) CloseReport(ctx context.Context, id uuid.UUID, status, autoAction string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportOpen).
		Updates(map[string]interface{}{
			"status":      status,
			"auto_action": autoAction,
		})
	if result.Error == nil && result.RowsAffected == 0 {
		slog.Info("report already closed or missing", "report_id", id)
	}
	return result.Error
}

// AppendAudit writes one append-only audit row.
func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditLogEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}
