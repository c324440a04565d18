package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/models"
)

// GetContent loads one content item. Soft-deleted rows are not returned.
func (s *Store) GetContent(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// PatchContent overwrites the given fields on a content item. Verdict
// writes go through here: overwrites keyed by derived values keep the
// handler idempotent under redelivery.
func (s *Store) PatchContent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// DeleteContent soft-deletes a content item (explicit reviewer action only).
func (s *Store) DeleteContent(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.ContentItem{}, "id = ?", id).Error
}
