package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/gorm"
)

// GetInboxItem loads one inbox row.
func (s *Store) GetInboxItem(ctx context.Context, id uuid.UUID) (*models.InboxItem, error) {
	var item models.InboxItem
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DisabledTypes returns the recipient's opted-out inbox item types. A
// missing prefs row means nothing is disabled.
func (s *Store) DisabledTypes(ctx context.Context, recipientUID uuid.UUID) ([]string, error) {
	var prefs models.NotificationPrefs
	err := s.db.WithContext(ctx).Where("recipient_uid = ?", recipientUID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var disabled []string
	if len(prefs.Disabled) > 0 {
		if err := json.Unmarshal(prefs.Disabled, &disabled); err != nil {
			return nil, err
		}
	}
	return disabled, nil
}

// ListTokens returns all device tokens registered to the recipient.
func (s *Store) ListTokens(ctx context.Context, recipientUID uuid.UUID) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := s.db.WithContext(ctx).
		Where("recipient_uid = ?", recipientUID).
		Find(&tokens).Error
	return tokens, err
}

// DeleteTokens removes device tokens the gateway reported invalid.
func (s *Store) DeleteTokens(ctx context.Context, recipientUID uuid.UUID, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("recipient_uid = ? AND token IN ?", recipientUID, tokens).
		Delete(&models.DeviceToken{}).Error
}

// CountInbox returns the recipient's inbox size.
func (s *Store) CountInbox(ctx context.Context, recipientUID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.InboxItem{}).
		Where("recipient_uid = ?", recipientUID).
		Count(&count).Error
	return count, err
}

// DeleteOldestRead removes up to n of the recipient's oldest read items and
// returns how many went away.
func (s *Store) DeleteOldestRead(ctx context.Context, recipientUID uuid.UUID, n int) (int64, error) {
	return s.deleteOldest(ctx, recipientUID, n, true)
}

// DeleteOldest removes up to n of the recipient's oldest items regardless
// of read state (hard-cap enforcement).
func (s *Store) DeleteOldest(ctx context.Context, recipientUID uuid.UUID, n int) (int64, error) {
	return s.deleteOldest(ctx, recipientUID, n, false)
}

func (s *Store) deleteOldest(ctx context.Context, recipientUID uuid.UUID, n int, readOnly bool) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	sub := s.db.Model(&models.InboxItem{}).
		Select("id").
		Where("recipient_uid = ?", recipientUID).
		Order("created_at ASC").
		Limit(n)
	if readOnly {
		sub = sub.Where("read = ?", true)
	}
	result := s.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Delete(&models.InboxItem{})
	return result.RowsAffected, result.Error
}
