package store

import (
	"context"
	"errors"
	"time"

	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LastAction returns the recorded last attempt for the actor and class.
func (s *Store) LastAction(ctx context.Context, actorID, actionClass string) (time.Time, bool, error) {
	var rec models.RateLimitRecord
	err := s.db.WithContext(ctx).
		Where("actor_id = ? AND action_class = ?", actorID, actionClass).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return rec.LastActionAt, true, nil
}

// Touch upserts the last-action timestamp unconditionally.
func (s *Store) Touch(ctx context.Context, actorID, actionClass string, at time.Time) error {
	rec := models.RateLimitRecord{
		ActorID:      actorID,
		ActionClass:  actionClass,
		LastActionAt: at,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}, {Name: "action_class"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_action_at"}),
	}).Create(&rec).Error
}
