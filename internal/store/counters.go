package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/gorm"
)

// IncrementLikes applies an atomic likes_count delta, floored at zero.
func (s *Store) IncrementLikes(ctx context.Context, contentID uuid.UUID, delta int) error {
	return s.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("id = ?", contentID).
		Update("likes_count", gorm.Expr("GREATEST(likes_count + ?, 0)", delta)).Error
}

// IncrementReplies applies an atomic replies_count delta, floored at zero.
func (s *Store) IncrementReplies(ctx context.Context, contentID uuid.UUID, delta int) error {
	return s.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("id = ?", contentID).
		Update("replies_count", gorm.Expr("GREATEST(replies_count + ?, 0)", delta)).Error
}

// RecomputeTeamMinutes overwrites the team total with the sum of member
// minutes. O(members) per call, but immune to lost-increment drift.
func (s *Store) RecomputeTeamMinutes(ctx context.Context, teamID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("id = ?", teamID).
		Update("total_minutes", gorm.Expr(
			"(SELECT COALESCE(SUM(minutes), 0) FROM team_members WHERE team_id = ?)", teamID,
		)).Error
}

// ActiveTeamIDs lists teams included in the periodic self-heal sweep.
func (s *Store) ActiveTeamIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}
