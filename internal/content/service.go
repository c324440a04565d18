// Package content owns the user-facing write surface: posts, replies,
// likes, team minutes. Every committed mutation dispatches a pipeline
// event; moderation, counters and push all react to those events rather
// than being called inline.
package content

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxTextLen = 5000

type Service struct {
	db  *gorm.DB
	bus *events.Router
}

func NewService(db *gorm.DB, bus *events.Router) *Service {
	return &Service{db: db, bus: bus}
}

// CreatePost commits a new post and triggers the moderation pipeline. The
// row is visible immediately; the verdict patch follows asynchronously from
// the ContentCreated handler (suppressed or blocked content gets hidden,
// never rejected, because the create has already committed).
func (s *Service) CreatePost(ctx context.Context, authorID *uuid.UUID, text string) (*models.ContentItem, error) {
	return s.create(ctx, authorID, nil, models.ContentKindPost, text)
}

// CreateReply commits a reply under a parent post and notifies the parent
// author's inbox.
func (s *Service) CreateReply(ctx context.Context, authorID *uuid.UUID, parentID uuid.UUID, text string) (*models.ContentItem, error) {
	var parent models.ContentItem
	if err := s.db.WithContext(ctx).Where("id = ?", parentID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.Newf(faults.KindInput, "parent post not found")
		}
		return nil, faults.New(faults.KindDependency, err)
	}

	reply, err := s.create(ctx, authorID, &parentID, models.ContentKindReply, text)
	if err != nil {
		return nil, err
	}

	if parent.AuthorID != nil && (authorID == nil || *parent.AuthorID != *authorID) {
		s.notify(ctx, *parent.AuthorID, "reply", "New reply", snippet(text), map[string]string{
			"post_id":  parent.ID.String(),
			"reply_id": reply.ID.String(),
		})
	}
	return reply, nil
}

func (s *Service) create(ctx context.Context, authorID, parentID *uuid.UUID, kind, text string) (*models.ContentItem, error) {
	if text == "" || len(text) > maxTextLen {
		return nil, faults.Newf(faults.KindInput, "text must be 1-%d characters", maxTextLen)
	}

	item := &models.ContentItem{
		AuthorID:     authorID,
		ParentID:     parentID,
		Kind:         kind,
		Text:         text,
		ReviewStatus: models.ReviewOpen,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, faults.New(faults.KindDependency, err)
	}

	s.dispatch(ctx, events.ContentCreated{
		ContentID: item.ID,
		AuthorID:  authorID,
		ParentID:  parentID,
		ItemKind:  kind,
	})
	return item, nil
}

// Like records a like; a repeat like by the same user is a no-op and emits
// no delta, so the counter cannot drift from double taps.
func (s *Service) Like(ctx context.Context, userID, contentID uuid.UUID) error {
	var item models.ContentItem
	if err := s.db.WithContext(ctx).Where("id = ?", contentID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return faults.Newf(faults.KindInput, "content not found")
		}
		return faults.New(faults.KindDependency, err)
	}

	var existing models.ContentLike
	err := s.db.WithContext(ctx).
		Where("content_id = ? AND user_id = ?", contentID, userID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return faults.New(faults.KindDependency, err)
	}

	like := models.ContentLike{ContentID: contentID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
		return faults.New(faults.KindDependency, err)
	}

	s.dispatch(ctx, events.LikeDelta{ContentID: contentID, Delta: 1})
	return nil
}

// Unlike removes a like if present and emits a -1 delta.
func (s *Service) Unlike(ctx context.Context, userID, contentID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("content_id = ? AND user_id = ?", contentID, userID).
		Delete(&models.ContentLike{})
	if result.Error != nil {
		return faults.New(faults.KindDependency, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil
	}

	s.dispatch(ctx, events.LikeDelta{ContentID: contentID, Delta: -1})
	return nil
}

// Get loads one content item.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.Newf(faults.KindInput, "content not found")
		}
		return nil, faults.New(faults.KindDependency, err)
	}
	return &item, nil
}

// RecordMinutes overwrites a member's accumulated minutes and triggers the
// team recompute.
func (s *Service) RecordMinutes(ctx context.Context, teamID, userID uuid.UUID, minutes int) error {
	if minutes < 0 {
		return faults.Newf(faults.KindInput, "minutes must be non-negative")
	}

	result := s.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("minutes", minutes)
	if result.Error != nil {
		return faults.New(faults.KindDependency, result.Error)
	}
	if result.RowsAffected == 0 {
		member := models.TeamMember{TeamID: teamID, UserID: userID, Minutes: minutes}
		if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
			return faults.New(faults.KindDependency, err)
		}
	}

	s.dispatch(ctx, events.ParticipantMinutesChanged{TeamID: teamID, UserID: userID})
	return nil
}

// notify writes an inbox row and fires InboxCreated, best effort.
func (s *Service) notify(ctx context.Context, recipient uuid.UUID, itemType, title, body string, data map[string]string) {
	item := models.InboxItem{
		RecipientUID: recipient,
		Type:         itemType,
		Title:        title,
		Body:         body,
	}
	if len(data) > 0 {
		if b, err := json.Marshal(data); err == nil {
			item.Data = datatypes.JSON(b)
		}
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return
	}
	s.dispatch(ctx, events.InboxCreated{InboxID: item.ID, RecipientUID: recipient})
}

// dispatch hands an event to the router. Router handlers absorb their own
// dependency failures, so any error surfacing here is an input error from a
// handler and still must not fail the committed mutation.
func (s *Service) dispatch(ctx context.Context, ev events.Event) {
	_ = s.bus.Dispatch(ctx, ev)
}

func snippet(text string) string {
	const max = 120
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}
