// Package counters maintains derived integer counters. Likes and replies
// are commutative atomic increments on the parent row; team minutes are
// recomputed from scratch on every member write and self-healed by a
// periodic sweep.
package counters

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/models"
)

// Store is the persistence surface the aggregator needs.
type Store interface {
	IncrementLikes(ctx context.Context, contentID uuid.UUID, delta int) error
	IncrementReplies(ctx context.Context, contentID uuid.UUID, delta int) error
	RecomputeTeamMinutes(ctx context.Context, teamID uuid.UUID) error
	ActiveTeamIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Bind registers the aggregator's event handlers on the router.
func (a *Aggregator) Bind(r *events.Router) {
	r.On(events.KindLikeDelta, func(ctx context.Context, ev events.Event) error {
		return a.HandleLikeDelta(ctx, ev.(events.LikeDelta))
	})
	r.On(events.KindContentCreated, func(ctx context.Context, ev events.Event) error {
		return a.HandleContentCreated(ctx, ev.(events.ContentCreated))
	})
	r.On(events.KindParticipantMinutesChanged, func(ctx context.Context, ev events.Event) error {
		return a.HandleMinutesChanged(ctx, ev.(events.ParticipantMinutesChanged))
	})
}

// HandleLikeDelta applies one atomic like increment or decrement.
func (a *Aggregator) HandleLikeDelta(ctx context.Context, ev events.LikeDelta) error {
	if ev.Delta == 0 {
		return nil
	}
	if err := a.store.IncrementLikes(ctx, ev.ContentID, ev.Delta); err != nil {
		return faults.New(faults.KindDependency, err)
	}
	return nil
}

// HandleContentCreated bumps the parent's reply counter when a reply lands.
func (a *Aggregator) HandleContentCreated(ctx context.Context, ev events.ContentCreated) error {
	if ev.ItemKind != models.ContentKindReply || ev.ParentID == nil {
		return nil
	}
	if err := a.store.IncrementReplies(ctx, *ev.ParentID, 1); err != nil {
		return faults.New(faults.KindDependency, err)
	}
	return nil
}

// HandleMinutesChanged recomputes the team total after a member write.
func (a *Aggregator) HandleMinutesChanged(ctx context.Context, ev events.ParticipantMinutesChanged) error {
	if err := a.store.RecomputeTeamMinutes(ctx, ev.TeamID); err != nil {
		return faults.New(faults.KindDependency, err)
	}
	return nil
}

// SweepTeams recomputes every active team's total. Catches any recompute
// that was missed between event deliveries.
func (a *Aggregator) SweepTeams(ctx context.Context) (int, error) {
	ids, err := a.store.ActiveTeamIDs(ctx)
	if err != nil {
		return 0, faults.New(faults.KindDependency, err)
	}
	swept := 0
	for _, id := range ids {
		if err := a.store.RecomputeTeamMinutes(ctx, id); err != nil {
			slog.Error("team recompute failed", "team_id", id, "error", err)
			continue
		}
		swept++
	}
	return swept, nil
}
