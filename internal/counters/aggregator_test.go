package counters

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/models"
)

type memStore struct {
	likes      map[uuid.UUID]int
	replies    map[uuid.UUID]int
	recomputes map[uuid.UUID]int
	teams      []uuid.UUID

	recomputeErr map[uuid.UUID]error
}

func newMemStore() *memStore {
	return &memStore{
		likes:        make(map[uuid.UUID]int),
		replies:      make(map[uuid.UUID]int),
		recomputes:   make(map[uuid.UUID]int),
		recomputeErr: make(map[uuid.UUID]error),
	}
}

func (m *memStore) IncrementLikes(_ context.Context, id uuid.UUID, delta int) error {
	next := m.likes[id] + delta
	if next < 0 {
		next = 0
	}
	m.likes[id] = next
	return nil
}

func (m *memStore) IncrementReplies(_ context.Context, id uuid.UUID, delta int) error {
	m.replies[id] += delta
	return nil
}

func (m *memStore) RecomputeTeamMinutes(_ context.Context, id uuid.UUID) error {
	if err := m.recomputeErr[id]; err != nil {
		return err
	}
	m.recomputes[id]++
	return nil
}

func (m *memStore) ActiveTeamIDs(context.Context) ([]uuid.UUID, error) {
	return m.teams, nil
}

func TestLikeDeltasConverge(t *testing.T) {
	store := newMemStore()
	agg := NewAggregator(store)
	ctx := context.Background()
	contentID := uuid.New()

	// 5 likes and 2 unlikes in arbitrary interleaving must land on 3.
	deltas := []int{1, 1, -1, 1, 1, -1, 1}
	for _, d := range deltas {
		if err := agg.HandleLikeDelta(ctx, events.LikeDelta{ContentID: contentID, Delta: d}); err != nil {
			t.Fatalf("HandleLikeDelta(%d): %v", d, err)
		}
	}
	if got := store.likes[contentID]; got != 3 {
		t.Errorf("likes = %d, want 3", got)
	}
}

func TestLikeCounterFloorsAtZero(t *testing.T) {
	store := newMemStore()
	agg := NewAggregator(store)
	ctx := context.Background()
	contentID := uuid.New()

	agg.HandleLikeDelta(ctx, events.LikeDelta{ContentID: contentID, Delta: -1})
	agg.HandleLikeDelta(ctx, events.LikeDelta{ContentID: contentID, Delta: -1})
	if got := store.likes[contentID]; got != 0 {
		t.Errorf("likes = %d, want floor at 0", got)
	}
}

func TestZeroDeltaIsNoop(t *testing.T) {
	store := newMemStore()
	agg := NewAggregator(store)
	contentID := uuid.New()

	if err := agg.HandleLikeDelta(context.Background(), events.LikeDelta{ContentID: contentID, Delta: 0}); err != nil {
		t.Fatalf("HandleLikeDelta(0): %v", err)
	}
	if _, touched := store.likes[contentID]; touched {
		t.Error("zero delta must not touch the row")
	}
}

func TestReplyIncrementsParent(t *testing.T) {
	store := newMemStore()
	agg := NewAggregator(store)
	ctx := context.Background()
	parentID := uuid.New()

	err := agg.HandleContentCreated(ctx, events.ContentCreated{
		ContentID: uuid.New(),
		ParentID:  &parentID,
		ItemKind:  models.ContentKindReply,
	})
	if err != nil {
		t.Fatalf("HandleContentCreated: %v", err)
	}
	if got := store.replies[parentID]; got != 1 {
		t.Errorf("parent replies = %d, want 1", got)
	}

	// Top-level posts touch nothing.
	err = agg.HandleContentCreated(ctx, events.ContentCreated{
		ContentID: uuid.New(),
		ItemKind:  models.ContentKindPost,
	})
	if err != nil {
		t.Fatalf("HandleContentCreated: %v", err)
	}
	if len(store.replies) != 1 {
		t.Errorf("reply counters touched = %d, want 1", len(store.replies))
	}
}

func TestMinutesChangedTriggersRecompute(t *testing.T) {
	store := newMemStore()
	agg := NewAggregator(store)
	teamID := uuid.New()

	ev := events.ParticipantMinutesChanged{TeamID: teamID, UserID: uuid.New()}
	if err := agg.HandleMinutesChanged(context.Background(), ev); err != nil {
		t.Fatalf("HandleMinutesChanged: %v", err)
	}
	// A redelivery recomputes again; the result is the same total.
	if err := agg.HandleMinutesChanged(context.Background(), ev); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got := store.recomputes[teamID]; got != 2 {
		t.Errorf("recomputes = %d, want 2", got)
	}
}

func TestSweepTeamsContinuesPastFailures(t *testing.T) {
	store := newMemStore()
	good1, bad, good2 := uuid.New(), uuid.New(), uuid.New()
	store.teams = []uuid.UUID{good1, bad, good2}
	store.recomputeErr[bad] = errors.New("deadlock")

	agg := NewAggregator(store)
	swept, err := agg.SweepTeams(context.Background())
	if err != nil {
		t.Fatalf("SweepTeams: %v", err)
	}
	if swept != 2 {
		t.Errorf("swept = %d, want 2", swept)
	}
	if store.recomputes[good2] != 1 {
		t.Error("sweep should continue past a failed team")
	}
}
