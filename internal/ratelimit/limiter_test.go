package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	last    map[string]time.Time
	readErr error
}

func newMemStore() *memStore {
	return &memStore{last: make(map[string]time.Time)}
}

func (m *memStore) LastAction(_ context.Context, actorID, actionClass string) (time.Time, bool, error) {
	if m.readErr != nil {
		return time.Time{}, false, m.readErr
	}
	t, ok := m.last[actorID+"/"+actionClass]
	return t, ok, nil
}

func (m *memStore) Touch(_ context.Context, actorID, actionClass string, at time.Time) error {
	m.last[actorID+"/"+actionClass] = at
	return nil
}

type fixedWindow time.Duration

func (w fixedWindow) Window(string) time.Duration { return time.Duration(w) }

func testLimiter(store Store, window time.Duration) (*Limiter, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(store, fixedWindow(window))
	l.now = func() time.Time { return now }
	return l, &now
}

func TestGateWindow(t *testing.T) {
	store := newMemStore()
	l, now := testLimiter(store, 10*time.Second)
	ctx := context.Background()

	suppressed, err := l.Gate(ctx, "alice", "post")
	if err != nil || suppressed {
		t.Fatalf("first action: suppressed=%v err=%v, want allow", suppressed, err)
	}

	*now = now.Add(3 * time.Second)
	suppressed, _ = l.Gate(ctx, "alice", "post")
	if !suppressed {
		t.Fatal("second action inside window should be suppressed")
	}

	// A different actor is unaffected.
	suppressed, _ = l.Gate(ctx, "bob", "post")
	if suppressed {
		t.Fatal("other actor should not be suppressed")
	}

	// A different action class for the same actor is unaffected.
	suppressed, _ = l.Gate(ctx, "alice", "report")
	if suppressed {
		t.Fatal("other action class should not be suppressed")
	}
}

func TestGateExpiry(t *testing.T) {
	store := newMemStore()
	l, now := testLimiter(store, 10*time.Second)
	ctx := context.Background()

	if sup, _ := l.Gate(ctx, "alice", "post"); sup {
		t.Fatal("first action should be allowed")
	}

	*now = now.Add(11 * time.Second)
	if sup, _ := l.Gate(ctx, "alice", "post"); sup {
		t.Fatal("action after window expiry should be allowed")
	}
}

func TestSuppressedAttemptExtendsCooldown(t *testing.T) {
	store := newMemStore()
	l, now := testLimiter(store, 10*time.Second)
	ctx := context.Background()

	l.Gate(ctx, "alice", "post")

	// Retry at t+8s: suppressed, but the touch still lands.
	*now = now.Add(8 * time.Second)
	if sup, _ := l.Gate(ctx, "alice", "post"); !sup {
		t.Fatal("retry inside window should be suppressed")
	}

	// t+14s is 6s after the retry, still inside the extended window.
	*now = now.Add(6 * time.Second)
	if sup, _ := l.Gate(ctx, "alice", "post"); !sup {
		t.Fatal("cooldown should have been extended by the suppressed retry")
	}
}

func TestGateFailsOpenOnReadError(t *testing.T) {
	store := newMemStore()
	store.readErr = errors.New("connection refused")
	l, _ := testLimiter(store, 10*time.Second)

	suppressed, err := l.Gate(context.Background(), "alice", "post")
	if suppressed {
		t.Fatal("read error must fail open")
	}
	if err == nil {
		t.Fatal("read error should still be reported to the caller")
	}
	if _, ok := store.last["alice/post"]; !ok {
		t.Fatal("attempt should be recorded despite the read error")
	}
}
