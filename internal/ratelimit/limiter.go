// Package ratelimit gates actions behind per-actor sliding windows. The
// window is a single last-action timestamp, not a request log; a check
// followed by a touch is deliberately not atomic (a same-actor race lets at
// most one extra action through, which the moderation pipeline corrects by
// hiding the item instead of rejecting it).
package ratelimit

import (
	"context"
	"time"
)

// Store persists one last-action timestamp per (actor, action class).
type Store interface {
	LastAction(ctx context.Context, actorID, actionClass string) (time.Time, bool, error)
	Touch(ctx context.Context, actorID, actionClass string, at time.Time) error
}

// Settings supplies the per-class window.
type Settings interface {
	Window(actionClass string) time.Duration
}

type Limiter struct {
	store    Store
	settings Settings
	now      func() time.Time
}

func NewLimiter(store Store, settings Settings) *Limiter {
	return &Limiter{store: store, settings: settings, now: time.Now}
}

// ShouldSuppress reports whether the actor is still inside the cooldown
// window for the action class. It does not record the attempt.
func (l *Limiter) ShouldSuppress(ctx context.Context, actorID, actionClass string) (bool, error) {
	last, ok, err := l.store.LastAction(ctx, actorID, actionClass)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return l.now().Sub(last) < l.settings.Window(actionClass), nil
}

// Touch records an attempt. Called for suppressed attempts too, so
// rapid-fire retries keep extending the cooldown.
func (l *Limiter) Touch(ctx context.Context, actorID, actionClass string) error {
	return l.store.Touch(ctx, actorID, actionClass, l.now())
}

// Gate combines ShouldSuppress and Touch: the attempt is always recorded,
// whatever the outcome. A store read error fails open (allow), matching the
// pipeline's availability bias.
func (l *Limiter) Gate(ctx context.Context, actorID, actionClass string) (bool, error) {
	suppressed, err := l.ShouldSuppress(ctx, actorID, actionClass)
	if err != nil {
		suppressed = false
	}
	if touchErr := l.Touch(ctx, actorID, actionClass); touchErr != nil && err == nil {
		err = touchErr
	}
	return suppressed, err
}
