package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/safeloop/moderation-backend/internal/faults"
)

// HandlerFunc processes one event. Returned errors are classified and
// handled per the faults policy table; only input errors surface to the
// dispatcher's caller.
type HandlerFunc func(ctx context.Context, ev Event) error

// Router dispatches events to the handlers registered for their kind.
// Dispatch is safe for concurrent use; handlers for one event run in
// registration order.
type Router struct {
	mu       sync.RWMutex
	handlers map[Kind][]HandlerFunc

	// Best-effort de-duplication of redelivered envelopes by event id.
	// Bounded FIFO; duplicates beyond the window are accepted (known gap
	// for non-idempotent counter increments).
	seenMu   sync.Mutex
	seen     map[string]struct{}
	seenFIFO []string
	seenCap  int
}

func NewRouter() *Router {
	return &Router{
		handlers: make(map[Kind][]HandlerFunc),
		seen:     make(map[string]struct{}),
		seenCap:  4096,
	}
}

// On registers a handler for a kind.
func (r *Router) On(kind Kind, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], h)
}

// Dispatch runs all handlers for the event. Dependency, data and audit
// errors are logged and absorbed; an input error aborts remaining handlers
// and is returned.
func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	r.mu.RLock()
	hs := r.handlers[ev.Kind()]
	r.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			kind := faults.Classify(err)
			switch faults.PolicyFor(kind) {
			case faults.Reject:
				return err
			default:
				slog.Error("event handler degraded",
					"event", string(ev.Kind()),
					"fault", kind.String(),
					"error", err)
			}
		}
	}
	return nil
}

// DispatchDedup is Dispatch with at-least-once redelivery protection keyed
// by eventID. An empty id skips de-duplication.
func (r *Router) DispatchDedup(ctx context.Context, eventID string, ev Event) error {
	if eventID != "" && r.markSeen(eventID) {
		slog.Info("duplicate event skipped", "event_id", eventID, "event", string(ev.Kind()))
		return nil
	}
	return r.Dispatch(ctx, ev)
}

// markSeen records the id and reports whether it was already present.
func (r *Router) markSeen(id string) bool {
	r.seenMu.Lock()
	defer r.seenMu.Unlock()
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	r.seenFIFO = append(r.seenFIFO, id)
	if len(r.seenFIFO) > r.seenCap {
		oldest := r.seenFIFO[0]
		r.seenFIFO = r.seenFIFO[1:]
		delete(r.seen, oldest)
	}
	return false
}
