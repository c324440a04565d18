// Package push turns inbox-item creation into device deliveries: preference
// check, multicast send, invalid-token pruning, then inbox-cap enforcement.
// Gateway failures degrade; a missed push never fails the triggering event.
package push

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/safeloop/moderation-backend/internal/events"
	"github.com/safeloop/moderation-backend/internal/faults"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/gorm"
)

// Inbox item types that never push, whatever the user's preferences.
var hardSuppressedTypes = map[string]bool{
	"weekly_digest": true,
	"system_notice": true,
}

// Notification is one multicast payload.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Gateway delivers one multicast and reports which tokens are dead.
type Gateway interface {
	SendMulticast(ctx context.Context, tokens []string, n Notification) (invalid []string, err error)
}

// Store is the persistence surface the fanout needs.
type Store interface {
	GetInboxItem(ctx context.Context, id uuid.UUID) (*models.InboxItem, error)
	DisabledTypes(ctx context.Context, recipientUID uuid.UUID) ([]string, error)
	ListTokens(ctx context.Context, recipientUID uuid.UUID) ([]models.DeviceToken, error)
	DeleteTokens(ctx context.Context, recipientUID uuid.UUID, tokens []string) error
	CountInbox(ctx context.Context, recipientUID uuid.UUID) (int64, error)
	DeleteOldestRead(ctx context.Context, recipientUID uuid.UUID, n int) (int64, error)
	DeleteOldest(ctx context.Context, recipientUID uuid.UUID, n int) (int64, error)
}

type Fanout struct {
	store   Store
	gateway Gateway
	cap     int
	target  int
}

func NewFanout(store Store, gateway Gateway, inboxCap, pruneTarget int) *Fanout {
	if inboxCap <= 0 {
		inboxCap = 300
	}
	if pruneTarget <= 0 || pruneTarget > inboxCap {
		pruneTarget = inboxCap * 4 / 5
	}
	return &Fanout{store: store, gateway: gateway, cap: inboxCap, target: pruneTarget}
}

// Bind registers the fanout's event handler on the router.
func (f *Fanout) Bind(r *events.Router) {
	r.On(events.KindInboxCreated, func(ctx context.Context, ev events.Event) error {
		return f.HandleInboxCreated(ctx, ev.(events.InboxCreated))
	})
}

// HandleInboxCreated delivers the notification and prunes the recipient's
// inbox. Pruning runs even when delivery is suppressed or fails.
func (f *Fanout) HandleInboxCreated(ctx context.Context, ev events.InboxCreated) error {
	item, err := f.store.GetInboxItem(ctx, ev.InboxID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return faults.New(faults.KindDependency, err)
	}

	f.deliver(ctx, item)

	if err := f.PruneInbox(ctx, item.RecipientUID); err != nil {
		return faults.New(faults.KindDependency, err)
	}
	return nil
}

func (f *Fanout) deliver(ctx context.Context, item *models.InboxItem) {
	if hardSuppressedTypes[item.Type] {
		return
	}
	disabled, err := f.store.DisabledTypes(ctx, item.RecipientUID)
	if err != nil {
		slog.Error("prefs load failed, skipping push", "recipient", item.RecipientUID, "error", err)
		return
	}
	for _, t := range disabled {
		if t == item.Type {
			return
		}
	}

	tokens, err := f.store.ListTokens(ctx, item.RecipientUID)
	if err != nil {
		slog.Error("token load failed, skipping push", "recipient", item.RecipientUID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	data := map[string]string{"inbox_id": item.ID.String(), "type": item.Type}
	invalid, err := f.gateway.SendMulticast(ctx, tokenStrings, Notification{
		Title: item.Title,
		Body:  item.Body,
		Data:  data,
	})
	if err != nil {
		slog.Error("push delivery failed", "recipient", item.RecipientUID, "tokens", len(tokenStrings), "error", err)
		return
	}

	if len(invalid) > 0 {
		if err := f.store.DeleteTokens(ctx, item.RecipientUID, invalid); err != nil {
			slog.Error("invalid token cleanup failed", "recipient", item.RecipientUID, "error", err)
		}
	}
}

// PruneInbox enforces the collection cap: oldest read items go first, down
// to the target size; if that is not enough, oldest items go regardless of
// read state until the hard cap holds.
func (f *Fanout) PruneInbox(ctx context.Context, recipientUID uuid.UUID) error {
	count, err := f.store.CountInbox(ctx, recipientUID)
	if err != nil {
		return err
	}
	if count <= int64(f.cap) {
		return nil
	}

	deletedRead, err := f.store.DeleteOldestRead(ctx, recipientUID, int(count)-f.target)
	if err != nil {
		return err
	}

	remaining := count - deletedRead
	if remaining > int64(f.cap) {
		if _, err := f.store.DeleteOldest(ctx, recipientUID, int(remaining)-f.cap); err != nil {
			return err
		}
	}
	return nil
}
