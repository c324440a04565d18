// Package events defines the closed set of pipeline triggers and the router
// that fans them out to handlers. Delivery is at-least-once: every handler
// must be idempotent or convergent.
package events

import (
	"github.com/google/uuid"
)

type Kind string

const (
	KindContentCreated            Kind = "content.created"
	KindReportFiled               Kind = "report.filed"
	KindLikeDelta                 Kind = "like.delta"
	KindInboxCreated              Kind = "inbox.created"
	KindParticipantMinutesChanged Kind = "participant.minutes"
)

// Event is the sealed tagged union of pipeline triggers. Only the types in
// this package implement it.
type Event interface {
	Kind() Kind
}

// ContentCreated fires when a post or reply row is committed.
type ContentCreated struct {
	ContentID uuid.UUID
	AuthorID  *uuid.UUID
	ParentID  *uuid.UUID // set for replies
	ItemKind  string     // post or reply
}

func (ContentCreated) Kind() Kind { return KindContentCreated }

// ReportFiled fires when a user reports a content item.
type ReportFiled struct {
	ReportID uuid.UUID
	PostID   uuid.UUID
}

func (ReportFiled) Kind() Kind { return KindReportFiled }

// LikeDelta fires on like creation (+1) or removal (-1).
type LikeDelta struct {
	ContentID uuid.UUID
	Delta     int
}

func (LikeDelta) Kind() Kind { return KindLikeDelta }

// InboxCreated fires when a notification row lands in a recipient's inbox.
type InboxCreated struct {
	InboxID      uuid.UUID
	RecipientUID uuid.UUID
}

func (InboxCreated) Kind() Kind { return KindInboxCreated }

// ParticipantMinutesChanged fires when a team member's minutes field is
// written.
type ParticipantMinutesChanged struct {
	TeamID uuid.UUID
	UserID uuid.UUID
}

func (ParticipantMinutesChanged) Kind() Kind { return KindParticipantMinutesChanged }
