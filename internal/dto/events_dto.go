package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventEnvelope is the wire form of a store lifecycle trigger delivered to
// the ingestion webhook. EventID enables best-effort redelivery dedup.
type EventEnvelope struct {
	EventID string          `json:"event_id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ContentCreatedPayload struct {
	ContentID uuid.UUID  `json:"content_id"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Kind      string     `json:"kind"`
}

type ReportFiledPayload struct {
	ReportID uuid.UUID `json:"report_id"`
	PostID   uuid.UUID `json:"post_id"`
}

type LikeDeltaPayload struct {
	ContentID uuid.UUID `json:"content_id"`
	Delta     int       `json:"delta"`
}

type InboxCreatedPayload struct {
	InboxID      uuid.UUID `json:"inbox_id"`
	RecipientUID uuid.UUID `json:"recipient_uid"`
}

type ParticipantMinutesPayload struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}
