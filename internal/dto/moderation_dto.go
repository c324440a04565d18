package dto

import "github.com/google/uuid"

type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

type AnalyzeTextResponse struct {
	OK      bool    `json:"ok"`
	Blocked bool    `json:"blocked"`
	Flagged bool    `json:"flagged"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

type ReportAbuseRequest struct {
	PostID uuid.UUID `json:"postId"`
	Reason string    `json:"reason"`
}

type RecheckResponse struct {
	OK      bool `json:"ok"`
	Checked int  `json:"checked"`
	Hidden  int  `json:"hidden"`
}

// ActionReportRequest carries one reviewer decision.
type ActionReportRequest struct {
	Action string `json:"action"` // dismiss, hide, approve, unhide, delete, flag, clear_flag
	Note   string `json:"note,omitempty"`
}
