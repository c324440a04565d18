// Package toxicity scores text for harmful content. The local deny-list is
// a zero-latency backstop that holds even when the external scoring service
// is down; the external score is advisory and never blocks availability.
package toxicity

import (
	"context"
	"log/slog"
	"strings"
)

// Verdict is the analysis outcome attached to a content item.
type Verdict struct {
	Blocked bool    `json:"blocked"`
	Flagged bool    `json:"flagged"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// Scorer calls the external toxicity-scoring service.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Settings supplies the tunable thresholds and deny-list terms.
type Settings interface {
	FlagThreshold() float64
	BlockThreshold() float64
	DenyList() []string
}

type Analyzer struct {
	scorer   Scorer // nil when no scoring credential is configured
	settings Settings
}

func NewAnalyzer(scorer Scorer, settings Settings) *Analyzer {
	return &Analyzer{scorer: scorer, settings: settings}
}

// Analyze evaluates text in fixed order: empty, deny-list, heuristic-only,
// external score. It never returns an error; degradation is encoded in the
// verdict (fail-open, reason "fallback-ok").
func (a *Analyzer) Analyze(ctx context.Context, text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return Verdict{Blocked: true, Score: 1.0, Reason: "empty"}
	}

	lower := strings.ToLower(text)
	for _, term := range a.settings.DenyList() {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return Verdict{
				Blocked: true,
				Flagged: true,
				Score:   0.99,
				Reason:  "Contains disallowed terms",
			}
		}
	}

	if a.scorer == nil {
		return Verdict{Reason: "heuristic-ok"}
	}

	score, err := a.scorer.Score(ctx, text)
	if err != nil {
		slog.Error("toxicity scoring failed, failing open", "error", err)
		return Verdict{Reason: "fallback-ok"}
	}

	return Verdict{
		Blocked: score >= a.settings.BlockThreshold(),
		Flagged: score >= a.settings.FlagThreshold(),
		Score:   score,
		Reason:  "scored",
	}
}
