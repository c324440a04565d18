package toxicity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeSettings struct {
	flag  float64
	block float64
	terms []string
}

func (s fakeSettings) FlagThreshold() float64  { return s.flag }
func (s fakeSettings) BlockThreshold() float64 { return s.block }
func (s fakeSettings) DenyList() []string      { return s.terms }

type fakeScorer struct {
	score float64
	err   error
}

func (s fakeScorer) Score(_ context.Context, _ string) (float64, error) {
	return s.score, s.err
}

func defaultSettings() fakeSettings {
	return fakeSettings{
		flag:  0.6,
		block: 0.8,
		terms: []string{"hate", "kill", "suicide", "terror", "racist", "sexist"},
	}
}

func TestAnalyzeDenyList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Verdict
	}{
		{
			name: "empty text is blocked",
			text: "",
			want: Verdict{Blocked: true, Score: 1.0, Reason: "empty"},
		},
		{
			name: "whitespace only is blocked",
			text: "   \n\t ",
			want: Verdict{Blocked: true, Score: 1.0, Reason: "empty"},
		},
		{
			name: "deny-list term",
			text: "I hate you",
			want: Verdict{Blocked: true, Flagged: true, Score: 0.99, Reason: "Contains disallowed terms"},
		},
		{
			name: "deny-list match is case-insensitive",
			text: "you should KiLL it",
			want: Verdict{Blocked: true, Flagged: true, Score: 0.99, Reason: "Contains disallowed terms"},
		},
		{
			name: "embedded term matches",
			text: "whatever, hater",
			want: Verdict{Blocked: true, Flagged: true, Score: 0.99, Reason: "Contains disallowed terms"},
		},
		{
			name: "clean text passes heuristics",
			text: "what a lovely day",
			want: Verdict{Reason: "heuristic-ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(nil, defaultSettings())
			got := a.Analyze(context.Background(), tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Analyze(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestAnalyzeExternalScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  Verdict
	}{
		{
			name:  "below flag threshold",
			score: 0.3,
			want:  Verdict{Score: 0.3, Reason: "scored"},
		},
		{
			name:  "flagged but not blocked",
			score: 0.7,
			want:  Verdict{Flagged: true, Score: 0.7, Reason: "scored"},
		},
		{
			name:  "at block threshold",
			score: 0.8,
			want:  Verdict{Blocked: true, Flagged: true, Score: 0.8, Reason: "scored"},
		},
		{
			name:  "above block threshold",
			score: 0.95,
			want:  Verdict{Blocked: true, Flagged: true, Score: 0.95, Reason: "scored"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(fakeScorer{score: tt.score}, defaultSettings())
			got := a.Analyze(context.Background(), "some neutral text")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Analyze mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyzeFailsOpenOnScorerError(t *testing.T) {
	a := NewAnalyzer(fakeScorer{err: errors.New("timeout")}, defaultSettings())
	got := a.Analyze(context.Background(), "some neutral text")
	want := Verdict{Reason: "fallback-ok"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Analyze mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeDenyListBeatsScorer(t *testing.T) {
	// Deny-list runs before the external call, so a dead scorer cannot
	// weaken the local backstop.
	a := NewAnalyzer(fakeScorer{err: errors.New("down")}, defaultSettings())
	got := a.Analyze(context.Background(), "full of hate")
	if !got.Blocked || got.Score != 0.99 {
		t.Errorf("expected deny-list block, got %+v", got)
	}
}
