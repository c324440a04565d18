// Package jobs runs the periodic maintenance loops: the open-report recheck
// and the team-minutes sweep. Both are idempotent, so an overlapping or
// doubled run is harmless.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/safeloop/moderation-backend/internal/counters"
	"github.com/safeloop/moderation-backend/internal/moderation"
)

// StartRecheck re-evaluates open reports on a fixed interval.
func StartRecheck(pipeline *moderation.Pipeline, interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				res, err := pipeline.RecheckOpenReports(context.Background())
				if err != nil {
					slog.Error("scheduled recheck failed", "error", err)
					continue
				}
				if res.Checked > 0 {
					slog.Info("scheduled recheck completed", "checked", res.Checked, "hidden", res.Hidden)
				}
			case <-done:
				return
			}
		}
	}()
}

// StartTeamSweep recomputes every active team's minute total on a fixed
// interval, healing any drift from missed events.
func StartTeamSweep(agg *counters.Aggregator, interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				swept, err := agg.SweepTeams(context.Background())
				if err != nil {
					slog.Error("team sweep failed", "error", err)
					continue
				}
				if swept > 0 {
					slog.Info("team sweep completed", "teams", swept)
				}
			case <-done:
				return
			}
		}
	}()
}
