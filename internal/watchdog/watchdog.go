// Package watchdog detects scrape runs stuck in RUNNING (crashed
// coordinator, deadlocked goroutine) and fails them so they no longer
// show as RUNNING in scrape_runs (§4.11). It is the
// same "ticker loop, query by time threshold, UPDATE" shape as
// Mercury's closer.StatusUpdater, pointed at scrape_runs/
// scrape_phase_log instead of the events table.
package watchdog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawapay/pawarisk/internal/config"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// SettingsSource is the live settings view; re-read every tick so an
// operator's staleness-threshold change takes effect without a restart.
type SettingsSource interface {
	Current() config.Settings
}

// Watchdog periodically fails scrape runs that stopped making progress.
type Watchdog struct {
	runs     contracts.RunStore
	settings SettingsSource
	logger   zerolog.Logger
	interval time.Duration
	now      func() time.Time
}

// New builds a Watchdog. interval is how often the stale sweep runs;
// §4.11 suggests roughly 2 minutes.
func New(runs contracts.RunStore, settings SettingsSource, interval time.Duration, logger zerolog.Logger) *Watchdog {
	return &Watchdog{runs: runs, settings: settings, logger: logger, interval: interval, now: time.Now}
}

// RecoverOnStartup unconditionally fails every RUNNING run. A process
// restart means no coordinator goroutine is actually progressing any
// of them regardless of how fresh their last activity looked.
func (w *Watchdog) RecoverOnStartup(ctx context.Context) error {
	n, err := w.runs.FailAllRunning(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		w.logger.Warn().Int("count", n).Msg("failed stale running scrape runs on startup")
	}
	return nil
}

// Run sweeps for stale runs on a ticker until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error().Err(err).Msg("watchdog sweep failed")
			}
		}
	}
}

// sweep finds runs whose last activity predates the staleness
// threshold and fails each one. FindStaleRunning filters to RUNNING
// rows in its own query, so a run that completed between the query and
// this loop's UpdateRunStatus call is the only race window; the store
// implementation guards it with a status-qualified UPDATE so a
// just-completed run can't be clobbered back to failed.
func (w *Watchdog) sweep(ctx context.Context) error {
	threshold := time.Duration(w.settings.Current().StalenessThresholdMinutes) * time.Minute
	if threshold <= 0 {
		threshold = 10 * time.Minute
	}
	staleSince := w.now().Add(-threshold).Unix()

	stale, err := w.runs.FindStaleRunning(ctx, staleSince)
	if err != nil {
		return err
	}

	for _, run := range stale {
		lastActivity, err := w.runs.LastActivity(ctx, run.ID)
		if err != nil {
			w.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to read last activity")
			continue
		}
		idle := w.now().Sub(time.Unix(lastActivity, 0))
		if idle < threshold {
			continue
		}

		phase := "unknown"
		if run.CurrentPhase != nil {
			phase = string(*run.CurrentPhase)
		}

		_ = w.runs.LogError(ctx, models.ScrapeError{
			ScrapeRunID:  run.ID,
			ErrorType:    models.ErrorTypeStale,
			ErrorMessage: "no activity for " + idle.Round(time.Second).String() + " in phase " + phase,
			Platform:     run.CurrentPlatform,
			OccurredAt:   w.now(),
		})
		if err := w.runs.UpdateRunStatus(ctx, run.ID, models.RunFailed); err != nil {
			w.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to mark stale run as failed")
			continue
		}

		w.logger.Warn().Str("run_id", run.ID).Str("idle", idle.String()).Str("phase", phase).Msg("failed stale scrape run")
	}

	return nil
}
