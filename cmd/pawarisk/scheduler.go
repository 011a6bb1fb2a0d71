package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawapay/pawarisk/internal/config"
	"github.com/pawapay/pawarisk/internal/coordinator"
)

const minScrapeInterval = 30 * time.Second

// runScheduler drives the scrape cycle on a timer, re-reading the
// interval from settings after every cycle rather than Mercury's fixed
// per-sport ticker, since an operator can change the interval at
// runtime and this loop must pick it up without a restart — the
// enhancement Mercury's own pollSportFeatured TODO anticipated
// ("adjust ticker interval based on ... configuration"). Runs an
// immediate cycle on startup, then waits on a fresh timer sized from
// the current settings each iteration until ctx is cancelled.
func runScheduler(ctx context.Context, coord *coordinator.Coordinator, settings interface{ Current() config.Settings }, logger zerolog.Logger) {
	runOnce(ctx, coord, logger)

	for {
		interval := time.Duration(settings.Current().ScrapeIntervalMinutes) * time.Minute
		if interval < minScrapeInterval {
			interval = minScrapeInterval
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			runOnce(ctx, coord, logger)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func runOnce(ctx context.Context, coord *coordinator.Coordinator, logger zerolog.Logger) {
	if err := coord.RunCycle(ctx); err != nil {
		if errors.Is(err, coordinator.ErrAlreadyRunning) {
			logger.Warn().Msg("scrape cycle skipped, previous cycle still running")
			return
		}
		logger.Error().Err(err).Msg("scrape cycle failed")
	}
}
