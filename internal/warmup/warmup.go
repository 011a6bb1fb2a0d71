// Package warmup runs the startup sequence the API must wait on before
// serving traffic (§4.10): load the mapping catalogue, pre-populate
// the Odds Cache from the durable store's latest rows for upcoming
// events, and recover any scrape runs left RUNNING by a prior process.
// Grounded on Mercury's writer.LoadSeenEventsFromDB/WarmUpcomingEvents,
// which populate an in-memory map from a startup DB scan before the
// poller starts — here the destination is the Odds Cache rather than a
// seen-events set, and there is no page-warming call to make.
package warmup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// lookback bounds how far in the past an event's kickoff may lie for
// its current rows to be warmed; rows of events that kicked off more
// than 2 hours ago are not loaded.
const lookback = 2 * time.Hour

// MappingCache is the subset of contracts.MappingCache warmup needs.
type MappingCache interface {
	Refresh(ctx context.Context) error
}

// OddsCachePreloader is the subset of contracts.OddsCache warmup writes
// to. PutRawSnapshot, not PutSnapshot, is required: warmup reloads
// CachedSnapshot values straight from the durable store and must
// preserve them byte-for-byte, including UnavailableAt and Groups,
// rather than rebuilding them from a freshly-mapped market (which has
// neither field).
type OddsCachePreloader interface {
	PutRawSnapshot(snap models.CachedSnapshot)
}

// Runner executes the startup sequence.
type Runner struct {
	mappingCache MappingCache
	oddsCache    OddsCachePreloader
	store        contracts.WarmupReader
	runs         contracts.RunStore
	logger       zerolog.Logger
	now          func() time.Time
}

func New(mappingCache MappingCache, oddsCache OddsCachePreloader, store contracts.WarmupReader, runs contracts.RunStore, logger zerolog.Logger) *Runner {
	return &Runner{mappingCache: mappingCache, oddsCache: oddsCache, store: store, runs: runs, logger: logger, now: time.Now}
}

// Run executes the sequence and returns once the cache is ready to
// serve. The caller must not accept traffic before this returns.
func (r *Runner) Run(ctx context.Context) error {
	start := r.now()

	if err := r.mappingCache.Refresh(ctx); err != nil {
		return err
	}

	snapshots, err := r.store.LoadRecentCurrent(ctx, r.now().Add(-lookback).Unix())
	if err != nil {
		return err
	}
	for _, snap := range snapshots {
		r.oddsCache.PutRawSnapshot(snap)
	}

	if n, err := r.runs.FailAllRunning(ctx); err != nil {
		return err
	} else if n > 0 {
		r.logger.Warn().Int("count", n).Msg("recovered stale running scrape runs on startup")
	}

	r.logger.Info().
		Dur("elapsed", r.now().Sub(start)).
		Int("snapshots_loaded", len(snapshots)).
		Msg("cache warmup complete")

	return nil
}
