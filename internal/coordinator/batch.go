package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/pawapay/pawarisk/internal/changedetect"
	"github.com/pawapay/pawarisk/internal/riskalert"
	"github.com/pawapay/pawarisk/pkg/models"
)

// batchResult accumulates one batch's writes, alerts, event metadata
// and errors for the WriteBatch enqueued at BATCH_COMPLETE.
type batchResult struct {
	events []models.Event
	writes []models.MarketCurrentWrite
	alerts []models.RiskAlert
	errs   []models.ScrapeError
}

// eventResult is one EventTarget's contribution to a batchResult.
type eventResult struct {
	event  models.Event
	writes []models.MarketCurrentWrite
	alerts []models.RiskAlert
	errs   []models.ScrapeError
}

// processBatch scrapes every event in the batch in parallel, bounded
// only by each platform's own semaphore (§4.9 step 3, §5 "parallelism
// lives inside a batch").
func (c *Coordinator) processBatch(ctx context.Context, runID string, targets []models.EventTarget) batchResult {
	var mu sync.Mutex
	var result batchResult

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(t models.EventTarget) {
			defer wg.Done()

			eventCtx, cancel := context.WithTimeout(ctx, c.eventDeadline())
			defer cancel()

			c.publish(runID, models.ScrapeProgressData{Phase: models.PhaseEventScraping, EventID: &t.EventID})

			res := c.processEvent(eventCtx, runID, t)

			mu.Lock()
			result.events = append(result.events, res.event)
			result.writes = append(result.writes, res.writes...)
			result.alerts = append(result.alerts, res.alerts...)
			result.errs = append(result.errs, res.errs...)
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	return result
}

// processEvent fetches every platform's raw markets for one event in
// parallel, maps and classifies each, then runs the risk detector once
// across the full per-platform result set.
func (c *Coordinator) processEvent(ctx context.Context, runID string, target models.EventTarget) eventResult {
	now := c.now()
	result := eventResult{
		event: models.Event{
			ID: target.EventID, SportradarID: target.SportradarID,
			HomeTeam: target.HomeTeam, AwayTeam: target.AwayTeam,
			KickoffTime: target.KickoffTime, Status: ComputeStatus(target.KickoffTime, now),
		},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var perPlatform []riskalert.PlatformResults

	for _, ref := range target.Platforms {
		wg.Add(1)
		go func(ref models.PlatformEventRef) {
			defer wg.Done()
			c.fetchMapClassify(ctx, runID, target, ref, &mu, &result, &perPlatform)
		}(ref)
	}
	wg.Wait()

	result.alerts = c.detector.Detect(target.EventID, target.KickoffTime, now, perPlatform)
	return result
}

// fetchMapClassify handles one (event, platform) pair: fetch under the
// platform semaphore, map, classify against the Odds Cache, update the
// cache, and publish EVENT_SCRAPED. Per-platform errors are recorded
// and do not stop the other platforms (§4.9 step 3 bullet 5).
func (c *Coordinator) fetchMapClassify(
	ctx context.Context, runID string, target models.EventTarget, ref models.PlatformEventRef,
	mu *sync.Mutex, result *eventResult, perPlatform *[]riskalert.PlatformResults,
) {
	client, ok := c.clients[ref.Platform]
	if !ok {
		return
	}

	sem := c.semaphoreFor(ref.Platform)
	sem <- struct{}{}
	defer func() { <-sem }()

	platform := ref.Platform
	start := c.now()
	raw, err := client.FetchEvent(ctx, ref)
	duration := c.now().Sub(start)

	if err != nil {
		mu.Lock()
		result.errs = append(result.errs, models.ScrapeError{
			ScrapeRunID: runID, ErrorType: classifyFetchError(err),
			ErrorMessage: err.Error(), Platform: &platform, OccurredAt: c.now(),
		})
		mu.Unlock()
		c.publishEventScraped(runID, platform, target.EventID, false, duration, err)
		return
	}

	mapper, ok := c.mappers[ref.Platform]
	if !ok {
		return
	}
	mapped, mapErrs := mapper.MapMarkets(raw, c.mappingCache)
	for _, me := range mapErrs {
		c.recordUnmapped(ctx, me)
	}

	cached, hasCache := c.oddsCache.GetSnapshot(target.EventID, ref.Platform)
	var cachedPtr *models.CachedSnapshot
	if hasCache {
		cachedPtr = &cached
	}

	classified := changedetect.Classify(target.EventID, ref.Platform, mapped, cachedPtr, c.now().Unix())

	mu.Lock()
	*perPlatform = append(*perPlatform, riskalert.PlatformResults{Platform: ref.Platform, Results: classified})
	for _, cr := range classified {
		result.writes = append(result.writes, cr.Write)
	}
	mu.Unlock()

	c.oddsCache.PutSnapshot(target.EventID, ref.Platform, mapped, c.now().Unix())
	c.publishEventScraped(runID, platform, target.EventID, true, duration, nil)
}

func (c *Coordinator) publishEventScraped(runID string, platform models.Platform, eventID int64, success bool, duration time.Duration, err error) {
	durationMs := duration.Milliseconds()
	data := models.ScrapeProgressData{
		Phase: models.PhaseEventScraped, Platform: &platform, EventID: &eventID,
		Success: &success, DurationMs: &durationMs,
	}
	if err != nil {
		kind := string(classifyFetchError(err))
		data.ErrorKind = &kind
	}
	c.publish(runID, data)
}
