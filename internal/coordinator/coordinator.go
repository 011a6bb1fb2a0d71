// Package coordinator runs the scrape cycle: discovery, priority
// batching, per-event fetch/map/classify/alert, and write-queue
// handoff (§4.9). It is the batch-oriented generalisation of
// Mercury's scheduler.Scheduler, which polls one sport at a time
// rather than a priority-ordered batch of events.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pawapay/pawarisk/internal/config"
	"github.com/pawapay/pawarisk/internal/platformclient"
	"github.com/pawapay/pawarisk/internal/riskalert"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// ErrAlreadyRunning is returned by RunCycle when a cycle is already in
// progress; the scrape-control trigger endpoint (§6) refuses a
// concurrent run rather than queueing one.
var ErrAlreadyRunning = errors.New("coordinator: cycle already running")

// SettingsSource is the live, periodically-refreshed settings view the
// coordinator reads at the start of every cycle and on every
// semaphore/deadline lookup.
type SettingsSource interface {
	Current() config.Settings
}

// Deps wires everything the coordinator needs; all fields are
// required except MappingStore (unmapped-market logging is best-effort).
type Deps struct {
	Clients      map[models.Platform]contracts.PlatformClient
	Mappers      map[models.Platform]contracts.PlatformMapper
	MappingCache contracts.MappingCache
	MappingStore contracts.MappingStore
	OddsCache    contracts.OddsCache
	WriteQueue   contracts.WriteEnqueuer
	Publisher    contracts.Publisher
	Runs         contracts.RunStore
	Settings     SettingsSource
}

// Coordinator is single-instance; RunCycle refuses re-entry while a
// cycle is in flight (§5 "the coordinator is single-instance").
type Coordinator struct {
	clients      map[models.Platform]contracts.PlatformClient
	mappers      map[models.Platform]contracts.PlatformMapper
	mappingCache contracts.MappingCache
	mappingStore contracts.MappingStore
	oddsCache    contracts.OddsCache
	writeQueue   contracts.WriteEnqueuer
	publisher    contracts.Publisher
	runs         contracts.RunStore
	settings     SettingsSource
	detector     *riskalert.Detector

	semMu      sync.Mutex
	semaphores map[models.Platform]chan struct{}

	runningMu sync.Mutex
	running   bool

	now func() time.Time
}

func New(deps Deps) *Coordinator {
	return &Coordinator{
		clients:      deps.Clients,
		mappers:      deps.Mappers,
		mappingCache: deps.MappingCache,
		mappingStore: deps.MappingStore,
		oddsCache:    deps.OddsCache,
		writeQueue:   deps.WriteQueue,
		publisher:    deps.Publisher,
		runs:         deps.Runs,
		settings:     deps.Settings,
		semaphores:   make(map[models.Platform]chan struct{}),
		now:          time.Now,
	}
}

// RunCycle executes one complete scrape cycle end to end.
func (c *Coordinator) RunCycle(ctx context.Context) error {
	if !c.tryStart() {
		return ErrAlreadyRunning
	}
	defer c.finish()

	settings := c.settings.Current()
	c.detector = riskalert.New(riskalert.Thresholds{
		T1: settings.AlertThresholdT1, T2: settings.AlertThresholdT2, T3: settings.AlertThresholdT3,
		ImminentWindowMinutes: settings.ImminentWindowMinutes,
	})

	runID := uuid.NewString()
	run := models.ScrapeRun{ID: runID, Status: models.RunRunning, StartedAt: c.now()}
	if err := c.runs.CreateRun(ctx, run); err != nil {
		return err
	}

	c.publish(runID, models.ScrapeProgressData{Phase: models.PhaseCycleStart})
	c.logPhase(ctx, runID, models.PhaseCycleStart, nil)

	if ctx.Err() != nil {
		return c.cancelRun(runID, "cancelled before discovery")
	}

	targets, discoveryErrs := c.discover(ctx, settings.EnabledPlatforms)
	for _, e := range discoveryErrs {
		e.ScrapeRunID = runID
		_ = c.runs.LogError(ctx, e)
	}

	if len(targets) == 0 {
		c.publish(runID, models.ScrapeProgressData{Phase: models.PhaseCycleFailed})
		return c.runs.UpdateRunStatus(ctx, runID, models.RunFailed)
	}

	c.publish(runID, models.ScrapeProgressData{Phase: models.PhaseDiscoveryComplete})
	c.logPhase(ctx, runID, models.PhaseDiscoveryComplete, nil)

	batches := prioritize(targets, settings.BatchSize)

	var anyErrors, storedAny bool

	for i, batch := range batches {
		if ctx.Err() != nil {
			return c.cancelRun(runID, "cancelled mid-cycle")
		}

		idx, total := i, len(batches)
		c.publish(runID, models.ScrapeProgressData{Phase: models.PhaseBatchStart, BatchIndex: &idx, BatchTotal: &total})
		c.logPhase(ctx, runID, models.PhaseBatchStart, nil)

		result := c.processBatch(ctx, runID, batch)
		if len(result.errs) > 0 {
			anyErrors = true
			for _, e := range result.errs {
				e.ScrapeRunID = runID
				_ = c.runs.LogError(ctx, e)
			}
		}
		if len(result.writes) > 0 {
			storedAny = true
		}

		c.enqueueBatch(ctx, runID, result, &anyErrors)

		c.publish(runID, models.ScrapeProgressData{Phase: models.PhaseBatchComplete, BatchIndex: &idx, BatchTotal: &total})
		c.logPhase(ctx, runID, models.PhaseBatchComplete, nil)
	}

	status, phase := models.RunCompleted, models.PhaseCycleComplete
	switch {
	case !storedAny:
		status, phase = models.RunFailed, models.PhaseCycleFailed
	case anyErrors:
		status = models.RunPartial
	}

	c.publish(runID, models.ScrapeProgressData{Phase: phase})
	c.logPhase(ctx, runID, phase, nil)

	return c.runs.UpdateRunStatus(ctx, runID, status)
}

func (c *Coordinator) enqueueBatch(ctx context.Context, runID string, result batchResult, anyErrors *bool) {
	wb := models.WriteBatch{
		ScrapeRunID: runID, CapturedAt: c.now(),
		Events: result.events, Writes: result.writes, Alerts: result.alerts,
	}

	accepted, dropped := c.writeQueue.Enqueue(wb)
	if !accepted {
		*anyErrors = true
		_ = c.runs.LogError(ctx, models.ScrapeError{
			ScrapeRunID: runID, ErrorType: models.ErrorTypeStore,
			ErrorMessage: "write queue saturated, batch dropped", OccurredAt: c.now(),
		})
		return
	}
	if dropped {
		_ = c.runs.LogError(ctx, models.ScrapeError{
			ScrapeRunID: runID, ErrorType: models.ErrorTypeStore,
			ErrorMessage: "write queue full, an older batch was evicted to make room", OccurredAt: c.now(),
		})
	}
}

func (c *Coordinator) cancelRun(runID, reason string) error {
	c.publish(runID, models.ScrapeProgressData{Phase: models.PhaseCycleFailed, ErrorKind: strPtr("cancelled")})

	bg := context.Background()
	_ = c.runs.LogError(bg, models.ScrapeError{
		ScrapeRunID: runID, ErrorType: models.ErrorTypeCancelled, ErrorMessage: reason, OccurredAt: c.now(),
	})
	return c.runs.UpdateRunStatus(bg, runID, models.RunFailed)
}

func (c *Coordinator) publish(runID string, data models.ScrapeProgressData) {
	if c.publisher == nil {
		return
	}
	data.ScrapeRunID = runID
	c.publisher.Publish(contracts.TopicScrapeProgress, models.ProgressEnvelope{
		Type: "scrape_progress", Timestamp: c.now(), Data: data,
	})
}

func (c *Coordinator) logPhase(ctx context.Context, runID string, phase models.ScrapePhase, platform *models.Platform) {
	_ = c.runs.LogPhase(ctx, models.ScrapePhaseLog{ScrapeRunID: runID, Phase: phase, Platform: platform, EnteredAt: c.now()})
}

func (c *Coordinator) recordUnmapped(ctx context.Context, me *contracts.MappingError) {
	if c.mappingStore == nil || me == nil {
		return
	}
	_ = c.mappingStore.RecordUnmappedMarket(ctx, models.UnmappedMarketLogEntry{
		Platform: me.Platform, RawKey: me.RawKey, FirstSeenAt: c.now(),
		OccurrenceCount: 1, Status: models.UnmappedStatusNew, ExampleRawOutcome: me.Detail,
	})
}

func (c *Coordinator) tryStart() bool {
	c.runningMu.Lock()
	defer c.runningMu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	return true
}

func (c *Coordinator) finish() {
	c.runningMu.Lock()
	c.running = false
	c.runningMu.Unlock()
}

// IsRunning reports whether a cycle is in flight; the scrape-control
// trigger endpoint uses this to return a clear refusal (§6).
func (c *Coordinator) IsRunning() bool {
	c.runningMu.Lock()
	defer c.runningMu.Unlock()
	return c.running
}

// semaphoreFor lazily (re)sizes a platform's concurrency gate against
// the live settings snapshot, since operators can change per-platform
// concurrency without a restart.
func (c *Coordinator) semaphoreFor(platform models.Platform) chan struct{} {
	size := c.concurrencyFor(platform)

	c.semMu.Lock()
	defer c.semMu.Unlock()
	sem, ok := c.semaphores[platform]
	if !ok || cap(sem) != size {
		sem = make(chan struct{}, size)
		c.semaphores[platform] = sem
	}
	return sem
}

func (c *Coordinator) concurrencyFor(platform models.Platform) int {
	s := c.settings.Current()
	switch platform {
	case models.PlatformBetPawa:
		return maxInt(1, s.MaxConcurrentBetPawa)
	case models.PlatformSportyBet:
		return maxInt(1, s.MaxConcurrentSportyBet)
	case models.PlatformBet9ja:
		return maxInt(1, s.MaxConcurrentBet9ja)
	default:
		return 1
	}
}

func (c *Coordinator) eventDeadline() time.Duration {
	s := c.settings.Current()
	if s.EventDeadlineSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.EventDeadlineSeconds) * time.Second
}

func classifyFetchError(err error) models.ScrapeErrorType {
	var netErr *platformclient.NetworkError
	var apiErr *platformclient.ApiError
	var parseErr *platformclient.ParseError
	switch {
	case errors.As(err, &netErr):
		return models.ErrorTypeNetwork
	case errors.As(err, &apiErr):
		return models.ErrorTypeAPI
	case errors.As(err, &parseErr):
		return models.ErrorTypeParse
	default:
		return models.ErrorTypeNetwork
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func strPtr(s string) *string { return &s }
