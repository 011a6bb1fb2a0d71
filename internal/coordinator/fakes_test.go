package coordinator

import (
	"context"
	"sync"

	"github.com/pawapay/pawarisk/internal/config"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// fakeClient is a scripted contracts.PlatformClient: one tournament,
// one event per tournament, and a canned FetchEvent payload keyed by
// external id.
type fakeClient struct {
	platform    models.Platform
	tournaments []models.RawTournament
	events      map[string][]models.RawEvent // by tournament external id
	payloads    map[string]contracts.RawMarketPayload
	fetchErr    error
	mu          sync.Mutex
	fetchCalls  int
}

func (f *fakeClient) Platform() models.Platform { return f.platform }

func (f *fakeClient) FetchTournaments(ctx context.Context) ([]models.RawTournament, error) {
	return f.tournaments, nil
}

func (f *fakeClient) FetchEventsByTournament(ctx context.Context, tournamentExternalID string) ([]models.RawEvent, error) {
	return f.events[tournamentExternalID], nil
}

func (f *fakeClient) FetchEvent(ctx context.Context, ref models.PlatformEventRef) (contracts.RawMarketPayload, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.fetchErr != nil {
		return contracts.RawMarketPayload{}, f.fetchErr
	}
	return f.payloads[ref.ExternalID], nil
}

// fakeMapper passes a fixed set of MappedMarket through regardless of
// the raw payload, so tests can control classification output directly.
type fakeMapper struct {
	platform models.Platform
	markets  map[string][]models.MappedMarket // by event ext id
}

func (f *fakeMapper) Platform() models.Platform { return f.platform }

func (f *fakeMapper) MapMarkets(raw contracts.RawMarketPayload, cache contracts.MappingCache) ([]models.MappedMarket, []*contracts.MappingError) {
	return f.markets[raw.EventExtID], nil
}

// fakeOddsCache is an in-memory stand-in for internal/oddscache.Cache.
type fakeOddsCache struct {
	mu        sync.Mutex
	snapshots map[int64]map[models.Platform]models.CachedSnapshot
}

func newFakeOddsCache() *fakeOddsCache {
	return &fakeOddsCache{snapshots: make(map[int64]map[models.Platform]models.CachedSnapshot)}
}

func (c *fakeOddsCache) GetSnapshot(eventID int64, bookmaker models.Platform) (models.CachedSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byPlatform, ok := c.snapshots[eventID]
	if !ok {
		return models.CachedSnapshot{}, false
	}
	s, ok := byPlatform[bookmaker]
	return s, ok
}

func (c *fakeOddsCache) GetBetPawaSnapshots(eventID int64) []models.CachedSnapshot {
	return nil
}

func (c *fakeOddsCache) PutSnapshot(eventID int64, bookmaker models.Platform, markets []models.MappedMarket, capturedAt int64) models.CachedSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := models.CachedSnapshot{EventID: eventID, BookmakerSlug: bookmaker}
	if _, ok := c.snapshots[eventID]; !ok {
		c.snapshots[eventID] = make(map[models.Platform]models.CachedSnapshot)
	}
	c.snapshots[eventID][bookmaker] = snap
	return snap
}

func (c *fakeOddsCache) Stats() contracts.OddsCacheStats { return contracts.OddsCacheStats{} }

// fakeWriteQueue records every enqueued batch; no dropping, for tests
// that only care what the coordinator handed off.
type fakeWriteQueue struct {
	mu      sync.Mutex
	batches []models.WriteBatch
}

func (q *fakeWriteQueue) Enqueue(batch models.WriteBatch) (bool, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.batches = append(q.batches, batch)
	return true, false
}

// fakePublisher records every published envelope per topic.
type fakePublisher struct {
	mu   sync.Mutex
	msgs map[string][]models.ProgressEnvelope
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{msgs: make(map[string][]models.ProgressEnvelope)}
}

func (p *fakePublisher) Publish(topic string, envelope models.ProgressEnvelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs[topic] = append(p.msgs[topic], envelope)
}

func (p *fakePublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs[topic])
}

// fakeRunStore is an in-memory contracts.RunStore.
type fakeRunStore struct {
	mu      sync.Mutex
	runs    map[string]models.ScrapeRun
	phases  []models.ScrapePhaseLog
	errs    []models.ScrapeError
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[string]models.ScrapeRun)}
}

func (s *fakeRunStore) CreateRun(ctx context.Context, run models.ScrapeRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *fakeRunStore) UpdateRunStatus(ctx context.Context, runID string, status models.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.runs[runID]
	run.Status = status
	s.runs[runID] = run
	return nil
}

func (s *fakeRunStore) LogPhase(ctx context.Context, entry models.ScrapePhaseLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases = append(s.phases, entry)
	return nil
}

func (s *fakeRunStore) LogError(ctx context.Context, entry models.ScrapeError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, entry)
	return nil
}

func (s *fakeRunStore) FailAllRunning(ctx context.Context) (int, error) { return 0, nil }

func (s *fakeRunStore) FindStaleRunning(ctx context.Context, staleSince int64) ([]models.ScrapeRun, error) {
	return nil, nil
}

func (s *fakeRunStore) LastActivity(ctx context.Context, runID string) (int64, error) {
	return 0, nil
}

func (s *fakeRunStore) status(runID string) models.RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[runID].Status
}

// fakeSettings is a constant SettingsSource.
type fakeSettings struct {
	settings config.Settings
}

func (f fakeSettings) Current() config.Settings { return f.settings }
