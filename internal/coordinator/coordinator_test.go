package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/pawapay/pawarisk/internal/config"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

func betpawaOutcomes(home, draw, away float64) []models.MappedOutcome {
	return []models.MappedOutcome{
		{Name: "home", Odds: home, IsActive: true, Position: 0},
		{Name: "draw", Odds: draw, IsActive: true, Position: 1},
		{Name: "away", Odds: away, IsActive: true, Position: 2},
	}
}

func buildDeps(t *testing.T) (*fakeClient, *fakeRunStore, *fakeWriteQueue, *fakePublisher, Deps) {
	t.Helper()

	betpawa := &fakeClient{
		platform:    models.PlatformBetPawa,
		tournaments: []models.RawTournament{{ExternalID: "t1", SRID: "srid-t1"}},
		events: map[string][]models.RawEvent{
			"t1": {{ExternalID: "bp-e1", SRID: "srid-e1", Kickoff: time.Now().Add(time.Hour), HomeTeam: "Home", AwayTeam: "Away"}},
		},
		payloads: map[string]contracts.RawMarketPayload{
			"bp-e1": {Platform: models.PlatformBetPawa, EventExtID: "bp-e1"},
		},
	}

	sporty := &fakeClient{
		platform:    models.PlatformSportyBet,
		tournaments: []models.RawTournament{{ExternalID: "s-t1", SRID: "srid-t1"}},
		events: map[string][]models.RawEvent{
			"s-t1": {{ExternalID: "sb-e1", SRID: "srid-e1", Kickoff: time.Now().Add(time.Hour), HomeTeam: "Home", AwayTeam: "Away"}},
		},
		payloads: map[string]contracts.RawMarketPayload{
			"sb-e1": {Platform: models.PlatformSportyBet, EventExtID: "sb-e1"},
		},
	}

	betpawaMapper := &fakeMapper{
		platform: models.PlatformBetPawa,
		markets: map[string][]models.MappedMarket{
			"bp-e1": {{CanonicalID: "1x2", Name: "Match Winner", Outcomes: betpawaOutcomes(1.9, 3.4, 4.1)}},
		},
	}
	sportyMapper := &fakeMapper{
		platform: models.PlatformSportyBet,
		markets: map[string][]models.MappedMarket{
			"sb-e1": {{CanonicalID: "1x2", Name: "Match Winner", Outcomes: betpawaOutcomes(1.95, 3.3, 4.0)}},
		},
	}

	runs := newFakeRunStore()
	wq := &fakeWriteQueue{}
	pub := newFakePublisher()

	settings := config.Defaults()
	settings.EnabledPlatforms = []models.Platform{models.PlatformBetPawa, models.PlatformSportyBet}

	deps := Deps{
		Clients: map[models.Platform]contracts.PlatformClient{
			models.PlatformBetPawa:   betpawa,
			models.PlatformSportyBet: sporty,
		},
		Mappers: map[models.Platform]contracts.PlatformMapper{
			models.PlatformBetPawa:   betpawaMapper,
			models.PlatformSportyBet: sportyMapper,
		},
		OddsCache:  newFakeOddsCache(),
		WriteQueue: wq,
		Publisher:  pub,
		Runs:       runs,
		Settings:   fakeSettings{settings: settings},
	}

	return betpawa, runs, wq, pub, deps
}

func TestRunCycle_HappyPath_CompletesAndEnqueuesBatch(t *testing.T) {
	_, runs, wq, pub, deps := buildDeps(t)
	c := New(deps)

	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(wq.batches) != 1 {
		t.Fatalf("expected 1 batch enqueued, got %d", len(wq.batches))
	}
	batch := wq.batches[0]
	if len(batch.Writes) == 0 {
		t.Fatalf("expected writes in batch, got none")
	}
	if len(batch.Events) != 1 {
		t.Fatalf("expected 1 joined event, got %d", len(batch.Events))
	}

	var foundRun bool
	for id, run := range runs.runs {
		foundRun = true
		if run.Status != models.RunCompleted {
			t.Errorf("run %s status = %s, want completed", id, run.Status)
		}
	}
	if !foundRun {
		t.Fatal("expected a run to be recorded")
	}

	if pub.count(contracts.TopicScrapeProgress) == 0 {
		t.Error("expected scrape_progress messages to be published")
	}
}

func TestRunCycle_RefusesConcurrentRun(t *testing.T) {
	_, _, _, _, deps := buildDeps(t)
	c := New(deps)

	c.runningMu.Lock()
	c.running = true
	c.runningMu.Unlock()

	if err := c.RunCycle(context.Background()); err != ErrAlreadyRunning {
		t.Fatalf("RunCycle = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunCycle_NoTargetsFailsRun(t *testing.T) {
	runs := newFakeRunStore()
	settings := config.Defaults()
	settings.EnabledPlatforms = []models.Platform{models.PlatformBetPawa}

	deps := Deps{
		Clients: map[models.Platform]contracts.PlatformClient{
			models.PlatformBetPawa: &fakeClient{platform: models.PlatformBetPawa},
		},
		Mappers:    map[models.Platform]contracts.PlatformMapper{},
		OddsCache:  newFakeOddsCache(),
		WriteQueue: &fakeWriteQueue{},
		Publisher:  newFakePublisher(),
		Runs:       runs,
		Settings:   fakeSettings{settings: settings},
	}
	c := New(deps)

	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	for _, run := range runs.runs {
		if run.Status != models.RunFailed {
			t.Errorf("status = %s, want failed", run.Status)
		}
	}
}

func TestRunCycle_CancelledContextFailsRun(t *testing.T) {
	_, runs, _, _, deps := buildDeps(t)
	c := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	for _, run := range runs.runs {
		if run.Status != models.RunFailed {
			t.Errorf("status = %s, want failed", run.Status)
		}
	}
	if len(runs.errs) == 0 {
		t.Fatal("expected a cancelled ScrapeError to be logged")
	}
}

func TestConcurrencyFor_DefaultsToOneForUnknownPlatform(t *testing.T) {
	_, _, _, _, deps := buildDeps(t)
	c := New(deps)
	if got := c.concurrencyFor(models.Platform("unknown")); got != 1 {
		t.Errorf("concurrencyFor unknown = %d, want 1", got)
	}
}

func TestEventDeadline_DefaultsWhenUnset(t *testing.T) {
	settings := config.Defaults()
	settings.EventDeadlineSeconds = 0
	c := New(Deps{Settings: fakeSettings{settings: settings}})
	if got := c.eventDeadline(); got != 30*time.Second {
		t.Errorf("eventDeadline = %v, want 30s", got)
	}
}
