package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/pawapay/pawarisk/internal/oddscache"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

func TestJoinBySportradarID_MergesAcrossPlatforms(t *testing.T) {
	kickoff := time.Now().Add(time.Hour)
	perPlatform := map[models.Platform][]models.RawEvent{
		models.PlatformBetPawa:   {{ExternalID: "bp-1", SRID: "srid-1", Kickoff: kickoff, HomeTeam: "A", AwayTeam: "B"}},
		models.PlatformSportyBet: {{ExternalID: "sb-1", SRID: "srid-1", Kickoff: kickoff, HomeTeam: "A", AwayTeam: "B"}},
	}

	targets := joinBySportradarID(perPlatform)
	if len(targets) != 1 {
		t.Fatalf("expected 1 merged target, got %d", len(targets))
	}
	got := targets[0]
	if got.SportradarID != "srid-1" {
		t.Errorf("SportradarID = %q, want srid-1", got.SportradarID)
	}
	if got.CoverageCount() != 2 {
		t.Errorf("CoverageCount = %d, want 2", got.CoverageCount())
	}
	if !got.HasBetPawa() {
		t.Error("expected HasBetPawa true")
	}
	if want := oddscache.SyntheticEventID(models.PlatformBetPawa, "bp-1"); got.EventID != want {
		t.Errorf("EventID = %d, want anchor on betpawa id %d", got.EventID, want)
	}
}

func TestJoinBySportradarID_StandaloneWhenNoSRID(t *testing.T) {
	perPlatform := map[models.Platform][]models.RawEvent{
		models.PlatformSportyBet: {{ExternalID: "sb-1", SRID: "", Kickoff: time.Now()}},
	}

	targets := joinBySportradarID(perPlatform)
	if len(targets) != 1 {
		t.Fatalf("expected 1 standalone target, got %d", len(targets))
	}
	if targets[0].HasBetPawa() {
		t.Error("expected standalone competitor event to not have betpawa")
	}
	if targets[0].CoverageCount() != 1 {
		t.Errorf("CoverageCount = %d, want 1", targets[0].CoverageCount())
	}
}

func TestJoinBySportradarID_CompetitorOnlySRIDGroupHasNoBetPawaAnchor(t *testing.T) {
	perPlatform := map[models.Platform][]models.RawEvent{
		models.PlatformSportyBet: {{ExternalID: "sb-1", SRID: "srid-1", Kickoff: time.Now()}},
		models.PlatformBet9ja:    {{ExternalID: "b9-1", SRID: "srid-1", Kickoff: time.Now()}},
	}

	targets := joinBySportradarID(perPlatform)
	if len(targets) != 1 {
		t.Fatalf("expected 1 merged target, got %d", len(targets))
	}
	if targets[0].HasBetPawa() {
		t.Error("expected no betpawa coverage")
	}
	if targets[0].CoverageCount() != 2 {
		t.Errorf("CoverageCount = %d, want 2", targets[0].CoverageCount())
	}
}

func TestDiscoverPlatform_ReturnsErrorOnlyWhenNothingCollected(t *testing.T) {
	c := New(Deps{Settings: fakeSettings{}})

	client := &fakeClient{
		platform:    models.PlatformBetPawa,
		tournaments: []models.RawTournament{{ExternalID: "t1"}},
		events:      map[string][]models.RawEvent{},
	}
	events, err := c.discoverPlatform(context.Background(), models.PlatformBetPawa, client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}

var _ contracts.PlatformClient = (*fakeClient)(nil)
