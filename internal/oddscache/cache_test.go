package oddscache

import (
	"testing"
	"time"

	"github.com/pawapay/pawarisk/pkg/models"
)

func TestCache_PutAndGetSnapshot(t *testing.T) {
	c := New()
	line := 2.5
	markets := []models.MappedMarket{{
		CanonicalID: "OU_FT_2.5", Line: &line,
		Outcomes: []models.MappedOutcome{{Name: "over", Odds: 1.85, IsActive: true}},
	}}

	c.PutSnapshot(42, models.PlatformBetPawa, markets, 1700000000)

	snap, ok := c.GetSnapshot(42, models.PlatformBetPawa)
	if !ok {
		t.Fatal("expected snapshot to be present")
	}
	if snap.LastConfirmedAt.IsZero() {
		t.Error("expected LastConfirmedAt to be set")
	}
	if snap.CapturedAt != snap.LastConfirmedAt {
		t.Error("expected captured_at == last_confirmed_at on a fresh put (§4.4)")
	}
	if len(snap.Markets) != 1 || snap.Markets[0].CanonicalID != "OU_FT_2.5" {
		t.Fatalf("unexpected markets: %+v", snap.Markets)
	}
}

func TestCache_GetSnapshot_Miss(t *testing.T) {
	c := New()
	if _, ok := c.GetSnapshot(999, models.PlatformBet9ja); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestCache_PutRawSnapshot_PreservesUnavailableAtAndGroups(t *testing.T) {
	c := New()
	unavailableSince := time.Now().Add(-5 * time.Minute)
	snap := models.CachedSnapshot{
		EventID:       7,
		BookmakerSlug: models.PlatformBet9ja,
		Markets: []models.CachedMarket{{
			CanonicalID:   "1x2",
			Outcomes:      []models.CachedOutcome{{Name: "home", Odds: 2.1, IsActive: true}},
			MarketGroups:  []string{"main"},
			UnavailableAt: &unavailableSince,
		}},
	}

	c.PutRawSnapshot(snap)

	got, ok := c.GetSnapshot(7, models.PlatformBet9ja)
	if !ok {
		t.Fatal("expected snapshot to be present")
	}
	if got.Markets[0].UnavailableAt == nil || !got.Markets[0].UnavailableAt.Equal(unavailableSince) {
		t.Error("expected UnavailableAt to survive PutRawSnapshot unchanged")
	}
	if len(got.Markets[0].MarketGroups) != 1 || got.Markets[0].MarketGroups[0] != "main" {
		t.Errorf("expected MarketGroups to survive PutRawSnapshot unchanged, got %v", got.Markets[0].MarketGroups)
	}
}

func TestCache_GetBetPawaSnapshots_FiltersByEvent(t *testing.T) {
	c := New()
	c.PutSnapshot(1, models.PlatformBetPawa, nil, 1700000000)
	c.PutSnapshot(1, models.PlatformSportyBet, nil, 1700000000)
	c.PutSnapshot(2, models.PlatformBetPawa, nil, 1700000000)

	snaps := c.GetBetPawaSnapshots(1)
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots for event 1, got %d", len(snaps))
	}
}

func TestSyntheticEventID_StableAndPositive(t *testing.T) {
	a := SyntheticEventID(models.PlatformSportyBet, "ext-123")
	b := SyntheticEventID(models.PlatformSportyBet, "ext-123")
	if a != b {
		t.Fatal("expected stable synthetic id for the same input")
	}
	if a <= 0 {
		t.Fatalf("expected positive synthetic id, got %d", a)
	}

	c := SyntheticEventID(models.PlatformBet9ja, "ext-123")
	if a == c {
		t.Fatal("expected different platforms to produce different synthetic ids")
	}
}
