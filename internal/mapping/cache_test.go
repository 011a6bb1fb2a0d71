package mapping

import (
	"context"
	"testing"
	"time"

	"github.com/pawapay/pawarisk/pkg/models"
)

type fakeStore struct {
	mappings []models.MarketMapping
}

func (f *fakeStore) LoadActiveMappings(ctx context.Context) ([]models.MarketMapping, error) {
	return f.mappings, nil
}

func (f *fakeStore) RecordUnmappedMarket(ctx context.Context, entry models.UnmappedMarketLogEntry) error {
	return nil
}

func TestCache_FindByBetPawaID(t *testing.T) {
	c := New(&fakeStore{})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	m, ok := c.FindByBetPawaID("1")
	if !ok {
		t.Fatal("expected to find mapping for betpawa id 1")
	}
	if m.CanonicalID != "1X2_FT" {
		t.Errorf("expected 1X2_FT, got %s", m.CanonicalID)
	}
}

func TestCache_DBMappingWinsOverCode(t *testing.T) {
	override := models.MarketMapping{
		CanonicalID: "1X2_FT",
		Name:        "Match Result (operator override)",
		Handler:     models.HandlerSimple,
		BetPawaID:   "1",
		SportyBetID: "1X2",
		Bet9jaKey:   "S_1X2",
		IsActive:    true,
		Source:      "db",
		UpdatedAt:   time.Now(),
	}
	c := New(&fakeStore{mappings: []models.MarketMapping{override}})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	m, ok := c.FindByBetPawaID("1")
	if !ok {
		t.Fatal("expected to find mapping")
	}
	if m.Source != "db" {
		t.Errorf("expected db mapping to win, got source=%s", m.Source)
	}

	stats := c.Stats()
	if stats.DBCount != 1 {
		t.Errorf("expected DBCount 1, got %d", stats.DBCount)
	}
}

func TestCache_Bet9jaLongestPrefixMatch(t *testing.T) {
	c := New(&fakeStore{})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// "S_OU@2.5" is a stored key (OU_FT_2.5); a raw key with an outcome
	// suffix appended must still resolve to it.
	m, ok := c.FindByBet9jaKey("S_OU@2.5_O")
	if !ok {
		t.Fatal("expected prefix match for S_OU@2.5_O")
	}
	if m.CanonicalID != "OU_FT_2.5" {
		t.Errorf("expected OU_FT_2.5, got %s", m.CanonicalID)
	}
}

func TestCache_Bet9jaNoMatchForUnknownKey(t *testing.T) {
	c := New(&fakeStore{})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if _, ok := c.FindByBet9jaKey("S_TOTALLY_UNKNOWN"); ok {
		t.Fatal("expected no match for unknown key")
	}
}

func TestCache_RefreshIsAtomic(t *testing.T) {
	store := &fakeStore{}
	c := New(store)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	before := c.snapshot()

	store.mappings = []models.MarketMapping{{
		CanonicalID: "NEW_MARKET", Handler: models.HandlerSimple,
		BetPawaID: "NEWID", IsActive: true, Source: "db",
	}}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// The snapshot taken before Refresh must be untouched.
	if _, ok := before.byBetPawa["NEWID"]; ok {
		t.Fatal("pre-refresh snapshot must not see post-refresh data")
	}
	if _, ok := c.FindByBetPawaID("NEWID"); !ok {
		t.Fatal("expected new mapping to be visible after refresh")
	}
}
