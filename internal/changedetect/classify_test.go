package changedetect

import (
	"testing"
	"time"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

func timeFromUnix(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func mkMapped(canonicalID string, outcomes ...models.MappedOutcome) models.MappedMarket {
	return models.MappedMarket{CanonicalID: canonicalID, Outcomes: outcomes}
}

func TestClassify_NewMarket(t *testing.T) {
	mapped := []models.MappedMarket{mkMapped("1X2_FT", models.MappedOutcome{Name: "home", Odds: 2.10, IsActive: true})}

	results := Classify(42, models.PlatformBetPawa, mapped, nil, 1700000000)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Change != contracts.ChangeNew {
		t.Errorf("expected ChangeNew, got %s", results[0].Change)
	}
	if !results[0].Write.Changed {
		t.Error("expected changed=true for a new market")
	}
}

func TestClassify_SameMarket_NoChange(t *testing.T) {
	mapped := []models.MappedMarket{mkMapped("1X2_FT",
		models.MappedOutcome{Name: "home", Odds: 2.10, IsActive: true},
		models.MappedOutcome{Name: "away", Odds: 3.40, IsActive: true},
	)}
	cached := &models.CachedSnapshot{Markets: []models.CachedMarket{{
		CanonicalID: "1X2_FT",
		Outcomes: []models.CachedOutcome{
			{Name: "home", Odds: 2.10, IsActive: true},
			{Name: "away", Odds: 3.40, IsActive: true},
		},
	}}}

	results := Classify(42, models.PlatformBetPawa, mapped, cached, 1700000000)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Change != contracts.ChangeSame {
		t.Errorf("expected ChangeSame, got %s", results[0].Change)
	}
	if results[0].Write.Changed {
		t.Error("expected changed=false when outcomes are identical")
	}
}

func TestClassify_PriceChange(t *testing.T) {
	mapped := []models.MappedMarket{mkMapped("1X2_FT",
		models.MappedOutcome{Name: "home", Odds: 2.10, IsActive: true},
	)}
	cached := &models.CachedSnapshot{Markets: []models.CachedMarket{{
		CanonicalID: "1X2_FT",
		Outcomes:    []models.CachedOutcome{{Name: "home", Odds: 2.05, IsActive: true}},
	}}}

	results := Classify(42, models.PlatformBetPawa, mapped, cached, 1700000000)
	if len(results) != 1 || results[0].Change != contracts.ChangeUpdated {
		t.Fatalf("expected 1 ChangeUpdated result, got %+v", results)
	}
	if results[0].Previous == nil {
		t.Fatal("expected Previous to be populated for the risk detector")
	}
}

func TestClassify_Disappeared(t *testing.T) {
	cached := &models.CachedSnapshot{Markets: []models.CachedMarket{{
		CanonicalID: "OU_FT_2.5",
		Outcomes: []models.CachedOutcome{
			{Name: "over", Odds: 1.85, IsActive: true},
			{Name: "under", Odds: 1.95, IsActive: true},
		},
	}}}

	results := Classify(42, models.PlatformSportyBet, nil, cached, 1700000000)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Change != contracts.ChangeDisappeared {
		t.Errorf("expected ChangeDisappeared, got %s", results[0].Change)
	}
	if results[0].Write.UnavailableAt == nil {
		t.Error("expected unavailable_at to be set for a disappeared market")
	}
	if !results[0].Write.Changed {
		t.Error("disappearance must be persisted as changed=true")
	}
}

func TestClassify_Returned(t *testing.T) {
	cachedTime := timeFromUnix(1699999000)
	cached := &models.CachedSnapshot{Markets: []models.CachedMarket{{
		CanonicalID:   "OU_FT_2.5",
		Outcomes:      []models.CachedOutcome{{Name: "over", Odds: 1.85, IsActive: true}},
		UnavailableAt: &cachedTime,
	}}}
	mapped := []models.MappedMarket{mkMapped("OU_FT_2.5", models.MappedOutcome{Name: "over", Odds: 1.85, IsActive: true})}

	results := Classify(42, models.PlatformSportyBet, mapped, cached, 1700000000)
	if len(results) != 1 || results[0].Change != contracts.ChangeReturned {
		t.Fatalf("expected 1 ChangeReturned result, got %+v", results)
	}
	if results[0].Write.UnavailableAt != nil {
		t.Error("expected unavailable_at cleared on return")
	}
}

func TestClassify_DisappearedOnlyOnce(t *testing.T) {
	already := timeFromUnix(1699999000)
	cached := &models.CachedSnapshot{Markets: []models.CachedMarket{{
		CanonicalID:   "OU_FT_2.5",
		UnavailableAt: &already,
	}}}

	results := Classify(42, models.PlatformSportyBet, nil, cached, 1700000000)
	if len(results) != 0 {
		t.Fatalf("expected no further disappearance events once already unavailable, got %d", len(results))
	}
}
