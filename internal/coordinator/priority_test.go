package coordinator

import (
	"testing"
	"time"

	"github.com/pawapay/pawarisk/pkg/models"
)

func target(id int64, kickoff time.Time, platforms ...models.Platform) models.EventTarget {
	refs := make([]models.PlatformEventRef, len(platforms))
	for i, p := range platforms {
		refs[i] = models.PlatformEventRef{Platform: p, ExternalID: "ext"}
	}
	return models.EventTarget{EventID: id, KickoffTime: kickoff, Platforms: refs}
}

func TestPrioritize_OrdersByKickoffThenCoverageThenBetPawa(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)

	soonNarrow := target(1, now, models.PlatformSportyBet)
	soonWide := target(2, now, models.PlatformBetPawa, models.PlatformSportyBet, models.PlatformBet9ja)
	laterWide := target(3, later, models.PlatformBetPawa, models.PlatformSportyBet)

	batches := prioritize([]models.EventTarget{laterWide, soonNarrow, soonWide}, 10)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	got := batches[0]
	if got[0].EventID != 2 || got[1].EventID != 1 || got[2].EventID != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestPrioritize_PartitionsIntoBatchSize(t *testing.T) {
	now := time.Now()
	targets := make([]models.EventTarget, 5)
	for i := range targets {
		targets[i] = target(int64(i), now.Add(time.Duration(i)*time.Minute), models.PlatformBetPawa)
	}

	batches := prioritize(targets, 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[1]) != 2 || len(batches[2]) != 1 {
		t.Fatalf("unexpected batch sizes: %v %v %v", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestPrioritize_ZeroBatchSizeUsesDefault(t *testing.T) {
	targets := []models.EventTarget{target(1, time.Now(), models.PlatformBetPawa)}
	batches := prioritize(targets, 0)
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("unexpected batches: %+v", batches)
	}
}
