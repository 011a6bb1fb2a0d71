package coordinator

import (
	"sort"

	"github.com/pawapay/pawarisk/pkg/models"
)

const defaultBatchSize = 50

// prioritize orders EventTargets by (kickoff ASC, -coverage_count,
// has_betpawa DESC) and partitions them into batches of at most
// batchSize, per §4.9 step 2: soonest kickoff first, broader coverage
// ahead of narrower, reference-platform presence breaking remaining ties.
func prioritize(targets []models.EventTarget, batchSize int) [][]models.EventTarget {
	sorted := make([]models.EventTarget, len(targets))
	copy(sorted, targets)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.KickoffTime.Equal(b.KickoffTime) {
			return a.KickoffTime.Before(b.KickoffTime)
		}
		if a.CoverageCount() != b.CoverageCount() {
			return a.CoverageCount() > b.CoverageCount()
		}
		return a.HasBetPawa() && !b.HasBetPawa()
	})

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var batches [][]models.EventTarget
	for i := 0; i < len(sorted); i += batchSize {
		end := i + batchSize
		if end > len(sorted) {
			end = len(sorted)
		}
		batches = append(batches, sorted[i:end])
	}
	return batches
}
