package contracts

import "github.com/pawapay/pawarisk/pkg/models"

// OddsCache is the in-process store of the latest confirmed markets per
// (event, bookmaker), the single source of truth change detection and
// risk alerting compare new fetches against (§4.4, §4.5).
type OddsCache interface {
	GetSnapshot(eventID int64, bookmaker models.Platform) (models.CachedSnapshot, bool)
	GetBetPawaSnapshots(eventID int64) []models.CachedSnapshot

	PutSnapshot(eventID int64, bookmaker models.Platform, markets []models.MappedMarket, capturedAt int64) models.CachedSnapshot

	Stats() OddsCacheStats
}

// OddsCacheStats is a coarse health summary surfaced on admin endpoints.
type OddsCacheStats struct {
	EventCount    int
	SnapshotCount int
}

// ClassifiedMarket is one change-detection result: the market's new
// state paired with how it relates to the prior cycle's market at the
// same JoinKey.
type ClassifiedMarket struct {
	Market models.CachedMarket
	Change ChangeKind
}

// ChangeKind is the outcome of comparing a market across two cycles.
type ChangeKind string

const (
	ChangeNew         ChangeKind = "new"
	ChangeReturned    ChangeKind = "returned"
	ChangeDisappeared ChangeKind = "disappeared"
	ChangeSame        ChangeKind = "same"
	ChangeUpdated     ChangeKind = "updated"
)
