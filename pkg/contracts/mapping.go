package contracts

import (
	"context"

	"github.com/pawapay/pawarisk/pkg/models"
)

// MappingCache is the read surface the mapper and coordinator depend on.
// internal/mapping.Cache is the only implementation; the interface
// exists so mapper unit tests can supply a fixed catalogue.
type MappingCache interface {
	FindByBetPawaID(id string) (models.MarketMapping, bool)
	FindBySportyBetID(id string) (models.MarketMapping, bool)
	// FindByBet9jaKey resolves the longest-prefix match for a flat
	// Bet9ja key, since handicap/over-under keys carry a suffix.
	FindByBet9jaKey(key string) (models.MarketMapping, bool)

	Stats() models.MappingCacheStats

	// Refresh atomically swaps in a freshly merged code+db view.
	Refresh(ctx context.Context) error
}

// MappingStore is the persistence seam MappingCache.Refresh reads from
// and the catalogue admin surface writes through.
type MappingStore interface {
	LoadActiveMappings(ctx context.Context) ([]models.MarketMapping, error)
	RecordUnmappedMarket(ctx context.Context, entry models.UnmappedMarketLogEntry) error
}
