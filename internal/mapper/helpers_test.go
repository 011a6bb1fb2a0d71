package mapper

import (
	"context"

	"github.com/pawapay/pawarisk/internal/mapping"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// fakeMappingStore supplies operator mappings in tests; by default the
// code catalogue alone is exercised.
type fakeMappingStore struct {
	mappings []models.MarketMapping
}

func (f *fakeMappingStore) LoadActiveMappings(ctx context.Context) ([]models.MarketMapping, error) {
	return f.mappings, nil
}

func (f *fakeMappingStore) RecordUnmappedMarket(ctx context.Context, entry models.UnmappedMarketLogEntry) error {
	return nil
}

func newTestCache(store *fakeMappingStore) contracts.MappingCache {
	c := mapping.New(store)
	if err := c.Initialize(context.Background()); err != nil {
		panic(err)
	}
	return c
}

func testPayload(raw []byte) contracts.RawMarketPayload {
	return contracts.RawMarketPayload{Raw: raw}
}
