package mapping

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// indexes is the immutable snapshot swapped atomically on refresh, the
// copy-on-write discipline §5 requires: readers never observe a
// partial rebuild.
type indexes struct {
	byBetPawa   map[string]models.MarketMapping
	bySportyBet map[string]models.MarketMapping
	byBet9ja    map[string]models.MarketMapping
	bet9jaKeysDesc []string // bet9ja keys sorted longest-first, for prefix match
	codeCount   int
	dbCount     int
}

// Cache is the process-wide singleton merging code and operator
// mappings (§4.2). The zero value is not usable; construct with New.
type Cache struct {
	store   contracts.MappingStore
	current atomic.Pointer[indexes]
}

var _ contracts.MappingCache = (*Cache)(nil)

func New(store contracts.MappingStore) *Cache {
	return &Cache{store: store}
}

// Initialize builds the first index set from code mappings plus
// whatever the store currently holds. Must be called before the
// coordinator starts (§4.2).
func (c *Cache) Initialize(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Refresh reloads operator mappings and atomically replaces the index
// set. Existing readers keep using the old *indexes until they next
// call a lookup method, so a refresh never tears a read.
func (c *Cache) Refresh(ctx context.Context) error {
	dbMappings, err := c.store.LoadActiveMappings(ctx)
	if err != nil {
		return err
	}
	c.current.Store(build(Code(), dbMappings))
	return nil
}

// build merges code and db entries by canonical_id (db wins) and
// indexes the result by each platform's id.
func build(code, db []models.MarketMapping) *indexes {
	merged := make(map[string]models.MarketMapping, len(code)+len(db))
	for _, m := range code {
		merged[m.CanonicalID] = m
	}
	dbCount := 0
	for _, m := range db {
		if !m.IsActive {
			continue
		}
		merged[m.CanonicalID] = m
		dbCount++
	}

	idx := &indexes{
		byBetPawa:   make(map[string]models.MarketMapping),
		bySportyBet: make(map[string]models.MarketMapping),
		byBet9ja:    make(map[string]models.MarketMapping),
		codeCount:   len(code),
		dbCount:     dbCount,
	}

	for _, m := range merged {
		if m.BetPawaID != "" {
			idx.byBetPawa[m.BetPawaID] = m
		}
		if m.SportyBetID != "" {
			idx.bySportyBet[m.SportyBetID] = m
		}
		if m.Bet9jaKey != "" {
			idx.byBet9ja[m.Bet9jaKey] = m
		}
	}

	keys := make([]string, 0, len(idx.byBet9ja))
	for k := range idx.byBet9ja {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	idx.bet9jaKeysDesc = keys

	return idx
}

func (c *Cache) snapshot() *indexes {
	idx := c.current.Load()
	if idx == nil {
		// Initialize was never called; behave as an empty catalogue
		// rather than panic, so a misordered startup fails softly.
		return &indexes{
			byBetPawa:   map[string]models.MarketMapping{},
			bySportyBet: map[string]models.MarketMapping{},
			byBet9ja:    map[string]models.MarketMapping{},
		}
	}
	return idx
}

func (c *Cache) FindByBetPawaID(id string) (models.MarketMapping, bool) {
	m, ok := c.snapshot().byBetPawa[id]
	return m, ok
}

func (c *Cache) FindBySportyBetID(id string) (models.MarketMapping, bool) {
	m, ok := c.snapshot().bySportyBet[id]
	return m, ok
}

// FindByBet9jaKey resolves the longest stored key that is a prefix of
// the raw key, since Bet9ja embeds outcome and line into one flat
// string (e.g. "S_OU@2.5_O" is matched by stored key "S_OU@2.5").
func (c *Cache) FindByBet9jaKey(rawKey string) (models.MarketMapping, bool) {
	idx := c.snapshot()
	for _, stored := range idx.bet9jaKeysDesc {
		if len(stored) <= len(rawKey) && rawKey[:len(stored)] == stored {
			return idx.byBet9ja[stored], true
		}
	}
	return models.MarketMapping{}, false
}

func (c *Cache) Stats() models.MappingCacheStats {
	idx := c.snapshot()
	return models.MappingCacheStats{
		CodeCount: idx.codeCount,
		DBCount:   idx.dbCount,
		ByPlatform: map[models.Platform]int{
			models.PlatformBetPawa:   len(idx.byBetPawa),
			models.PlatformSportyBet: len(idx.bySportyBet),
			models.PlatformBet9ja:    len(idx.byBet9ja),
		},
	}
}
