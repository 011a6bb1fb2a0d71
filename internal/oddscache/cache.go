// Package oddscache holds the process-wide singleton of latest
// canonical markets per (event, bookmaker), the single source of
// truth change detection and risk alerting compare against (§4.4).
package oddscache

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

type key struct {
	eventID   int64
	bookmaker models.Platform
}

// Cache is the in-memory singleton. One RWMutex guards the whole map,
// the same single-lock idiom ws-broadcaster's Hub uses for its client
// set — the per-key keyed-mutex design in the write path is achieved
// by always updating one key's full snapshot atomically inside the
// write lock, never partially.
type Cache struct {
	mu        sync.RWMutex
	snapshots map[key]models.CachedSnapshot
}

var _ contracts.OddsCache = (*Cache)(nil)

func New() *Cache {
	return &Cache{snapshots: make(map[key]models.CachedSnapshot)}
}

// PutSnapshot replaces the cached snapshot for (eventID, bookmaker).
// Both captured_at and last_confirmed_at are set to now (§4.4
// timestamp invariant). The write handler, not this cache, is what
// notifies odds_updates subscribers after a batch commits.
func (c *Cache) PutSnapshot(eventID int64, bookmaker models.Platform, mapped []models.MappedMarket, nowUnix int64) models.CachedSnapshot {
	now := time.Unix(nowUnix, 0).UTC()
	markets := make([]models.CachedMarket, 0, len(mapped))
	for _, m := range mapped {
		outcomes := make([]models.CachedOutcome, len(m.Outcomes))
		for i, o := range m.Outcomes {
			outcomes[i] = models.CachedOutcome{Name: o.Name, Odds: o.Odds, IsActive: o.IsActive}
		}
		markets = append(markets, models.CachedMarket{
			CanonicalID: m.CanonicalID,
			Name:        m.Name,
			Line:        m.Line,
			Handicap:    m.Handicap,
			Outcomes:    outcomes,
		})
	}

	snap := models.CachedSnapshot{
		EventID:         eventID,
		BookmakerSlug:   bookmaker,
		CapturedAt:      now,
		LastConfirmedAt: now,
		Markets:         markets,
	}

	k := key{eventID: eventID, bookmaker: bookmaker}
	c.mu.Lock()
	c.snapshots[k] = snap
	c.mu.Unlock()

	return snap
}

// PutRawSnapshot installs a fully-formed snapshot, used by warmup,
// which already has CachedSnapshot values loaded straight from the
// durable store rather than freshly-mapped markets.
func (c *Cache) PutRawSnapshot(snap models.CachedSnapshot) {
	k := key{eventID: snap.EventID, bookmaker: snap.BookmakerSlug}
	c.mu.Lock()
	c.snapshots[k] = snap
	c.mu.Unlock()
}

func (c *Cache) GetSnapshot(eventID int64, bookmaker models.Platform) (models.CachedSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.snapshots[key{eventID: eventID, bookmaker: bookmaker}]
	return s, ok
}

func (c *Cache) GetBetPawaSnapshots(eventID int64) []models.CachedSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.CachedSnapshot
	for k, s := range c.snapshots {
		if k.eventID == eventID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookmakerSlug < out[j].BookmakerSlug })
	return out
}

func (c *Cache) Stats() contracts.OddsCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events := make(map[int64]bool)
	for k := range c.snapshots {
		events[k.eventID] = true
	}
	return contracts.OddsCacheStats{EventCount: len(events), SnapshotCount: len(c.snapshots)}
}

// SyntheticEventID derives a stable positive internal id for a
// competitor-only event with no cross-platform match, resolving Open
// Question 3 in favour of a synthetic positive convention rather than
// negative ids.
func SyntheticEventID(bookmaker models.Platform, externalID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(bookmaker))
	h.Write([]byte{0})
	h.Write([]byte(externalID))
	// Mask off the sign bit so the result is always positive and never
	// collides with a real auto-increment id space starting at 1.
	return int64(h.Sum64()&0x7FFFFFFFFFFFFFFF) | (1 << 62)
}
