package models

import "time"

// OutcomeMapping maps one canonical outcome to each platform's
// outcome descriptor, in catalogue display order.
type OutcomeMapping struct {
	CanonicalOutcomeID string
	Position           int
	BetPawaName        string
	SportyBetDesc      string
	Bet9jaSuffix       string
}

// MarketMapping is one immutable catalogue entry. Any platform ID may
// be empty, meaning that platform doesn't offer (or can't be mapped
// to) this canonical market.
type MarketMapping struct {
	CanonicalID string
	Name        string
	Handler     HandlerKind

	BetPawaID   string
	SportyBetID string
	Bet9jaKey   string

	Outcomes []OutcomeMapping

	Source   string // "code" or "db"
	IsActive bool
	Priority int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UnmappedMarketStatus is the lifecycle state of an unmapped_market_log row.
type UnmappedMarketStatus string

const (
	UnmappedStatusNew     UnmappedMarketStatus = "new"
	UnmappedStatusMapped  UnmappedMarketStatus = "mapped"
	UnmappedStatusIgnored UnmappedMarketStatus = "ignored"
)

// UnmappedMarketLogEntry is the accumulator-of-first-seen record for a
// raw platform market the catalogue could not map.
type UnmappedMarketLogEntry struct {
	Platform          Platform
	RawKey            string
	FirstSeenAt       time.Time
	OccurrenceCount   int64
	Status            UnmappedMarketStatus
	ExampleRawOutcome string
}

// MappingAuditLogEntry records a mutation to a user_market_mappings row.
type MappingAuditLogEntry struct {
	CanonicalID string
	Action      string // created, updated, deactivated
	ActorID     string
	Before      string // JSON snapshot, empty for creation
	After       string // JSON snapshot, empty for deactivation
	OccurredAt  time.Time
}

// MappingCacheStats summarizes the current state of the MappingCache.
type MappingCacheStats struct {
	CodeCount      int
	DBCount        int
	ByPlatform     map[Platform]int
}
