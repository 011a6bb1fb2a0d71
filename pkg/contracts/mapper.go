package contracts

import "github.com/pawapay/pawarisk/pkg/models"

// MappingErrorKind taxonomises why a raw market could not be mapped.
// The mapper logs and skips; it never aborts the event.
type MappingErrorKind string

const (
	ErrUnknownMarket      MappingErrorKind = "UNKNOWN_MARKET"
	ErrUnknownParamMarket MappingErrorKind = "UNKNOWN_PARAM_MARKET"
	ErrNoMatchingOutcomes MappingErrorKind = "NO_MATCHING_OUTCOMES"
	ErrUnsupportedPlatform MappingErrorKind = "UNSUPPORTED_PLATFORM"
)

// MappingError is returned per-market by a PlatformMapper; callers
// collect these rather than treat them as fatal.
type MappingError struct {
	Kind     MappingErrorKind
	RawKey   string
	Platform models.Platform
	Detail   string
}

func (e *MappingError) Error() string {
	if e.Detail == "" {
		return string(e.Kind) + ": " + e.RawKey
	}
	return string(e.Kind) + ": " + e.RawKey + ": " + e.Detail
}

// PlatformMapper turns one platform's raw market payload into
// canonical MappedMarket values, using the MappingCache for lookups.
// Per-market failures are returned alongside successes, never as a
// single aggregate error, so one bad market never drops the whole event.
type PlatformMapper interface {
	Platform() models.Platform
	MapMarkets(raw RawMarketPayload, cache MappingCache) ([]models.MappedMarket, []*MappingError)
}
