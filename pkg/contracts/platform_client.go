// Package contracts defines the interfaces the pipeline depends on so
// that each bookmaker integration and the durable store can be swapped
// or mocked independently, the same separation Mercury draws between
// internal/scheduler and pkg/contracts.VendorAdapter.
package contracts

import (
	"context"

	"github.com/pawapay/pawarisk/pkg/models"
)

// PlatformClient is the common shape shared by the three bookmaker
// clients (§4.1). The reference platform has no meaningful per-event
// fetch (markets arrive with the tournament listing) but still
// implements FetchEvent as a thin pass-through for interface parity.
type PlatformClient interface {
	Platform() models.Platform

	FetchTournaments(ctx context.Context) ([]models.RawTournament, error)

	FetchEventsByTournament(ctx context.Context, tournamentExternalID string) ([]models.RawEvent, error)

	// FetchEvent returns the full market depth for one event. Used when
	// the tournament listing is market-shallow (competitors).
	FetchEvent(ctx context.Context, ref models.PlatformEventRef) (RawMarketPayload, error)
}

// RawMarketPayload is the unparsed, platform-specific market blob for
// one event, handed to the matching internal/mapper implementation.
type RawMarketPayload struct {
	Platform   models.Platform
	EventExtID string
	Raw        []byte
}
