package coordinator

import (
	"context"
	"sync"

	"github.com/pawapay/pawarisk/internal/oddscache"
	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// referenceOrder decides which platform's external id anchors a joined
// EventTarget's internal id when more than one platform carries the
// same sportradar_id: the reference platform wins when present, so the
// internal id a cache key is built from never depends on discovery
// ordering.
var referenceOrder = []models.Platform{models.PlatformBetPawa, models.PlatformSportyBet, models.PlatformBet9ja}

// discover fetches tournaments and events from every enabled platform
// in parallel, then joins them into EventTarget records by
// sportradar_id (§4.9 step 1). Events offered only by competitors are
// kept with a synthetic internal id; coverage comparison is a
// deliberate feature, not something to filter out.
func (c *Coordinator) discover(ctx context.Context, platforms []models.Platform) ([]models.EventTarget, []models.ScrapeError) {
	var mu sync.Mutex
	var errs []models.ScrapeError
	perPlatform := make(map[models.Platform][]models.RawEvent)

	var wg sync.WaitGroup
	for _, p := range platforms {
		client, ok := c.clients[p]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(platform models.Platform, client contracts.PlatformClient) {
			defer wg.Done()
			events, err := c.discoverPlatform(ctx, platform, client)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, models.ScrapeError{
					ErrorType: classifyFetchError(err), ErrorMessage: err.Error(),
					Platform: &platform, OccurredAt: c.now(),
				})
				return
			}
			perPlatform[platform] = events
		}(p, client)
	}
	wg.Wait()

	return joinBySportradarID(perPlatform), errs
}

// discoverPlatform lists one platform's tournaments, then fans out
// fetch_events_by_tournament under that platform's semaphore.
func (c *Coordinator) discoverPlatform(ctx context.Context, platform models.Platform, client contracts.PlatformClient) ([]models.RawEvent, error) {
	tournaments, err := client.FetchTournaments(ctx)
	if err != nil {
		return nil, err
	}

	sem := c.semaphoreFor(platform)

	var mu sync.Mutex
	var events []models.RawEvent
	var firstErr error
	var wg sync.WaitGroup

	for _, t := range tournaments {
		wg.Add(1)
		go func(tournament models.RawTournament) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			evs, err := client.FetchEventsByTournament(ctx, tournament.ExternalID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			events = append(events, evs...)
		}(t)
	}
	wg.Wait()

	if len(events) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return events, nil
}

type sridGroup struct {
	refs       []models.PlatformEventRef
	kickoff    models.RawEvent
	hasKickoff bool
}

// joinBySportradarID merges each platform's raw listing into EventTarget
// records. Events carrying no sportradar_id cannot be cross-platform
// matched and become single-platform targets.
func joinBySportradarID(perPlatform map[models.Platform][]models.RawEvent) []models.EventTarget {
	bySRID := make(map[string]*sridGroup)
	var standalone []models.EventTarget

	for _, platform := range referenceOrder {
		for _, e := range perPlatform[platform] {
			ref := models.PlatformEventRef{Platform: platform, ExternalID: e.ExternalID, SingleFetchID: e.SingleFetchID}

			if e.SRID == "" {
				standalone = append(standalone, models.EventTarget{
					EventID:     oddscache.SyntheticEventID(platform, e.ExternalID),
					KickoffTime: e.Kickoff, HomeTeam: e.HomeTeam, AwayTeam: e.AwayTeam,
					Platforms: []models.PlatformEventRef{ref},
				})
				continue
			}

			g, ok := bySRID[e.SRID]
			if !ok {
				g = &sridGroup{kickoff: e, hasKickoff: true}
				bySRID[e.SRID] = g
			}
			g.refs = append(g.refs, ref)
		}
	}

	targets := make([]models.EventTarget, 0, len(bySRID)+len(standalone))
	for srid, g := range bySRID {
		anchor := g.refs[0]
		for _, r := range g.refs {
			if r.Platform == models.PlatformBetPawa {
				anchor = r
				break
			}
		}
		targets = append(targets, models.EventTarget{
			EventID:      oddscache.SyntheticEventID(anchor.Platform, anchor.ExternalID),
			SportradarID: srid,
			KickoffTime:  g.kickoff.Kickoff,
			HomeTeam:     g.kickoff.HomeTeam,
			AwayTeam:     g.kickoff.AwayTeam,
			Platforms:    g.refs,
		})
	}
	targets = append(targets, standalone...)
	return targets
}
