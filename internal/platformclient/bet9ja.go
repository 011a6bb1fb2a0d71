package platformclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const bet9jaUserAgent = "pawarisk/1.0 (+bet9ja)"

// bet9jaSuccessCodes accepts both envelope shapes: the listing endpoint
// answers R:"OK", the single-event endpoint answers R:"D" (§4.1, §6).
var bet9jaSuccessCodes = map[string]bool{"OK": true, "D": true}

// Bet9jaClient has no cross-platform id at tournament level and needs
// a different id for single-event fetch than the listing exposes; the
// coordinator is responsible for passing PlatformEventRef.SingleFetchID.
type Bet9jaClient struct {
	baseURL string
	http    HTTPDoer
}

var _ contracts.PlatformClient = (*Bet9jaClient)(nil)

func NewBet9jaClient(baseURL string, httpClient HTTPDoer) *Bet9jaClient {
	return &Bet9jaClient{baseURL: baseURL, http: httpClient}
}

func (c *Bet9jaClient) Platform() models.Platform { return models.PlatformBet9ja }

type bet9jaEnvelope struct {
	R string          `json:"R"`
	D json.RawMessage `json:"D"`
}

func (c *Bet9jaClient) call(ctx context.Context, url string) (json.RawMessage, error) {
	body, err := DoWithRetry(ctx, c.http, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, bet9jaUserAgent)
	if err != nil {
		return nil, err
	}

	var env bet9jaEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Op: "decode envelope", Err: err}
	}
	if !bet9jaSuccessCodes[env.R] {
		return nil, &ApiError{StatusCode: 0, Body: fmt.Sprintf("R=%s", env.R), Retryable: false}
	}
	return env.D, nil
}

type bet9jaTournament struct {
	ID      string `json:"Id"`
	Name    string `json:"Description"`
	Country string `json:"CountryName"`
}

func (c *Bet9jaClient) FetchTournaments(ctx context.Context) ([]models.RawTournament, error) {
	data, err := c.call(ctx, fmt.Sprintf("%s/Sport/Competitions", c.baseURL))
	if err != nil {
		return nil, err
	}

	var tournaments []bet9jaTournament
	if err := json.Unmarshal(data, &tournaments); err != nil {
		return nil, &ParseError{Op: "fetch_tournaments", Err: err}
	}

	out := make([]models.RawTournament, 0, len(tournaments))
	for _, t := range tournaments {
		// No cross-platform id at tournament level (§4.1).
		out = append(out, models.RawTournament{ExternalID: t.ID, Name: t.Name, Country: t.Country})
	}
	return out, nil
}

type bet9jaEvent struct {
	EventID       string          `json:"EventId"`       // listing id
	SingleFetchID string          `json:"FixtureId"`      // fetch_event needs this one instead
	KickoffUnix   int64           `json:"KickoffUnix"`
	Home          string          `json:"HomeTeam"`
	Away          string          `json:"AwayTeam"`
	Markets       json.RawMessage `json:"Markets"`
}

func (c *Bet9jaClient) FetchEventsByTournament(ctx context.Context, tournamentExternalID string) ([]models.RawEvent, error) {
	data, err := c.call(ctx, fmt.Sprintf("%s/Sport/Competitions/%s/Events", c.baseURL, tournamentExternalID))
	if err != nil {
		return nil, err
	}

	var events []bet9jaEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, &ParseError{Op: "fetch_events_by_tournament", Err: err}
	}

	out := make([]models.RawEvent, 0, len(events))
	for _, e := range events {
		out = append(out, models.RawEvent{
			ExternalID:    e.EventID,
			SingleFetchID: e.SingleFetchID,
			Kickoff:       time.Unix(e.KickoffUnix, 0).UTC(),
			HomeTeam:      e.Home,
			AwayTeam:      e.Away,
			RawMarkets:    e.Markets,
		})
	}
	return out, nil
}

func (c *Bet9jaClient) FetchEvent(ctx context.Context, ref models.PlatformEventRef) (contracts.RawMarketPayload, error) {
	fetchID := ref.SingleFetchID
	if fetchID == "" {
		fetchID = ref.ExternalID
	}

	data, err := c.call(ctx, fmt.Sprintf("%s/Sport/Fixture/%s", c.baseURL, fetchID))
	if err != nil {
		return contracts.RawMarketPayload{}, err
	}

	var e bet9jaEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return contracts.RawMarketPayload{}, &ParseError{Op: "fetch_event", Err: err}
	}

	return contracts.RawMarketPayload{
		Platform:   models.PlatformBet9ja,
		EventExtID: ref.ExternalID,
		Raw:        e.Markets,
	}, nil
}
