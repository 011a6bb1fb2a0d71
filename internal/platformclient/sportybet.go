package platformclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const (
	sportyBetUserAgent = "pawarisk/1.0 (+sportybet)"
	sportyBetSuccessCode = 10000
)

// SportyBetClient talks to the sr:match:<n> prefixed competitor API.
type SportyBetClient struct {
	baseURL string
	http    HTTPDoer
}

var _ contracts.PlatformClient = (*SportyBetClient)(nil)

func NewSportyBetClient(baseURL string, httpClient HTTPDoer) *SportyBetClient {
	return &SportyBetClient{baseURL: baseURL, http: httpClient}
}

func (c *SportyBetClient) Platform() models.Platform { return models.PlatformSportyBet }

type sportyBetEnvelope struct {
	BizCode int             `json:"bizCode"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *SportyBetClient) call(ctx context.Context, url string) (json.RawMessage, error) {
	body, err := DoWithRetry(ctx, c.http, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, sportyBetUserAgent)
	if err != nil {
		return nil, err
	}

	var env sportyBetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Op: "decode envelope", Err: err}
	}
	if env.BizCode != sportyBetSuccessCode {
		// Negative acknowledgement from the platform itself: never retried.
		return nil, &ApiError{StatusCode: env.BizCode, Body: env.Message, Retryable: false}
	}
	return env.Data, nil
}

type sportyBetTournament struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

func (c *SportyBetClient) FetchTournaments(ctx context.Context) ([]models.RawTournament, error) {
	data, err := c.call(ctx, fmt.Sprintf("%s/api/ng/factsCenter/tournaments", c.baseURL))
	if err != nil {
		return nil, err
	}

	var tournaments []sportyBetTournament
	if err := json.Unmarshal(data, &tournaments); err != nil {
		return nil, &ParseError{Op: "fetch_tournaments", Err: err}
	}

	out := make([]models.RawTournament, 0, len(tournaments))
	for _, t := range tournaments {
		out = append(out, models.RawTournament{ExternalID: t.ID, Name: t.Name, Country: t.Country})
	}
	return out, nil
}

type sportyBetEvent struct {
	EventID    string          `json:"eventId"`
	MatchID    string          `json:"matchId"` // e.g. "sr:match:12345678"
	EstimateStartTime int64     `json:"estimateStartTime"`
	HomeTeamName string        `json:"homeTeamName"`
	AwayTeamName string        `json:"awayTeamName"`
	Markets      json.RawMessage `json:"markets"`
}

func (c *SportyBetClient) FetchEventsByTournament(ctx context.Context, tournamentExternalID string) ([]models.RawEvent, error) {
	data, err := c.call(ctx, fmt.Sprintf("%s/api/ng/factsCenter/events?tournamentId=%s", c.baseURL, tournamentExternalID))
	if err != nil {
		return nil, err
	}

	var events []sportyBetEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, &ParseError{Op: "fetch_events_by_tournament", Err: err}
	}

	out := make([]models.RawEvent, 0, len(events))
	for _, e := range events {
		out = append(out, models.RawEvent{
			ExternalID:    e.EventID,
			SingleFetchID: e.EventID,
			SRID:          parseSportradarMatchID(e.MatchID),
			Kickoff:       time.UnixMilli(e.EstimateStartTime).UTC(),
			HomeTeam:      e.HomeTeamName,
			AwayTeam:      e.AwayTeamName,
			RawMarkets:    e.Markets,
		})
	}
	return out, nil
}

// parseSportradarMatchID strips the "sr:match:" prefix, keeping only
// the numeric suffix used to join against the reference platform.
func parseSportradarMatchID(matchID string) string {
	const prefix = "sr:match:"
	if strings.HasPrefix(matchID, prefix) {
		return strings.TrimPrefix(matchID, prefix)
	}
	return ""
}

func (c *SportyBetClient) FetchEvent(ctx context.Context, ref models.PlatformEventRef) (contracts.RawMarketPayload, error) {
	data, err := c.call(ctx, fmt.Sprintf("%s/api/ng/factsCenter/event?eventId=%s", c.baseURL, ref.ExternalID))
	if err != nil {
		return contracts.RawMarketPayload{}, err
	}

	var e sportyBetEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return contracts.RawMarketPayload{}, &ParseError{Op: "fetch_event", Err: err}
	}

	return contracts.RawMarketPayload{
		Platform:   models.PlatformSportyBet,
		EventExtID: ref.ExternalID,
		Raw:        e.Markets,
	}, nil
}
