package platformclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const betPawaUserAgent = "pawarisk/1.0 (+betpawa)"

// BetPawaClient is the reference-platform client. Events arrive already
// market-deep in the tournament listing, so FetchEvent is a thin
// pass-through that re-fetches the single event by id for the rare
// caller that needs a refresh outside discovery.
type BetPawaClient struct {
	baseURL string
	http    HTTPDoer
}

var _ contracts.PlatformClient = (*BetPawaClient)(nil)

func NewBetPawaClient(baseURL string, httpClient HTTPDoer) *BetPawaClient {
	return &BetPawaClient{baseURL: baseURL, http: httpClient}
}

func (c *BetPawaClient) Platform() models.Platform { return models.PlatformBetPawa }

type betPawaTournament struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type betPawaTournamentsResponse struct {
	Tournaments []betPawaTournament `json:"tournaments"`
}

func (c *BetPawaClient) FetchTournaments(ctx context.Context) ([]models.RawTournament, error) {
	url := fmt.Sprintf("%s/api/v1/tournaments", c.baseURL)

	body, err := DoWithRetry(ctx, c.http, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, betPawaUserAgent)
	if err != nil {
		return nil, err
	}

	var resp betPawaTournamentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Op: "fetch_tournaments", Err: err}
	}

	out := make([]models.RawTournament, 0, len(resp.Tournaments))
	for _, t := range resp.Tournaments {
		// Reference platform carries no sportradar id at tournament level.
		out = append(out, models.RawTournament{ExternalID: t.ID, Name: t.Name, Country: t.Country})
	}
	return out, nil
}

type betPawaWidget struct {
	Name string `json:"name"`
	Data struct {
		ID interface{} `json:"id"`
	} `json:"data"`
}

type betPawaEvent struct {
	ID                string          `json:"id"`
	StartTime         string          `json:"startTime"`
	CompetitorHome    string          `json:"homeName"`
	CompetitorAway    string          `json:"awayName"`
	Widgets           []betPawaWidget `json:"widgets"`
	RawMarkets        json.RawMessage `json:"markets"`
}

type betPawaEventsResponse struct {
	Events []betPawaEvent `json:"events"`
}

func (c *BetPawaClient) FetchEventsByTournament(ctx context.Context, tournamentExternalID string) ([]models.RawEvent, error) {
	url := fmt.Sprintf("%s/api/v1/tournaments/%s/events", c.baseURL, tournamentExternalID)

	body, err := DoWithRetry(ctx, c.http, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, betPawaUserAgent)
	if err != nil {
		return nil, err
	}

	var resp betPawaEventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Op: "fetch_events_by_tournament", Err: err}
	}

	out := make([]models.RawEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		kickoff, err := time.Parse(time.RFC3339, e.StartTime)
		if err != nil {
			continue
		}
		out = append(out, models.RawEvent{
			ExternalID:    e.ID,
			SingleFetchID: e.ID,
			SRID:          extractSportradarID(e.Widgets),
			Kickoff:       kickoff,
			HomeTeam:      e.CompetitorHome,
			AwayTeam:      e.CompetitorAway,
			RawMarkets:    e.RawMarkets,
		})
	}
	return out, nil
}

// extractSportradarID pulls the numeric id out of the nested
// SPORTRADAR widget present on every reference-platform event.
func extractSportradarID(widgets []betPawaWidget) string {
	for _, w := range widgets {
		if w.Name != "SPORTRADAR" {
			continue
		}
		switch v := w.Data.ID.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

func (c *BetPawaClient) FetchEvent(ctx context.Context, ref models.PlatformEventRef) (contracts.RawMarketPayload, error) {
	url := fmt.Sprintf("%s/api/v1/events/%s", c.baseURL, ref.ExternalID)

	body, err := DoWithRetry(ctx, c.http, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, betPawaUserAgent)
	if err != nil {
		return contracts.RawMarketPayload{}, err
	}

	var e betPawaEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return contracts.RawMarketPayload{}, &ParseError{Op: "fetch_event", Err: err}
	}

	return contracts.RawMarketPayload{
		Platform:   models.PlatformBetPawa,
		EventExtID: ref.ExternalID,
		Raw:        e.RawMarkets,
	}, nil
}
