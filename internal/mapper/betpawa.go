// Package mapper applies the market mapping catalogue to one
// platform's raw market payload, producing canonical MappedMarket
// values (§4.3). Each implementation logs-and-skips per-market
// failures rather than aborting the whole event.
package mapper

import (
	"encoding/json"
	"sort"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// BetPawaMapper is mostly a catalogue lookup: the reference platform
// already ships structured markets, so the bulk of the work is
// attaching the canonical id and copying formattedHandicap to line.
type BetPawaMapper struct{}

var _ contracts.PlatformMapper = BetPawaMapper{}

func (BetPawaMapper) Platform() models.Platform { return models.PlatformBetPawa }

type betPawaRawOutcome struct {
	Name     string  `json:"name"`
	Odds     float64 `json:"odds"`
	IsActive bool    `json:"isActive"`
}

type betPawaRawMarket struct {
	MarketID          string              `json:"betpawa_market_id"`
	FormattedHandicap *string             `json:"formattedHandicap"`
	Outcomes          []betPawaRawOutcome `json:"outcomes"`
}

func (BetPawaMapper) MapMarkets(raw contracts.RawMarketPayload, cache contracts.MappingCache) ([]models.MappedMarket, []*contracts.MappingError) {
	var rawMarkets []betPawaRawMarket
	if err := json.Unmarshal(raw.Raw, &rawMarkets); err != nil {
		return nil, []*contracts.MappingError{{
			Kind: contracts.ErrUnknownMarket, Platform: models.PlatformBetPawa,
			Detail: "unparseable markets payload: " + err.Error(),
		}}
	}

	var mapped []models.MappedMarket
	var errs []*contracts.MappingError

	for _, rm := range rawMarkets {
		mapping, ok := cache.FindByBetPawaID(rm.MarketID)
		if !ok {
			errs = append(errs, &contracts.MappingError{
				Kind: contracts.ErrUnknownMarket, RawKey: rm.MarketID, Platform: models.PlatformBetPawa,
			})
			continue
		}
		if mapping.BetPawaID == "" {
			errs = append(errs, &contracts.MappingError{
				Kind: contracts.ErrUnsupportedPlatform, RawKey: rm.MarketID, Platform: models.PlatformBetPawa,
			})
			continue
		}

		outcomes, err := matchBetPawaOutcomes(mapping, rm.Outcomes)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		mm := models.MappedMarket{
			CanonicalID: mapping.CanonicalID,
			Name:        mapping.Name,
			Outcomes:    outcomes,
		}
		if rm.FormattedHandicap != nil {
			line := parseHandicapLine(*rm.FormattedHandicap)
			if line == nil && *rm.FormattedHandicap != "" {
				errs = append(errs, &contracts.MappingError{
					Kind: contracts.ErrUnknownParamMarket, RawKey: rm.MarketID, Platform: models.PlatformBetPawa,
					Detail: "malformed formattedHandicap: " + *rm.FormattedHandicap,
				})
				continue
			}
			if line != nil {
				mm.Line = line
				if mapping.Handler == models.HandlerHandicap {
					mm.Handicap = &models.Handicap{Type: "decimal", Home: *line, Away: -*line}
				}
			}
		}
		mapped = append(mapped, mm)
	}

	sort.Slice(mapped, func(i, j int) bool { return mapped[i].CanonicalID < mapped[j].CanonicalID })
	return mapped, errs
}

func matchBetPawaOutcomes(mapping models.MarketMapping, raw []betPawaRawOutcome) ([]models.MappedOutcome, *contracts.MappingError) {
	byName := make(map[string]betPawaRawOutcome, len(raw))
	for _, o := range raw {
		byName[o.Name] = o
	}

	var matched []models.MappedOutcome
	for _, om := range mapping.Outcomes {
		ro, ok := byName[om.BetPawaName]
		if !ok {
			continue
		}
		matched = append(matched, models.MappedOutcome{
			Name: om.CanonicalOutcomeID, Odds: ro.Odds, IsActive: ro.IsActive, Position: om.Position,
		})
	}
	if len(matched) == 0 {
		return nil, &contracts.MappingError{
			Kind: contracts.ErrNoMatchingOutcomes, RawKey: mapping.BetPawaID, Platform: models.PlatformBetPawa,
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Position < matched[j].Position })
	return matched, nil
}
