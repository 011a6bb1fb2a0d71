package mapper

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// bet9jaKeyPattern decomposes a flat key like "S_OU@2.5_O" into
// (market_key, param?, outcome_suffix) per §4.3.
var bet9jaKeyPattern = regexp.MustCompile(`^S_([A-Z0-9_\-]+?)(?:@([^_]+))?_(.+)$`)

// overUnderSet and handicapSet classify a Bet9ja market_key once the
// mapping cache has resolved it to a canonical handler, so the
// grouping below only needs to decide where the line comes from.
var overUnderSet = map[string]bool{
	"OU": true, "CRNOU": true, "BKGOU": true,
}
var handicapSet = map[string]bool{
	"HCP": true, "EHCP": true, "CRNHCP": true,
}

// Bet9jaMapper parses Bet9ja's flat key=odds map, the only one of the
// three platforms with no nested market structure.
type Bet9jaMapper struct{}

var _ contracts.PlatformMapper = Bet9jaMapper{}

func (Bet9jaMapper) Platform() models.Platform { return models.PlatformBet9ja }

type bet9jaRawOutcome struct {
	Odds     float64 `json:"odds"`
	IsActive bool    `json:"isActive"`
}

type bet9jaGroupKey struct {
	marketKey string
	param     string
}

func (Bet9jaMapper) MapMarkets(raw contracts.RawMarketPayload, cache contracts.MappingCache) ([]models.MappedMarket, []*contracts.MappingError) {
	var flat map[string]bet9jaRawOutcome
	if err := json.Unmarshal(raw.Raw, &flat); err != nil {
		return nil, []*contracts.MappingError{{
			Kind: contracts.ErrUnknownMarket, Platform: models.PlatformBet9ja,
			Detail: "unparseable markets payload: " + err.Error(),
		}}
	}

	type parsedEntry struct {
		suffix string
		odds   bet9jaRawOutcome
	}
	groups := make(map[bet9jaGroupKey][]parsedEntry)
	rawKeyByMarketKey := make(map[string]string) // full raw key example, for the catalogue lookup

	for key, odds := range flat {
		m := bet9jaKeyPattern.FindStringSubmatch(key)
		if m == nil {
			continue // not a shape we recognise; let the lookup-miss path below handle absence
		}
		marketKey, param, suffix := m[1], m[2], m[3]
		gk := bet9jaGroupKey{marketKey: marketKey, param: param}
		groups[gk] = append(groups[gk], parsedEntry{suffix: suffix, odds: odds})
		if _, ok := rawKeyByMarketKey[marketKey]; !ok {
			rawKeyByMarketKey[marketKey] = key
		}
	}

	var mapped []models.MappedMarket
	var errs []*contracts.MappingError

	for gk, entries := range groups {
		lookupKey := "S_" + gk.marketKey
		if gk.param != "" {
			lookupKey += "@" + gk.param
		}
		mapping, ok := cache.FindByBet9jaKey(lookupKey)
		if !ok {
			errs = append(errs, &contracts.MappingError{
				Kind: contracts.ErrUnknownMarket, RawKey: lookupKey, Platform: models.PlatformBet9ja,
			})
			continue
		}

		mm := models.MappedMarket{CanonicalID: mapping.CanonicalID, Name: mapping.Name}

		if overUnderSet[gk.marketKey] || mapping.Handler == models.HandlerOverUnder {
			line, err := strconv.ParseFloat(gk.param, 64)
			if err != nil {
				errs = append(errs, &contracts.MappingError{
					Kind: contracts.ErrUnknownParamMarket, RawKey: lookupKey, Platform: models.PlatformBet9ja,
					Detail: "malformed over/under param: " + gk.param,
				})
				continue
			}
			mm.Line = &line
		} else if handicapSet[gk.marketKey] || mapping.Handler == models.HandlerHandicap {
			line, err := strconv.ParseFloat(gk.param, 64)
			if err != nil {
				errs = append(errs, &contracts.MappingError{
					Kind: contracts.ErrUnknownParamMarket, RawKey: lookupKey, Platform: models.PlatformBet9ja,
					Detail: "malformed handicap param: " + gk.param,
				})
				continue
			}
			mm.Line = &line
			mm.Handicap = &models.Handicap{Type: "bet9ja", Home: line, Away: -line}
		}

		bySuffix := make(map[string]parsedEntry, len(entries))
		for _, e := range entries {
			bySuffix[e.suffix] = e
		}

		var matched []models.MappedOutcome
		for _, om := range mapping.Outcomes {
			e, ok := bySuffix[om.Bet9jaSuffix] // case-sensitive per §4.3
			if !ok {
				continue
			}
			matched = append(matched, models.MappedOutcome{
				Name: om.CanonicalOutcomeID, Odds: e.odds.Odds, IsActive: e.odds.IsActive, Position: om.Position,
			})
		}
		if len(matched) == 0 {
			errs = append(errs, &contracts.MappingError{
				Kind: contracts.ErrNoMatchingOutcomes, RawKey: lookupKey, Platform: models.PlatformBet9ja,
			})
			continue
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].Position < matched[j].Position })
		mm.Outcomes = matched
		mapped = append(mapped, mm)
	}

	sort.Slice(mapped, func(i, j int) bool { return mapped[i].CanonicalID < mapped[j].CanonicalID })
	return mapped, errs
}
