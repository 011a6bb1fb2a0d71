package mapper

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

// SportyBetMapper parses the semicolon-delimited specifier string and
// routes each market by the catalogue's handler kind (§4.3).
type SportyBetMapper struct{}

var _ contracts.PlatformMapper = SportyBetMapper{}

func (SportyBetMapper) Platform() models.Platform { return models.PlatformSportyBet }

type sportyBetRawOutcome struct {
	Desc string  `json:"desc"`
	Odds float64 `json:"odds"`
	// SportyBet omits disabled outcomes from the payload rather than
	// flagging them; presence in the list implies active.
}

type sportyBetRawMarket struct {
	ID        string                `json:"id"`
	Specifier string                `json:"specifier"`
	Outcomes  []sportyBetRawOutcome `json:"outcomes"`
}

func (SportyBetMapper) MapMarkets(raw contracts.RawMarketPayload, cache contracts.MappingCache) ([]models.MappedMarket, []*contracts.MappingError) {
	var rawMarkets []sportyBetRawMarket
	if err := json.Unmarshal(raw.Raw, &rawMarkets); err != nil {
		return nil, []*contracts.MappingError{{
			Kind: contracts.ErrUnknownMarket, Platform: models.PlatformSportyBet,
			Detail: "unparseable markets payload: " + err.Error(),
		}}
	}

	var mapped []models.MappedMarket
	var errs []*contracts.MappingError

	for _, rm := range rawMarkets {
		mapping, ok := cache.FindBySportyBetID(rm.ID)
		if !ok {
			errs = append(errs, &contracts.MappingError{
				Kind: contracts.ErrUnknownMarket, RawKey: rm.ID, Platform: models.PlatformSportyBet,
			})
			continue
		}

		specifiers := parseSpecifier(rm.Specifier)

		mm, err := buildSportyBetMarket(mapping, specifiers, rm.Outcomes)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mapped = append(mapped, mm)
	}

	sort.Slice(mapped, func(i, j int) bool { return mapped[i].CanonicalID < mapped[j].CanonicalID })
	return mapped, errs
}

// parseSpecifier parses a semicolon-delimited key=value string, e.g.
// "total=2.5;hcp=0:1;variant=..." into a lookup map.
func parseSpecifier(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

// parseHcp decodes the hcp specifier value, which is either European
// ("0:1" → home=-1,away=+1) or Asian ("-0.5" → home=-0.5,away=+0.5).
func parseHcp(raw string) (home, away float64, ok bool) {
	if strings.Contains(raw, ":") {
		parts := strings.SplitN(raw, ":", 2)
		h, err1 := strconv.Atoi(parts[0])
		a, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		// European handicap "h:a" encodes the goal start each side
		// gets; e.g. "0:1" means home start 0, away start 1, so home's
		// effective line is h-a = -1 and away's is a-h = +1.
		return float64(h - a), float64(a - h), true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, 0, false
	}
	return v, -v, true
}

func buildSportyBetMarket(mapping models.MarketMapping, specifiers map[string]string, raw []sportyBetRawOutcome) (models.MappedMarket, *contracts.MappingError) {
	mm := models.MappedMarket{CanonicalID: mapping.CanonicalID, Name: mapping.Name}

	switch mapping.Handler {
	case models.HandlerOverUnder:
		totalStr, ok := specifiers["total"]
		if !ok {
			return models.MappedMarket{}, &contracts.MappingError{
				Kind: contracts.ErrUnknownParamMarket, RawKey: mapping.SportyBetID, Platform: models.PlatformSportyBet,
				Detail: "missing total specifier",
			}
		}
		total, err := strconv.ParseFloat(totalStr, 64)
		if err != nil {
			return models.MappedMarket{}, &contracts.MappingError{
				Kind: contracts.ErrUnknownParamMarket, RawKey: mapping.SportyBetID, Platform: models.PlatformSportyBet,
				Detail: "malformed total specifier: " + totalStr,
			}
		}
		mm.Line = &total

	case models.HandlerHandicap:
		hcpStr, ok := specifiers["hcp"]
		if !ok {
			return models.MappedMarket{}, &contracts.MappingError{
				Kind: contracts.ErrUnknownParamMarket, RawKey: mapping.SportyBetID, Platform: models.PlatformSportyBet,
				Detail: "missing hcp specifier",
			}
		}
		home, away, ok := parseHcp(hcpStr)
		if !ok {
			return models.MappedMarket{}, &contracts.MappingError{
				Kind: contracts.ErrUnknownParamMarket, RawKey: mapping.SportyBetID, Platform: models.PlatformSportyBet,
				Detail: "malformed hcp specifier: " + hcpStr,
			}
		}
		mm.Line = &home
		mm.Handicap = &models.Handicap{Type: "sportybet", Home: home, Away: away}
	}

	byDesc := make(map[string]sportyBetRawOutcome, len(raw))
	for _, o := range raw {
		byDesc[o.Desc] = o
	}

	var matched []models.MappedOutcome
	for _, om := range mapping.Outcomes {
		aliases := sportyBetOutcomeAliases(om.SportyBetDesc)
		for _, alias := range aliases {
			ro, ok := byDesc[alias]
			if !ok {
				continue
			}
			matched = append(matched, models.MappedOutcome{
				Name: om.CanonicalOutcomeID, Odds: ro.Odds, IsActive: true, Position: om.Position,
			})
			break
		}
	}
	if len(matched) == 0 {
		return models.MappedMarket{}, &contracts.MappingError{
			Kind: contracts.ErrNoMatchingOutcomes, RawKey: mapping.SportyBetID, Platform: models.PlatformSportyBet,
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Position < matched[j].Position })
	mm.Outcomes = matched
	return mm, nil
}

// sportyBetOutcomeAliases accepts the handful of label variants the
// over/under market uses across sportsbooks.
func sportyBetOutcomeAliases(desc string) []string {
	switch desc {
	case "Over":
		return []string{"Over", "over"}
	case "Under":
		return []string{"Under", "under"}
	default:
		return []string{desc}
	}
}
