// Package changedetect compares one cycle's mapped markets against
// the Odds Cache to classify new/returned/disappeared/same (§4.5),
// the canonical-market equivalent of Mercury's delta.Engine but
// comparing against the in-process cache instead of Redis, since the
// pipeline is single-process (§5).
package changedetect

import (
	"sort"
	"time"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const epsilon = 1e-6

// Result is one classified market plus the write row it implies.
type Result struct {
	Write  models.MarketCurrentWrite
	Change contracts.ChangeKind
	// Previous is the cached market this result was compared against,
	// nil for a brand new market. The risk detector needs old odds.
	Previous *models.CachedMarket
}

// Classify compares this cycle's mapped markets for one
// (event, bookmaker) against its cached snapshot (possibly absent).
// Markets present in the cache but missing from `mapped` are emitted
// as disappeared, per §4.5.
func Classify(eventID int64, bookmaker models.Platform, mapped []models.MappedMarket, cached *models.CachedSnapshot, now int64) []Result {
	cachedByKey := make(map[models.JoinKey]models.CachedMarket)
	if cached != nil {
		for _, m := range cached.Markets {
			cachedByKey[m.JoinKey()] = m
		}
	}

	seen := make(map[models.JoinKey]bool, len(mapped))
	results := make([]Result, 0, len(mapped))

	for _, m := range mapped {
		jk := m.JoinKey()
		seen[jk] = true
		prevMarket, hadPrev := cachedByKey[jk]

		outcomes := toCachedOutcomes(m.Outcomes)
		write := models.MarketCurrentWrite{
			EventID: eventID, BookmakerSlug: bookmaker,
			CanonicalMarketID: m.CanonicalID, Line: m.Line, Handicap: m.Handicap,
			Outcomes: outcomes,
		}

		switch {
		case !hadPrev:
			write.Changed = true
			results = append(results, Result{Write: write, Change: contracts.ChangeNew})

		case prevMarket.UnavailableAt != nil:
			write.Changed = true
			results = append(results, Result{Write: write, Change: contracts.ChangeReturned, Previous: &prevMarket})

		case !sameOutcomes(outcomes, prevMarket.Outcomes):
			write.Changed = true
			results = append(results, Result{Write: write, Change: contracts.ChangeUpdated, Previous: &prevMarket})

		default:
			write.Changed = false
			results = append(results, Result{Write: write, Change: contracts.ChangeSame, Previous: &prevMarket})
		}
	}

	// Anything cached but not resubmitted this cycle, and not already
	// flagged unavailable, has disappeared.
	for jk, prev := range cachedByKey {
		if seen[jk] || prev.UnavailableAt != nil {
			continue
		}
		unavailAt := time.Unix(now, 0).UTC()
		prevCopy := prev
		results = append(results, Result{
			Write: models.MarketCurrentWrite{
				EventID: eventID, BookmakerSlug: bookmaker,
				CanonicalMarketID: prev.CanonicalID, Line: prev.Line, Handicap: prev.Handicap,
				Outcomes: prev.Outcomes, Groups: prev.MarketGroups,
				Changed: true, UnavailableAt: &unavailAt,
			},
			Change:   contracts.ChangeDisappeared,
			Previous: &prevCopy,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Write.CanonicalMarketID != results[j].Write.CanonicalMarketID {
			return results[i].Write.CanonicalMarketID < results[j].Write.CanonicalMarketID
		}
		return lineOrZero(results[i].Write.Line) < lineOrZero(results[j].Write.Line)
	})

	return results
}

func toCachedOutcomes(outcomes []models.MappedOutcome) []models.CachedOutcome {
	out := make([]models.CachedOutcome, len(outcomes))
	for i, o := range outcomes {
		out[i] = models.CachedOutcome{Name: o.Name, Odds: o.Odds, IsActive: o.IsActive}
	}
	return out
}

// sameOutcomes canonicalises both sides by sorting on
// (name, odds, is_active) and comparing element-wise with an epsilon
// on odds, per §4.5's canonicalisation rule.
func sameOutcomes(a, b []models.CachedOutcome) bool {
	if len(a) != len(b) {
		return false
	}
	ca, cb := canonicalize(a), canonicalize(b)
	for i := range ca {
		if ca[i].Name != cb[i].Name || ca[i].IsActive != cb[i].IsActive {
			return false
		}
		if abs(ca[i].Odds-cb[i].Odds) > epsilon {
			return false
		}
	}
	return true
}

func canonicalize(outcomes []models.CachedOutcome) []models.CachedOutcome {
	out := make([]models.CachedOutcome, len(outcomes))
	copy(out, outcomes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].Odds != out[j].Odds {
			return out[i].Odds < out[j].Odds
		}
		return !out[i].IsActive && out[j].IsActive
	})
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func lineOrZero(l *float64) float64 {
	if l == nil {
		return 0
	}
	return *l
}
