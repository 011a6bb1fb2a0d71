// Package riskalert derives typed RiskAlert records from per-market
// classification deltas (§4.6), grounded on the same poll-and-emit
// shape as Mercury's closer.Capturer but running inline in the
// coordinator's batch loop rather than on its own ticker.
package riskalert

import (
	"time"

	"github.com/pawapay/pawarisk/internal/changedetect"
	"github.com/pawapay/pawarisk/pkg/models"
)

// Thresholds is the subset of config.Settings the detector needs,
// passed in rather than imported to avoid a config->riskalert->config cycle.
type Thresholds struct {
	T1, T2, T3            float64
	ImminentWindowMinutes int
}

// Detector is stateless across cycles; dedupe is scoped to one call
// to Detect, matching the "at most one per cycle" invariant in §4.6.
type Detector struct {
	thresholds Thresholds
}

func New(thresholds Thresholds) *Detector {
	return &Detector{thresholds: thresholds}
}

// PlatformResults is one platform's classified markets for a single event.
type PlatformResults struct {
	Platform models.Platform
	Results  []changedetect.Result
}

// Detect runs once per event, after every platform's markets have been
// classified, on the per-event set of changed markets across all
// platforms (§4.6). By then the coordinator has already replaced each
// platform's Odds Cache entry; Detect reads only the Previous markets
// captured during classification, not the cache.
func (d *Detector) Detect(eventID int64, kickoff time.Time, now time.Time, perPlatform []PlatformResults) []models.RiskAlert {
	var alerts []models.RiskAlert
	seen := make(map[models.DedupeKey]bool)

	for _, pr := range perPlatform {
		for _, r := range pr.Results {
			if !r.Write.Changed || r.Previous == nil {
				continue
			}
			alerts = append(alerts, d.priceChangeAlerts(eventID, pr.Platform, r, seen, now)...)
		}
	}

	alerts = append(alerts, d.directionDisagreementAlerts(eventID, perPlatform, now)...)
	alerts = append(alerts, d.availabilityAlerts(eventID, perPlatform, kickoff, now)...)

	return alerts
}

// priceChangeAlerts emits one alert per outcome whose odds moved by at
// least T1 percent, deduped within this cycle by (event, bookmaker,
// market, outcome).
func (d *Detector) priceChangeAlerts(eventID int64, bookmaker models.Platform, r changedetect.Result, seen map[models.DedupeKey]bool, now time.Time) []models.RiskAlert {
	prevByName := make(map[string]models.CachedOutcome, len(r.Previous.Outcomes))
	for _, o := range r.Previous.Outcomes {
		prevByName[o.Name] = o
	}

	var alerts []models.RiskAlert
	for _, cur := range r.Write.Outcomes {
		if !cur.IsActive {
			continue
		}
		prev, ok := prevByName[cur.Name]
		if !ok || !prev.IsActive || prev.Odds == 0 {
			continue
		}
		changePct := (cur.Odds - prev.Odds) / prev.Odds * 100

		severity, ok := severityBand(abs(changePct), d.thresholds)
		if !ok {
			continue
		}

		dk := models.DedupeKey{EventID: eventID, BookmakerSlug: bookmaker, CanonicalMarketID: r.Write.CanonicalMarketID, OutcomeName: cur.Name}
		if seen[dk] {
			continue
		}
		seen[dk] = true

		alerts = append(alerts, models.RiskAlert{
			EventID: eventID, BookmakerSlug: bookmaker, CanonicalMarketID: r.Write.CanonicalMarketID,
			Line: r.Write.Line, OutcomeName: cur.Name,
			AlertType: models.AlertPriceChange, Severity: severity,
			ChangePercent: changePct, OldValue: prev.Odds, NewValue: cur.Odds,
			DetectedAt: now, Status: models.AlertStatusNew,
		})
	}
	return alerts
}

func severityBand(absChangePct float64, t Thresholds) (models.AlertSeverity, bool) {
	switch {
	case absChangePct >= t.T3:
		return models.SeverityCritical, true
	case absChangePct >= t.T2:
		return models.SeverityElevated, true
	case absChangePct >= t.T1:
		return models.SeverityWarning, true
	default:
		return "", false
	}
}

// directionDisagreementAlerts compares the reference platform's move
// against every competitor's move on the same (market, outcome); a
// ≥T2 opposite-direction move on a competitor is flagged.
func (d *Detector) directionDisagreementAlerts(eventID int64, perPlatform []PlatformResults, now time.Time) []models.RiskAlert {
	var reference *PlatformResults
	var competitors []PlatformResults
	for i := range perPlatform {
		if perPlatform[i].Platform == models.PlatformBetPawa {
			reference = &perPlatform[i]
		} else {
			competitors = append(competitors, perPlatform[i])
		}
	}
	if reference == nil {
		return nil
	}

	refMoves := movesByOutcome(*reference)

	var alerts []models.RiskAlert
	for _, comp := range competitors {
		compMoves := movesByOutcome(comp)
		for key, compMove := range compMoves {
			refMove, ok := refMoves[key]
			if !ok {
				continue
			}
			if refMove.direction == compMove.direction {
				continue
			}
			if abs(compMove.changePct) < d.thresholds.T2 {
				continue
			}
			dir := compMove.direction
			alerts = append(alerts, models.RiskAlert{
				EventID: eventID, BookmakerSlug: models.PlatformBetPawa, CanonicalMarketID: key.marketID,
				OutcomeName: key.outcome, AlertType: models.AlertDirectionDisagreement,
				Severity: models.SeverityElevated, ChangePercent: refMove.changePct,
				OldValue: refMove.oldOdds, NewValue: refMove.newOdds,
				CompetitorDirection: &dir, DetectedAt: now, Status: models.AlertStatusNew,
			})
		}
	}
	return alerts
}

type moveKey struct {
	marketID string
	outcome  string
}

type move struct {
	direction          models.Direction
	changePct          float64
	oldOdds, newOdds   float64
}

func movesByOutcome(pr PlatformResults) map[moveKey]move {
	out := make(map[moveKey]move)
	for _, r := range pr.Results {
		if !r.Write.Changed || r.Previous == nil {
			continue
		}
		prevByName := make(map[string]models.CachedOutcome, len(r.Previous.Outcomes))
		for _, o := range r.Previous.Outcomes {
			prevByName[o.Name] = o
		}
		for _, cur := range r.Write.Outcomes {
			prev, ok := prevByName[cur.Name]
			if !ok || prev.Odds == 0 || prev.Odds == cur.Odds {
				continue
			}
			dir := models.DirectionDown
			if cur.Odds > prev.Odds {
				dir = models.DirectionUp
			}
			out[moveKey{marketID: r.Write.CanonicalMarketID, outcome: cur.Name}] = move{
				direction: dir,
				changePct: (cur.Odds - prev.Odds) / prev.Odds * 100,
				oldOdds:   prev.Odds, newOdds: cur.Odds,
			}
		}
	}
	return out
}

// availabilityAlerts fires for disappearance/reappearance events whose
// kickoff is within the configured imminent window (Open Question 2:
// suppressed entirely outside the window, emitted at severity=elevated
// inside it).
func (d *Detector) availabilityAlerts(eventID int64, perPlatform []PlatformResults, kickoff, now time.Time) []models.RiskAlert {
	window := time.Duration(d.thresholds.ImminentWindowMinutes) * time.Minute
	if kickoff.Sub(now) >= window {
		return nil
	}

	var alerts []models.RiskAlert
	for _, pr := range perPlatform {
		for _, r := range pr.Results {
			if r.Change != "disappeared" && r.Change != "returned" {
				continue
			}
			alerts = append(alerts, models.RiskAlert{
				EventID: eventID, BookmakerSlug: pr.Platform, CanonicalMarketID: r.Write.CanonicalMarketID,
				Line: r.Write.Line, AlertType: models.AlertAvailability, Severity: models.SeverityElevated,
				DetectedAt: now, Status: models.AlertStatusNew,
			})
		}
	}
	return alerts
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
