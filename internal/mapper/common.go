package mapper

import "strconv"

// parseHandicapLine parses a platform's formatted handicap string into
// a float64 line value. Returns nil rather than erroring on malformed
// input, since a market missing its line should be skipped upstream,
// not crash the mapper (§8 boundary: "malformed specifier produces a
// MappingError, not a crash").
func parseHandicapLine(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
