package docstat

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// exactNumber renders v the way the original extension's num_value helper
// does: as a bare integer literal when v has no fractional part (so 100.0
// comes out "100", never "100.0"), otherwise as the shortest decimal that
// round-trips back to v. Used for the unrounded fields of a numeric
// accumulator — sum, min, max, and in the pre-finalize snapshot also mean
// and sum_sq_diff — that must preserve exact display.
func exactNumber(v float64) json.RawMessage {
	if v == float64(int64(v)) {
		return json.RawMessage(strconv.FormatInt(int64(v), 10))
	}
	return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
}

// twoDecimals rounds v to two fractional digits half-away-from-zero (see
// roundHalfAwayFromZero2), then renders it with exactly two fractional
// digits. Used for derived statistics and for every dec2_agg field, which
// must always display two decimal places even when the trailing digits
// are zero.
func twoDecimals(v float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%.2f", roundHalfAwayFromZero2(v)))
}

// nullableTwoDecimals renders *v with two fractional digits, or the JSON
// null literal when v is nil. Used for variance/stddev/coefficient_of_variation_pct.
func nullableTwoDecimals(v *float64) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	return twoDecimals(*v)
}

// roundHalfAwayFromZero2 rounds v to two fractional digits, rounding ties
// away from zero (the convention spec'd for every derived and dec2 field).
func roundHalfAwayFromZero2(v float64) float64 {
	scaled := v * 100
	if scaled >= 0 {
		return float64(int64(scaled+0.5)) / 100
	}
	return float64(int64(scaled-0.5)) / 100
}

// parseNumber reads a bare JSON number literal back into a float64.
func parseNumber(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("malformed numeric field: %w", err)
	}
	return f, nil
}

// parseNullableNumber reads a bare JSON number literal or null into *float64.
func parseNullableNumber(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	f, err := parseNumber(raw)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
