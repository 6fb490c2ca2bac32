package docstat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// AggEntry is one variant of the aggregate-entry discriminated union
// (spec §3): int_agg, float_agg, dec2_agg, nat_agg, str_agg, bool_agg,
// date_agg, arr_agg. Every variant knows its own AggType discriminator and
// marshals itself in canonical key-sorted form.
type AggEntry interface {
	AggType() string
	json.Marshaler
}

// NumericAggDoc is the unrounded document form of int_agg, float_agg, and
// nat_agg (spec §3 groups all three under one invariant row). Sum/Min/Max
// render exactly (shortest round trip, bare-integer when whole); Mean and
// SumSqDiff render the same way here because this shape is used for the
// pre-finalize snapshot (accum/merge output), not the finalized document —
// see FinalNumericAggDoc for the rounded, derived-stats-bearing form.
type NumericAggDoc struct {
	Kind              Kind
	Count             uint64
	Sum, Min, Max     float64
	Mean, SumSqDiff   float64
}

func (d NumericAggDoc) AggType() string { return d.Kind.AggType() }

func (d NumericAggDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeRawField(&buf, "count", true, json.RawMessage(fmt.Sprintf("%d", d.Count)))
	writeRawField(&buf, "max", false, exactNumber(d.Max))
	writeRawField(&buf, "mean", false, exactNumber(d.Mean))
	writeRawField(&buf, "min", false, exactNumber(d.Min))
	writeRawField(&buf, "sum", false, exactNumber(d.Sum))
	writeRawField(&buf, "sum_sq_diff", false, exactNumber(d.SumSqDiff))
	writeStringField(&buf, "type", false, d.AggType())
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FinalNumericAggDoc is the finalized form of int_agg, float_agg, and
// nat_agg: Mean and SumSqDiff are always rendered with two fractional
// digits, and the three derived statistics are added (spec §4.D.1).
type FinalNumericAggDoc struct {
	Kind                       Kind
	Count                      uint64
	Sum, Min, Max              float64
	Mean, SumSqDiff            float64
	Variance, Stddev, CVPct    *float64
}

func (d FinalNumericAggDoc) AggType() string { return d.Kind.AggType() }

func (d FinalNumericAggDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeRawField(&buf, "coefficient_of_variation_pct", true, nullableTwoDecimals(d.CVPct))
	writeRawField(&buf, "count", false, json.RawMessage(fmt.Sprintf("%d", d.Count)))
	writeRawField(&buf, "max", false, exactNumber(d.Max))
	writeRawField(&buf, "mean", false, twoDecimals(d.Mean))
	writeRawField(&buf, "min", false, exactNumber(d.Min))
	writeRawField(&buf, "stddev", false, nullableTwoDecimals(d.Stddev))
	writeRawField(&buf, "sum", false, exactNumber(d.Sum))
	writeRawField(&buf, "sum_sq_diff", false, twoDecimals(d.SumSqDiff))
	writeStringField(&buf, "type", false, d.AggType())
	writeRawField(&buf, "variance", false, nullableTwoDecimals(d.Variance))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dec2AggDoc is dec2_agg: every numeric field always renders with two
// fractional digits (spec §3: "sum/min/max are integer multiples of 0.01
// exactly"), in both the pre-finalize snapshot and the finalized document.
type Dec2AggDoc struct {
	Count           uint64
	Sum, Min, Max   float64
	Mean, SumSqDiff float64
}

func (Dec2AggDoc) AggType() string { return KindDec2.AggType() }

func (d Dec2AggDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeRawField(&buf, "count", true, json.RawMessage(fmt.Sprintf("%d", d.Count)))
	writeRawField(&buf, "max", false, twoDecimals(d.Max))
	writeRawField(&buf, "mean", false, twoDecimals(d.Mean))
	writeRawField(&buf, "min", false, twoDecimals(d.Min))
	writeRawField(&buf, "sum", false, twoDecimals(d.Sum))
	writeRawField(&buf, "sum_sq_diff", false, twoDecimals(d.SumSqDiff))
	writeStringField(&buf, "type", false, d.AggType())
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FinalDec2AggDoc adds the three derived statistics to Dec2AggDoc.
type FinalDec2AggDoc struct {
	Dec2AggDoc
	Variance, Stddev, CVPct *float64
}

func (FinalDec2AggDoc) AggType() string { return KindDec2.AggType() }

func (d FinalDec2AggDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeRawField(&buf, "coefficient_of_variation_pct", true, nullableTwoDecimals(d.CVPct))
	writeRawField(&buf, "count", false, json.RawMessage(fmt.Sprintf("%d", d.Count)))
	writeRawField(&buf, "max", false, twoDecimals(d.Max))
	writeRawField(&buf, "mean", false, twoDecimals(d.Mean))
	writeRawField(&buf, "min", false, twoDecimals(d.Min))
	writeRawField(&buf, "stddev", false, nullableTwoDecimals(d.Stddev))
	writeRawField(&buf, "sum", false, twoDecimals(d.Sum))
	writeRawField(&buf, "sum_sq_diff", false, twoDecimals(d.SumSqDiff))
	writeStringField(&buf, "type", false, d.AggType())
	writeRawField(&buf, "variance", false, nullableTwoDecimals(d.Variance))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CountMapAggDoc is str_agg or bool_agg: a lexicographically sorted
// frequency map.
type CountMapAggDoc struct {
	Kind   Kind // KindStr or KindBool
	Counts map[string]uint64
}

func (d CountMapAggDoc) AggType() string { return d.Kind.AggType() }

func (d CountMapAggDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(`"counts":`)
	writeSortedCounts(&buf, d.Counts)
	writeStringField(&buf, "type", false, d.AggType())
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DateAggDoc is date_agg: a sorted frequency map plus the chronological
// min/max of the ISO date strings observed.
type DateAggDoc struct {
	Counts   map[string]uint64
	Min, Max string
}

func (DateAggDoc) AggType() string { return KindDate.AggType() }

func (d DateAggDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(`"counts":`)
	writeSortedCounts(&buf, d.Counts)
	writeStringField(&buf, "max", false, d.Max)
	writeStringField(&buf, "min", false, d.Min)
	writeStringField(&buf, "type", false, d.AggType())
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ArrAggDoc is arr_agg: the number of arrays observed, plus a sorted
// per-element frequency map spanning all of them.
type ArrAggDoc struct {
	Count  uint64
	Counts map[string]uint64
}

func (ArrAggDoc) AggType() string { return KindArr.AggType() }

func (d ArrAggDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeRawField(&buf, "count", true, json.RawMessage(fmt.Sprintf("%d", d.Count)))
	buf.WriteString(`,"counts":`)
	writeSortedCounts(&buf, d.Counts)
	writeStringField(&buf, "type", false, d.AggType())
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeRawField(buf *bytes.Buffer, key string, first bool, value json.RawMessage) {
	if !first {
		buf.WriteByte(',')
	}
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":`)
	buf.Write(value)
}

func writeStringField(buf *bytes.Buffer, key string, first bool, value string) {
	if !first {
		buf.WriteByte(',')
	}
	encoded, _ := json.Marshal(value)
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":`)
	buf.Write(encoded)
}

func writeSortedCounts(buf *bytes.Buffer, counts map[string]uint64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encoded, _ := json.Marshal(k)
		buf.Write(encoded)
		buf.WriteByte(':')
		fmt.Fprintf(buf, "%d", counts[k])
	}
	buf.WriteByte('}')
}

// rawAggEntryHeader is used only to sniff the "type" discriminator before
// dispatching to the concrete variant's decoder.
type rawAggEntryHeader struct {
	Type string `json:"type"`
}

// DecodeAggEntry decodes one aggregate-entry document by sniffing its
// "type" discriminator and dispatching to the matching variant. It accepts
// both the unrounded snapshot shape and the finalized shape for numeric
// variants, since merge-of-aggs (surface 3) consumes whichever a caller
// supplies.
func DecodeAggEntry(raw json.RawMessage) (AggEntry, error) {
	var header rawAggEntryHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, newMalformed("aggregate entry: %v", err)
	}
	kind, ok := KindFromAggType(header.Type)
	if !ok {
		return nil, newUnknownAggType(header.Type)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, newMalformed("aggregate entry: %v", err)
	}

	if kind.numeric() {
		return decodeNumericAggEntry(kind, fields)
	}
	switch kind {
	case KindStr, KindBool:
		counts, err := decodeCounts(fields)
		if err != nil {
			return nil, err
		}
		return CountMapAggDoc{Kind: kind, Counts: counts}, nil
	case KindDate:
		counts, err := decodeCounts(fields)
		if err != nil {
			return nil, err
		}
		minField, err := requiredString(fields, "min")
		if err != nil {
			return nil, err
		}
		maxField, err := requiredString(fields, "max")
		if err != nil {
			return nil, err
		}
		return DateAggDoc{Counts: counts, Min: minField, Max: maxField}, nil
	case KindArr:
		counts, err := decodeCounts(fields)
		if err != nil {
			return nil, err
		}
		count, err := requiredUint(fields, "count")
		if err != nil {
			return nil, err
		}
		return ArrAggDoc{Count: count, Counts: counts}, nil
	default:
		return nil, newUnknownAggType(header.Type)
	}
}

func decodeNumericAggEntry(kind Kind, fields map[string]json.RawMessage) (AggEntry, error) {
	count, err := requiredUint(fields, "count")
	if err != nil {
		return nil, err
	}
	sum, err := requiredNumber(fields, "sum")
	if err != nil {
		return nil, err
	}
	min, err := requiredNumber(fields, "min")
	if err != nil {
		return nil, err
	}
	max, err := requiredNumber(fields, "max")
	if err != nil {
		return nil, err
	}
	mean, err := requiredNumber(fields, "mean")
	if err != nil {
		return nil, err
	}
	ssd, err := requiredNumber(fields, "sum_sq_diff")
	if err != nil {
		return nil, err
	}

	// A finalized document additionally carries the three derived stats;
	// their presence (even as null) tells us to decode as the final shape.
	if _, hasVariance := fields["variance"]; hasVariance {
		variance, err := parseNullableNumber(fields["variance"])
		if err != nil {
			return nil, newMalformed("aggregate entry: variance: %v", err)
		}
		stddev, err := parseNullableNumber(fields["stddev"])
		if err != nil {
			return nil, newMalformed("aggregate entry: stddev: %v", err)
		}
		cv, err := parseNullableNumber(fields["coefficient_of_variation_pct"])
		if err != nil {
			return nil, newMalformed("aggregate entry: coefficient_of_variation_pct: %v", err)
		}
		if kind == KindDec2 {
			return FinalDec2AggDoc{
				Dec2AggDoc: Dec2AggDoc{Count: count, Sum: sum, Min: min, Max: max, Mean: mean, SumSqDiff: ssd},
				Variance:   variance, Stddev: stddev, CVPct: cv,
			}, nil
		}
		return FinalNumericAggDoc{
			Kind: kind, Count: count, Sum: sum, Min: min, Max: max, Mean: mean, SumSqDiff: ssd,
			Variance: variance, Stddev: stddev, CVPct: cv,
		}, nil
	}

	if kind == KindDec2 {
		return Dec2AggDoc{Count: count, Sum: sum, Min: min, Max: max, Mean: mean, SumSqDiff: ssd}, nil
	}
	return NumericAggDoc{Kind: kind, Count: count, Sum: sum, Min: min, Max: max, Mean: mean, SumSqDiff: ssd}, nil
}

func decodeCounts(fields map[string]json.RawMessage) (map[string]uint64, error) {
	raw, ok := fields["counts"]
	if !ok {
		return nil, newMalformed("aggregate entry: missing \"counts\" field")
	}
	var counts map[string]uint64
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, newMalformed("aggregate entry: invalid \"counts\" field: %v", err)
	}
	return counts, nil
}

func requiredNumber(fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, newMalformed("aggregate entry: missing %q field", key)
	}
	return parseNumber(raw)
}

func requiredUint(fields map[string]json.RawMessage, key string) (uint64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, newMalformed("aggregate entry: missing %q field", key)
	}
	var u uint64
	if err := json.Unmarshal(raw, &u); err != nil {
		return 0, newMalformed("aggregate entry: invalid %q field: %v", key, err)
	}
	return u, nil
}

func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", newMalformed("aggregate entry: missing %q field", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", newMalformed("aggregate entry: invalid %q field: %v", key, err)
	}
	return s, nil
}
