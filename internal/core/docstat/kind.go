// Package docstat implements the tagged document model shared by every
// layer of the aggregation core: the scalar observation ("stat"), the
// per-entity bundle of observations ("stats"), and the per-entity bundle of
// aggregate summaries ("stats_agg"). It owns the canonical, key-sorted wire
// encoding and decoding of all three shapes.
package docstat

// Kind identifies the discriminated variant of a stat's value and, by
// extension, of the accumulator bound to a variable name.
type Kind string

const (
	KindInt   Kind = "int"
	KindFloat Kind = "float"
	KindDec2  Kind = "dec2"
	KindNat   Kind = "nat"
	KindStr   Kind = "str"
	KindBool  Kind = "bool"
	KindDate  Kind = "date"
	KindArr   Kind = "arr"
)

// Valid reports whether k is one of the closed set of stat kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInt, KindFloat, KindDec2, KindNat, KindStr, KindBool, KindDate, KindArr:
		return true
	default:
		return false
	}
}

// AggType returns the discriminator this kind's accumulator is emitted
// under, e.g. KindInt -> "int_agg".
func (k Kind) AggType() string {
	return string(k) + "_agg"
}

// KindFromAggType reverses AggType, e.g. "int_agg" -> KindInt. Returns ok=false
// for anything outside the closed set of aggregate-entry discriminators.
func KindFromAggType(aggType string) (Kind, bool) {
	if len(aggType) < 5 || aggType[len(aggType)-4:] != "_agg" {
		return "", false
	}
	k := Kind(aggType[:len(aggType)-4])
	if !k.Valid() {
		return "", false
	}
	return k, true
}

// numeric reports whether k's accumulator follows the Welford numeric kernel.
func (k Kind) numeric() bool {
	switch k {
	case KindInt, KindFloat, KindNat, KindDec2:
		return true
	default:
		return false
	}
}
