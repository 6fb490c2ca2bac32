package docstat

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// NewStat translates a host scalar into a tagged observation (component A
// of the aggregation core). Recognized Go types map onto the closed set of
// host types from spec §4.A:
//
//	int, int32, int64        -> int
//	float32, float64         -> float (rejecting NaN/Inf)
//	decimal.Decimal          -> dec2 (rounded half-away-from-zero to 2 digits)
//	bool                     -> bool
//	string                   -> str
//	time.Time                -> date
//	[]interface{}            -> arr (recursive arrays rejected)
//
// Anything else returns an InvalidScalar error ("unknown host type").
func NewStat(v interface{}) (Stat, error) {
	switch val := v.(type) {
	case int:
		return Stat{Type: KindInt, Value: float64(val)}, nil
	case int32:
		return Stat{Type: KindInt, Value: float64(val)}, nil
	case int64:
		return Stat{Type: KindInt, Value: float64(val)}, nil
	case float32:
		return newFloatStat(float64(val))
	case float64:
		return newFloatStat(val)
	case decimal.Decimal:
		return Stat{Type: KindDec2, Value: val.Round(2)}, nil
	case bool:
		return Stat{Type: KindBool, Value: val}, nil
	case string:
		return Stat{Type: KindStr, Value: val}, nil
	case time.Time:
		return Stat{Type: KindDate, Value: val.Format("2006-01-02")}, nil
	case []interface{}:
		return newArrStat(val)
	default:
		return Stat{}, newInvalidScalar("unknown host type %T", v)
	}
}

func newFloatStat(v float64) (Stat, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Stat{}, newInvalidScalar("float value %v is not finite", v)
	}
	return Stat{Type: KindFloat, Value: v}, nil
}

// NewNat builds a nat stat directly. nat has no automatic host-type mapping
// (spec §4.A) — it is constructed only by callers who build the stat
// themselves. The codec does not reject negative values here; that
// rejection is the numeric kernel's job at accumulation time (spec §4.B.1,
// NegativeNat), so that a nat stat can still round-trip through storage
// even if some accumulator later refuses to fold it in.
func NewNat(v int64) Stat {
	return Stat{Type: KindNat, Value: float64(v)}
}

// NewDec2 builds a dec2 stat from an exact decimal value, rounding
// half-away-from-zero to 2 fractional digits per spec §4.A.
func NewDec2(v decimal.Decimal) Stat {
	return Stat{Type: KindDec2, Value: v.Round(2)}
}

func newArrStat(elems []interface{}) (Stat, error) {
	out := make([]Stat, 0, len(elems))
	for _, e := range elems {
		if _, isArr := e.([]interface{}); isArr {
			return Stat{}, newInvalidScalar("recursive arrays are not supported")
		}
		el, err := NewStat(e)
		if err != nil {
			return Stat{}, err
		}
		out = append(out, el)
	}
	return Stat{Type: KindArr, Value: out}, nil
}

// StringifyElement renders one array element the way the arr kernel's
// frequency map keys it: strings verbatim, numerics via shortest
// round-trip decimal, booleans as "true"/"false", and the JSON null
// marker (not produced by NewStat, but reachable when decoding a document
// built by another writer, which turns it into the str element "null") as
// "null".
func StringifyElement(s Stat) (string, error) {
	switch s.Type {
	case KindStr, KindDate:
		str, ok := s.Value.(string)
		if !ok {
			return "", newMalformed("arr element: expected string value, got %T", s.Value)
		}
		return str, nil
	case KindInt, KindFloat, KindNat:
		f, ok := s.Value.(float64)
		if !ok {
			return "", newMalformed("arr element: expected numeric value, got %T", s.Value)
		}
		return string(exactNumber(f)), nil
	case KindDec2:
		d, ok := s.Value.(decimal.Decimal)
		if !ok {
			return "", newMalformed("arr element: expected decimal value, got %T", s.Value)
		}
		return d.StringFixed(2), nil
	case KindBool:
		b, ok := s.Value.(bool)
		if !ok {
			return "", newMalformed("arr element: expected bool value, got %T", s.Value)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("docstat: cannot stringify array element of kind %q", s.Type)
	}
}
