package docstat

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Stat is one tagged scalar observation: {"type": ..., "value": ...}.
// It is immutable once constructed — the zero value is never handed out by
// any constructor in this package.
type Stat struct {
	Type  Kind
	Value StatValue
}

// StatValue is the decoded payload of a Stat. Its concrete Go type depends
// on Type:
//
//	int/float/nat -> float64
//	dec2          -> decimal.Decimal
//	str           -> string
//	bool          -> bool
//	date          -> string (already validated ISO YYYY-MM-DD)
//	arr           -> []Stat (recursive arrays are rejected by the codec)
type StatValue interface{}

// MarshalJSON emits {"type":...,"value":...}; "type" sorts before "value"
// lexicographically so this is already in canonical key order.
func (s Stat) MarshalJSON() ([]byte, error) {
	valueJSON, err := marshalStatValue(s.Type, s.Value)
	if err != nil {
		return nil, err
	}
	typeJSON, err := json.Marshal(string(s.Type))
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(typeJSON)+len(valueJSON)+16)
	buf = append(buf, `{"type":`...)
	buf = append(buf, typeJSON...)
	buf = append(buf, `,"value":`...)
	buf = append(buf, valueJSON...)
	buf = append(buf, '}')
	return buf, nil
}

func marshalStatValue(t Kind, v StatValue) ([]byte, error) {
	switch t {
	case KindInt, KindFloat, KindNat:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("docstat: %s stat carries non-numeric value %T", t, v)
		}
		return exactNumber(f), nil
	case KindDec2:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return nil, fmt.Errorf("docstat: dec2 stat carries non-decimal value %T", v)
		}
		return []byte(d.StringFixed(2)), nil
	case KindStr, KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("docstat: %s stat carries non-string value %T", t, v)
		}
		return json.Marshal(s)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("docstat: bool stat carries non-bool value %T", v)
		}
		return json.Marshal(b)
	case KindArr:
		elems, ok := v.([]Stat)
		if !ok {
			return nil, fmt.Errorf("docstat: arr stat carries non-array value %T", v)
		}
		out := []byte{'['}
		for i, el := range elems {
			if i > 0 {
				out = append(out, ',')
			}
			elJSON, err := marshalStatValue(el.Type, el.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, elJSON...)
		}
		out = append(out, ']')
		return out, nil
	default:
		return nil, fmt.Errorf("docstat: unknown stat type %q", t)
	}
}

// rawStat is the wire shape used only for decoding.
type rawStat struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON decodes a stat document, rejecting anything outside the
// closed set of kinds (UnknownStatType) and anything structurally broken
// (MalformedDocument).
func (s *Stat) UnmarshalJSON(data []byte) error {
	var raw rawStat
	if err := json.Unmarshal(data, &raw); err != nil {
		return newMalformed("stat: %v", err)
	}
	if raw.Value == nil {
		return newMalformed("stat: missing \"value\" field")
	}
	stat, err := decodeStatValue(Kind(raw.Type), raw.Value)
	if err != nil {
		return err
	}
	*s = stat
	return nil
}

func decodeStatValue(kind Kind, raw json.RawMessage) (Stat, error) {
	if !kind.Valid() {
		return Stat{}, newUnknownStatType(string(kind))
	}
	switch kind {
	case KindInt, KindFloat, KindNat:
		f, err := parseNumber(raw)
		if err != nil {
			return Stat{}, newMalformed("stat: %v", err)
		}
		return Stat{Type: kind, Value: f}, nil
	case KindDec2:
		var s string
		// Accept either a JSON number literal or a quoted decimal string.
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(raw)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Stat{}, newMalformed("stat: invalid dec2 value %q: %v", s, err)
		}
		return Stat{Type: kind, Value: d.Round(2)}, nil
	case KindStr:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Stat{}, newMalformed("stat: invalid str value: %v", err)
		}
		return Stat{Type: kind, Value: s}, nil
	case KindDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Stat{}, newMalformed("stat: invalid date value: %v", err)
		}
		if !isValidISODate(s) {
			return Stat{}, newInvalidScalar("stat: %q is not a valid YYYY-MM-DD date", s)
		}
		return Stat{Type: kind, Value: s}, nil
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Stat{}, newMalformed("stat: invalid bool value: %v", err)
		}
		return Stat{Type: kind, Value: b}, nil
	case KindArr:
		elems, err := decodeArrValue(raw)
		if err != nil {
			return Stat{}, err
		}
		return Stat{Type: kind, Value: elems}, nil
	default:
		return Stat{}, newUnknownStatType(string(kind))
	}
}

func decodeArrValue(raw json.RawMessage) ([]Stat, error) {
	// The array value may be a JSON array of element stats, or the
	// PostgreSQL array text literal "{a,b,c}" (see original_source).
	trimmed := trimSpaceBytes(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, newMalformed("stat: invalid arr text literal: %v", err)
		}
		return parsePGArrayLiteral(s)
	}

	var rawElems []json.RawMessage
	if err := json.Unmarshal(raw, &rawElems); err != nil {
		return nil, newMalformed("stat: arr value must be an array: %v", err)
	}
	elems := make([]Stat, 0, len(rawElems))
	for _, re := range rawElems {
		el, err := decodeArrayElement(re)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	return elems, nil
}

// decodeArrayElement decodes one bare scalar element of an array stat.
// Elements carry no {"type":...} envelope of their own — the element's Go
// JSON shape determines its kind — and a nested array is rejected outright.
func decodeArrayElement(raw json.RawMessage) (Stat, error) {
	trimmed := trimSpaceBytes(raw)
	if len(trimmed) == 0 {
		return Stat{}, newMalformed("stat: empty array element")
	}
	switch trimmed[0] {
	case '[':
		return Stat{}, newInvalidScalar("stat: nested arrays are not supported")
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Stat{}, newMalformed("stat: invalid str array element: %v", err)
		}
		return Stat{Type: KindStr, Value: s}, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Stat{}, newMalformed("stat: invalid bool array element: %v", err)
		}
		return Stat{Type: KindBool, Value: b}, nil
	case 'n':
		if string(trimmed) != "null" {
			return Stat{}, newMalformed("stat: invalid array element %s", trimmed)
		}
		// A null element has no kind of its own; it is kept as the string
		// "null", which is also its key in the arr kernel's counts.
		return Stat{Type: KindStr, Value: "null"}, nil
	default:
		f, err := parseNumber(raw)
		if err != nil {
			return Stat{}, newMalformed("stat: invalid numeric array element: %v", err)
		}
		return Stat{Type: KindFloat, Value: f}, nil
	}
}

func trimSpaceBytes(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isJSONSpace(b[start]) {
		start++
	}
	for end > start && isJSONSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
