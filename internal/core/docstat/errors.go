package docstat

import (
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

func newUnknownStatType(statType string) *docerr.Error {
	return docerr.New(docerr.UnknownStatType, "unknown stat type %q", statType)
}

func newUnknownAggType(aggType string) *docerr.Error {
	return docerr.New(docerr.UnknownAggType, "unknown aggregate type %q", aggType)
}

func newMalformed(format string, args ...interface{}) *docerr.Error {
	return docerr.New(docerr.MalformedDocument, format, args...)
}

func newInvalidScalar(format string, args ...interface{}) *docerr.Error {
	return docerr.New(docerr.InvalidScalar, format, args...)
}

// isValidISODate reports whether s is a calendar date in strict YYYY-MM-DD
// form. String comparison of two such dates matches chronological order,
// which is what the date kernel's min/max tracking relies on.
func isValidISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	year, month, day := s[0:4], s[5:7], s[8:10]
	y, ok := digits(year, 4)
	if !ok {
		return false
	}
	m, ok := digits(month, 2)
	if !ok || m < 1 || m > 12 {
		return false
	}
	d, ok := digits(day, 2)
	if !ok || d < 1 || d > daysInMonth(y, m) {
		return false
	}
	return true
}

func digits(s string, n int) (int, bool) {
	if len(s) != n {
		return 0, false
	}
	v := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	return v, true
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// parsePGArrayLiteral parses the PostgreSQL array text representation
// "{a,b,c}" into element stats. Every element is treated as a bare string
// (the text form carries no type information of its own), matching the
// behavior the original extension's jsonb_stats_accum.rs falls back to for
// PG array input.
func parsePGArrayLiteral(s string) ([]Stat, error) {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, newMalformed("stat: %q is not a valid PostgreSQL array literal", s)
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil, nil
	}
	parts := splitTopLevel(inner, ',')
	elems := make([]Stat, 0, len(parts))
	for _, p := range parts {
		elems = append(elems, Stat{Type: KindStr, Value: p})
	}
	return elems, nil
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
