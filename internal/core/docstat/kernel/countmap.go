package kernel

import (
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

// CountMapAccumulator backs str and bool: a frequency map of the distinct
// values observed (spec §4.C).
type CountMapAccumulator struct {
	kind   docstat.Kind
	counts map[string]uint64
}

func (a *CountMapAccumulator) Kind() docstat.Kind { return a.kind }

func (a *CountMapAccumulator) Update(stat docstat.Stat) error {
	if stat.Type != a.kind {
		return typeMismatch(stat.Type, a.kind)
	}
	key, err := countMapKey(a.kind, stat.Value)
	if err != nil {
		return err
	}
	a.counts[key]++
	return nil
}

func (a *CountMapAccumulator) Merge(other Accumulator) error {
	b, ok := other.(*CountMapAccumulator)
	if !ok || b.kind != a.kind {
		return typeMismatch(other.Kind(), a.kind)
	}
	for k, v := range b.counts {
		a.counts[k] += v
	}
	return nil
}

func (a *CountMapAccumulator) Snapshot() docstat.AggEntry {
	return docstat.CountMapAggDoc{Kind: a.kind, Counts: cloneCounts(a.counts)}
}

func (a *CountMapAccumulator) Finalize() docstat.AggEntry {
	return a.Snapshot()
}

func countMapKey(kind docstat.Kind, value docstat.StatValue) (string, error) {
	switch kind {
	case docstat.KindStr:
		s, ok := value.(string)
		if !ok {
			return "", docerr.New(docerr.MalformedDocument, "str stat carries non-string value %T", value)
		}
		return s, nil
	case docstat.KindBool:
		b, ok := value.(bool)
		if !ok {
			return "", docerr.New(docerr.MalformedDocument, "bool stat carries non-bool value %T", value)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	default:
		return "", docerr.New(docerr.UnknownStatType, "unexpected count-map kind %q", kind)
	}
}

func cloneCounts(counts map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}
