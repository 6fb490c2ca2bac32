package kernel

import (
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

// DateAccumulator backs date: a frequency map of the distinct ISO dates
// observed, plus their chronological min/max (spec §4.C). Lexicographic
// comparison of YYYY-MM-DD strings matches calendar order, so min/max
// track with plain string comparison.
type DateAccumulator struct {
	counts   map[string]uint64
	min, max string
}

func (a *DateAccumulator) Kind() docstat.Kind { return docstat.KindDate }

func (a *DateAccumulator) Update(stat docstat.Stat) error {
	if stat.Type != docstat.KindDate {
		return typeMismatch(stat.Type, docstat.KindDate)
	}
	s, ok := stat.Value.(string)
	if !ok {
		return docerr.New(docerr.MalformedDocument, "date stat carries non-string value %T", stat.Value)
	}
	a.counts[s]++
	if a.min == "" || s < a.min {
		a.min = s
	}
	if a.max == "" || s > a.max {
		a.max = s
	}
	return nil
}

func (a *DateAccumulator) Merge(other Accumulator) error {
	b, ok := other.(*DateAccumulator)
	if !ok {
		return typeMismatch(other.Kind(), docstat.KindDate)
	}
	for k, v := range b.counts {
		a.counts[k] += v
	}
	if b.min != "" && (a.min == "" || b.min < a.min) {
		a.min = b.min
	}
	if b.max != "" && (a.max == "" || b.max > a.max) {
		a.max = b.max
	}
	return nil
}

func (a *DateAccumulator) Snapshot() docstat.AggEntry {
	return docstat.DateAggDoc{Counts: cloneCounts(a.counts), Min: a.min, Max: a.max}
}

func (a *DateAccumulator) Finalize() docstat.AggEntry {
	return a.Snapshot()
}
