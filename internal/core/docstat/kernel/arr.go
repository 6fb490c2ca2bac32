package kernel

import (
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

// ArrAccumulator backs arr: the number of arrays observed, plus a
// frequency map spanning every element across all of them (spec §4.C).
type ArrAccumulator struct {
	count  uint64
	counts map[string]uint64
}

func (a *ArrAccumulator) Kind() docstat.Kind { return docstat.KindArr }

func (a *ArrAccumulator) Update(stat docstat.Stat) error {
	if stat.Type != docstat.KindArr {
		return typeMismatch(stat.Type, docstat.KindArr)
	}
	elems, ok := stat.Value.([]docstat.Stat)
	if !ok {
		return docerr.New(docerr.MalformedDocument, "arr stat carries non-array value %T", stat.Value)
	}
	a.count++
	for _, el := range elems {
		key, err := docstat.StringifyElement(el)
		if err != nil {
			return err
		}
		a.counts[key]++
	}
	return nil
}

func (a *ArrAccumulator) Merge(other Accumulator) error {
	b, ok := other.(*ArrAccumulator)
	if !ok {
		return typeMismatch(other.Kind(), docstat.KindArr)
	}
	a.count += b.count
	for k, v := range b.counts {
		a.counts[k] += v
	}
	return nil
}

func (a *ArrAccumulator) Snapshot() docstat.AggEntry {
	return docstat.ArrAggDoc{Count: a.count, Counts: cloneCounts(a.counts)}
}

func (a *ArrAccumulator) Finalize() docstat.AggEntry {
	return a.Snapshot()
}
