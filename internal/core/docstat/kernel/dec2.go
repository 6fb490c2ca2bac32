package kernel

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

var hundred = decimal.NewFromInt(100)

// Dec2Accumulator backs dec2. Sum, min, and max accumulate as exact
// integer cents (scaled by 100), so they never drift the way a running
// float64 sum of currency values would; mean and the sum of squared
// deviations run the same Welford recurrence as NumericAccumulator, since
// dec2's own two-decimal precision already bounds their error.
type Dec2Accumulator struct {
	count               uint64
	sumCents            int64
	minCents, maxCents  int64
	mean, m2            float64
}

func (a *Dec2Accumulator) Kind() docstat.Kind { return docstat.KindDec2 }

func (a *Dec2Accumulator) Update(stat docstat.Stat) error {
	if stat.Type != docstat.KindDec2 {
		return typeMismatch(stat.Type, docstat.KindDec2)
	}
	d, ok := stat.Value.(decimal.Decimal)
	if !ok {
		return docerr.New(docerr.MalformedDocument, "dec2 stat carries non-decimal value %T", stat.Value)
	}
	cents := d.Mul(hundred).Round(0).IntPart()

	a.sumCents += cents
	a.count++
	if a.count == 1 {
		a.minCents, a.maxCents = cents, cents
	} else {
		if cents < a.minCents {
			a.minCents = cents
		}
		if cents > a.maxCents {
			a.maxCents = cents
		}
	}
	v := float64(cents) / 100
	delta := v - a.mean
	a.mean += delta / float64(a.count)
	delta2 := v - a.mean
	a.m2 += delta * delta2
	return nil
}

func (a *Dec2Accumulator) Merge(other Accumulator) error {
	b, ok := other.(*Dec2Accumulator)
	if !ok {
		return typeMismatch(other.Kind(), docstat.KindDec2)
	}
	if b.count == 0 {
		return nil
	}
	if a.count == 0 {
		*a = *b
		return nil
	}
	delta := b.mean - a.mean
	newCount := a.count + b.count
	newMean := a.mean + delta*float64(b.count)/float64(newCount)
	newM2 := a.m2 + b.m2 + delta*delta*float64(a.count)*float64(b.count)/float64(newCount)

	a.mean = newMean
	a.m2 = newM2
	a.count = newCount
	a.sumCents += b.sumCents
	if b.minCents < a.minCents {
		a.minCents = b.minCents
	}
	if b.maxCents > a.maxCents {
		a.maxCents = b.maxCents
	}
	return nil
}

func (a *Dec2Accumulator) Snapshot() docstat.AggEntry {
	return docstat.Dec2AggDoc{
		Count: a.count,
		Sum:   float64(a.sumCents) / 100,
		Min:   float64(a.minCents) / 100,
		Max:   float64(a.maxCents) / 100,
		Mean:  a.mean,
		SumSqDiff: a.m2,
	}
}

func (a *Dec2Accumulator) Finalize() docstat.AggEntry {
	variance, stddev, cv := derivedStats(a.count, a.mean, a.m2)
	base := a.Snapshot().(docstat.Dec2AggDoc)
	return docstat.FinalDec2AggDoc{
		Dec2AggDoc: base,
		Variance:   variance, Stddev: stddev, CVPct: cv,
	}
}

func dec2FromDoc(count uint64, sum, min, max, mean, sumSqDiff float64) (Accumulator, error) {
	return &Dec2Accumulator{
		count:    count,
		sumCents: int64(math.Round(sum * 100)),
		minCents: int64(math.Round(min * 100)),
		maxCents: int64(math.Round(max * 100)),
		mean:     mean,
		m2:       sumSqDiff,
	}, nil
}
