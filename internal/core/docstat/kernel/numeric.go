package kernel

import (
	"math"
	"math/big"

	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

// NumericAccumulator backs int, float, and nat: a single-pass Welford
// accumulator for mean and the sum of squared deviations (spec §4.B.1),
// plus an exact running sum. int and nat sums accumulate in a big.Int so
// that long batches of large integers never lose precision the way a
// running float64 sum would; float sums accumulate in float64, since a
// float stat's own values are already inexact.
type NumericAccumulator struct {
	kind docstat.Kind

	count uint64
	mean  float64
	m2    float64 // sum of squared deviations from the running mean
	min   float64
	max   float64

	floatSum float64
	intSum   *big.Int // non-nil only when kind is int or nat
}

func (a *NumericAccumulator) Kind() docstat.Kind { return a.kind }

func (a *NumericAccumulator) Update(stat docstat.Stat) error {
	if stat.Type != a.kind {
		return typeMismatch(stat.Type, a.kind)
	}
	v, ok := stat.Value.(float64)
	if !ok {
		return docerr.New(docerr.MalformedDocument, "%s stat carries non-numeric value %T", a.kind, stat.Value)
	}
	if a.kind == docstat.KindNat && v < 0 {
		return docerr.New(docerr.NegativeNat, "nat observation %v is negative", v)
	}

	if a.kind == docstat.KindInt || a.kind == docstat.KindNat {
		if a.intSum == nil {
			a.intSum = new(big.Int)
		}
		a.intSum.Add(a.intSum, big.NewInt(int64(v)))
	} else {
		a.floatSum += v
	}

	a.count++
	if a.count == 1 {
		a.min, a.max = v, v
	} else {
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
	}
	delta := v - a.mean
	a.mean += delta / float64(a.count)
	delta2 := v - a.mean
	a.m2 += delta * delta2
	return nil
}

func (a *NumericAccumulator) Merge(other Accumulator) error {
	b, ok := other.(*NumericAccumulator)
	if !ok || b.kind != a.kind {
		return typeMismatch(other.Kind(), a.kind)
	}
	if b.count == 0 {
		return nil
	}
	if a.count == 0 {
		*a = NumericAccumulator{kind: a.kind, count: b.count, mean: b.mean, m2: b.m2, min: b.min, max: b.max, floatSum: b.floatSum}
		if b.intSum != nil {
			a.intSum = new(big.Int).Set(b.intSum)
		}
		return nil
	}

	// Chan/Welford parallel combine: merges two independent running means
	// and sums of squared deviations into the statistics of their union.
	delta := b.mean - a.mean
	newCount := a.count + b.count
	newMean := a.mean + delta*float64(b.count)/float64(newCount)
	newM2 := a.m2 + b.m2 + delta*delta*float64(a.count)*float64(b.count)/float64(newCount)

	a.mean = newMean
	a.m2 = newM2
	a.count = newCount
	if b.min < a.min {
		a.min = b.min
	}
	if b.max > a.max {
		a.max = b.max
	}
	if a.intSum != nil || b.intSum != nil {
		if a.intSum == nil {
			a.intSum = new(big.Int)
		}
		if b.intSum != nil {
			a.intSum.Add(a.intSum, b.intSum)
		}
	} else {
		a.floatSum += b.floatSum
	}
	return nil
}

func (a *NumericAccumulator) sum() float64 {
	if a.intSum != nil {
		f, _ := new(big.Float).SetInt(a.intSum).Float64()
		return f
	}
	return a.floatSum
}

func (a *NumericAccumulator) Snapshot() docstat.AggEntry {
	return docstat.NumericAggDoc{
		Kind: a.kind, Count: a.count, Sum: a.sum(), Min: a.min, Max: a.max, Mean: a.mean, SumSqDiff: a.m2,
	}
}

func (a *NumericAccumulator) Finalize() docstat.AggEntry {
	variance, stddev, cv := derivedStats(a.count, a.mean, a.m2)
	return docstat.FinalNumericAggDoc{
		Kind: a.kind, Count: a.count, Sum: a.sum(), Min: a.min, Max: a.max,
		Mean: a.mean, SumSqDiff: a.m2,
		Variance: variance, Stddev: stddev, CVPct: cv,
	}
}

// derivedStats computes the sample variance, its square root, and the
// coefficient of variation (spec §4.D.1), returning nil pointers wherever
// the underlying ratio is undefined. Sample variance is undefined below
// two observations, so count<=1 nulls out all three.
func derivedStats(count uint64, mean, m2 float64) (variance, stddev, cv *float64) {
	if count <= 1 {
		return nil, nil, nil
	}
	v := m2 / float64(count-1)
	s := math.Sqrt(v)
	variance = &v
	stddev = &s
	if mean != 0 {
		c := (s / mean) * 100
		cv = &c
	}
	return
}

func numericFromDoc(kind docstat.Kind, count uint64, sum, min, max, mean, sumSqDiff float64) (Accumulator, error) {
	a := &NumericAccumulator{kind: kind, count: count, mean: mean, m2: sumSqDiff, min: min, max: max}
	if kind == docstat.KindInt || kind == docstat.KindNat {
		bigSum, _ := big.NewFloat(sum).Int(nil)
		a.intSum = bigSum
	} else {
		a.floatSum = sum
	}
	return a, nil
}
