// Package kernel implements the per-variable accumulators that back the
// three aggregate surfaces (spec §5): stats-from-pairs, agg-from-stats, and
// merge-of-aggs. Each accumulator kind mirrors one Postgres aggregate
// state-machine role — transition (Update), combine (Merge), serialize
// (Snapshot), and final (Finalize) — the same four operations a parallel
// aggregate function exposes to the planner.
package kernel

import (
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

// Accumulator is the state-machine interface every kind's accumulator
// satisfies. Update and Merge mutate in place; Snapshot and Finalize are
// read-only projections into the wire document shapes.
type Accumulator interface {
	// Kind reports the stat kind this accumulator is bound to.
	Kind() docstat.Kind

	// Update folds one observation into the running state. It returns
	// TypeMismatch if stat.Type does not match Kind(), and NegativeNat if
	// a nat observation is negative.
	Update(stat docstat.Stat) error

	// Merge combines another accumulator of the same Kind() into this one.
	// It returns TypeMismatch if the kinds differ.
	Merge(other Accumulator) error

	// Snapshot renders the current state as the unrounded, non-final
	// aggregate-entry document (the shape produced by accum/combine).
	Snapshot() docstat.AggEntry

	// Finalize renders the current state as the finalized aggregate-entry
	// document, including any derived statistics.
	Finalize() docstat.AggEntry
}

// New constructs a zero-valued accumulator for kind.
func New(kind docstat.Kind) (Accumulator, error) {
	switch kind {
	case docstat.KindInt, docstat.KindFloat, docstat.KindNat:
		return &NumericAccumulator{kind: kind}, nil
	case docstat.KindDec2:
		return &Dec2Accumulator{}, nil
	case docstat.KindStr, docstat.KindBool:
		return &CountMapAccumulator{kind: kind, counts: map[string]uint64{}}, nil
	case docstat.KindDate:
		return &DateAccumulator{counts: map[string]uint64{}}, nil
	case docstat.KindArr:
		return &ArrAccumulator{counts: map[string]uint64{}}, nil
	default:
		return nil, docerr.New(docerr.UnknownStatType, "unknown stat type %q", kind)
	}
}

// FromAggEntry rehydrates an accumulator from a previously serialized
// aggregate-entry document, so that merge-of-aggs (spec §5.3) and a
// subsequent transition against existing state can resume where a prior
// accum/combine call left off.
func FromAggEntry(entry docstat.AggEntry) (Accumulator, error) {
	switch doc := entry.(type) {
	case docstat.NumericAggDoc:
		return numericFromDoc(doc.Kind, doc.Count, doc.Sum, doc.Min, doc.Max, doc.Mean, doc.SumSqDiff)
	case docstat.FinalNumericAggDoc:
		return numericFromDoc(doc.Kind, doc.Count, doc.Sum, doc.Min, doc.Max, doc.Mean, doc.SumSqDiff)
	case docstat.Dec2AggDoc:
		return dec2FromDoc(doc.Count, doc.Sum, doc.Min, doc.Max, doc.Mean, doc.SumSqDiff)
	case docstat.FinalDec2AggDoc:
		return dec2FromDoc(doc.Count, doc.Sum, doc.Min, doc.Max, doc.Mean, doc.SumSqDiff)
	case docstat.CountMapAggDoc:
		counts := make(map[string]uint64, len(doc.Counts))
		for k, v := range doc.Counts {
			counts[k] = v
		}
		return &CountMapAccumulator{kind: doc.Kind, counts: counts}, nil
	case docstat.DateAggDoc:
		counts := make(map[string]uint64, len(doc.Counts))
		for k, v := range doc.Counts {
			counts[k] = v
		}
		return &DateAccumulator{counts: counts, min: doc.Min, max: doc.Max}, nil
	case docstat.ArrAggDoc:
		counts := make(map[string]uint64, len(doc.Counts))
		for k, v := range doc.Counts {
			counts[k] = v
		}
		return &ArrAccumulator{count: doc.Count, counts: counts}, nil
	default:
		return nil, docerr.New(docerr.UnknownAggType, "unrecognized aggregate entry type %T", entry)
	}
}

func typeMismatch(have, want docstat.Kind) *docerr.Error {
	return docerr.New(docerr.TypeMismatch, "expected %s, got %s", want, have)
}
