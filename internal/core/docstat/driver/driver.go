// Package driver implements the three aggregate surfaces from spec §5 —
// stats-from-pairs, agg-from-stats, and merge-of-aggs — on top of the
// entity package's per-variable state. The operation names below mirror
// the four roles of a Postgres parallel aggregate function: transition
// folds one observation in, combine merges two partial states, serialize
// projects a partial state to its wire document, and final renders the
// finished document.
package driver

import (
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/entity"
)

// Transition folds one named host value into state, creating and binding
// its accumulator on first sight.
func Transition(state *entity.State, name string, hostValue interface{}) error {
	stat, err := docstat.NewStat(hostValue)
	if err != nil {
		return err
	}
	return state.Observe(name, stat)
}

// TransitionStat folds one already-tagged observation into state.
func TransitionStat(state *entity.State, name string, stat docstat.Stat) error {
	return state.Observe(name, stat)
}

// Combine merges b's partial state into a, enforcing the monomorphic
// binding invariant per variable.
func Combine(a, b *entity.State) error {
	return a.Combine(b)
}

// Serialize projects state to its unrounded, non-final stats_agg document
// — the shape a worker ships to a leader mid-aggregation.
func Serialize(state *entity.State) docstat.StatsAgg {
	return state.Snapshot()
}

// Deserialize rehydrates a partial state from a previously serialized
// stats_agg document, so a leader can keep combining into it.
func Deserialize(agg docstat.StatsAgg) (*entity.State, error) {
	state := entity.New()
	if err := state.MergeAgg(agg); err != nil {
		return nil, err
	}
	return state, nil
}

// Final renders state's finished, finalized stats_agg document.
func Final(state *entity.State) docstat.StatsAgg {
	return state.Finalize()
}

// StatsFromPairs implements the stats-from-pairs surface (spec §5.1): it
// tags each named host value and collects them into one stats document.
// It performs no accumulation — every name appears at most once in pairs.
func StatsFromPairs(pairs map[string]interface{}) (docstat.Stats, error) {
	out := make(docstat.Stats, len(pairs))
	for name, v := range pairs {
		stat, err := docstat.NewStat(v)
		if err != nil {
			return nil, err
		}
		out[name] = stat
	}
	return out, nil
}

// AggFromStats implements the agg-from-stats surface (spec §5.2): it
// accumulates one or more stats documents — and, optionally, a prior
// stats_agg to resume from — into a finalized stats_agg document.
func AggFromStats(prior docstat.StatsAgg, observations ...docstat.Stats) (docstat.StatsAgg, error) {
	state := entity.New()
	if prior != nil {
		if err := state.MergeAgg(prior); err != nil {
			return nil, err
		}
	}
	for _, doc := range observations {
		for name, stat := range doc {
			if err := state.Observe(name, stat); err != nil {
				return nil, err
			}
		}
	}
	return state.Finalize(), nil
}

// MergeOfAggs implements the merge-of-aggs surface (spec §5.3): it
// combines any number of stats_agg documents — non-final or final alike —
// into one finalized stats_agg document.
func MergeOfAggs(aggs ...docstat.StatsAgg) (docstat.StatsAgg, error) {
	state := entity.New()
	for _, agg := range aggs {
		if err := state.MergeAgg(agg); err != nil {
			return nil, err
		}
	}
	return state.Finalize(), nil
}
