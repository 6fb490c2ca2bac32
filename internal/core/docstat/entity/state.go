// Package entity binds a per-entity name->accumulator map on top of the
// kernel package, enforcing the monomorphic-binding invariant: once a
// variable name is bound to a kind within an entity, every later
// observation or merge against that name must carry the same kind (spec
// §4.B, TypeMismatch). It is the glue between the document model
// (docstat) and the stateless per-kind accumulators (kernel).
package entity

import (
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
	"github.com/veridit/jsonb-stats/internal/core/docstat/kernel"
)

// State is the running aggregation state for one entity: a map from
// variable name to the accumulator bound to it.
type State struct {
	accumulators map[string]kernel.Accumulator
}

// New returns an empty entity state.
func New() *State {
	return &State{accumulators: map[string]kernel.Accumulator{}}
}

// Observe folds one named observation into the entity's state, creating
// the accumulator for name on first sight and binding it to stat.Type for
// the lifetime of the state. Backs stats-from-pairs and the accumulation
// half of agg-from-stats (spec §5.1, §5.2).
func (s *State) Observe(name string, stat docstat.Stat) error {
	acc, ok := s.accumulators[name]
	if !ok {
		var err error
		acc, err = kernel.New(stat.Type)
		if err != nil {
			return err
		}
		s.accumulators[name] = acc
	}
	return acc.Update(stat)
}

// MergeAgg folds a previously computed stats_agg bundle into the entity's
// state, rehydrating an accumulator per entry and merging it into (or
// installing it as) the accumulator already bound to that name. Backs
// merge-of-aggs (spec §5.3) and the combine side of agg-from-stats.
func (s *State) MergeAgg(agg docstat.StatsAgg) error {
	for name, entry := range agg {
		incoming, err := kernel.FromAggEntry(entry)
		if err != nil {
			return err
		}
		existing, ok := s.accumulators[name]
		if !ok {
			s.accumulators[name] = incoming
			continue
		}
		if existing.Kind() != incoming.Kind() {
			return docerr.New(docerr.TypeMismatch, "variable %q bound to %s cannot merge %s", name, existing.Kind(), incoming.Kind())
		}
		if err := existing.Merge(incoming); err != nil {
			return err
		}
	}
	return nil
}

// Combine merges another entity's state into this one, variable by
// variable, enforcing the same monomorphic-binding invariant as MergeAgg.
// Used to fold per-worker partial states into a single result (the
// parallel combine step of any of the three aggregate surfaces).
func (s *State) Combine(other *State) error {
	for name, incoming := range other.accumulators {
		existing, ok := s.accumulators[name]
		if !ok {
			s.accumulators[name] = incoming
			continue
		}
		if existing.Kind() != incoming.Kind() {
			return docerr.New(docerr.TypeMismatch, "variable %q bound to %s cannot merge %s", name, existing.Kind(), incoming.Kind())
		}
		if err := existing.Merge(incoming); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot renders the entity's state as an unrounded, non-final
// stats_agg document.
func (s *State) Snapshot() docstat.StatsAgg {
	out := make(docstat.StatsAgg, len(s.accumulators))
	for name, acc := range s.accumulators {
		out[name] = acc.Snapshot()
	}
	return out
}

// Finalize renders the entity's state as a finalized stats_agg document,
// including every variable's derived statistics.
func (s *State) Finalize() docstat.StatsAgg {
	out := make(docstat.StatsAgg, len(s.accumulators))
	for name, acc := range s.accumulators {
		out[name] = acc.Finalize()
	}
	return out
}

// Empty reports whether the state has observed or merged anything yet.
func (s *State) Empty() bool {
	return len(s.accumulators) == 0
}
