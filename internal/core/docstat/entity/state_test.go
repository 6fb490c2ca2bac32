package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

func mustStat(t *testing.T, v interface{}) docstat.Stat {
	t.Helper()
	s, err := docstat.NewStat(v)
	require.NoError(t, err)
	return s
}

func TestState_ObserveBindsAndAccumulates(t *testing.T) {
	s := New()
	require.NoError(t, s.Observe("revenue", mustStat(t, 10)))
	require.NoError(t, s.Observe("revenue", mustStat(t, 20)))

	agg := s.Finalize()
	entry, ok := agg["revenue"].(docstat.FinalNumericAggDoc)
	require.True(t, ok)
	assert.Equal(t, uint64(2), entry.Count)
	assert.Equal(t, float64(30), entry.Sum)
}

func TestState_ObserveRejectsTypeChange(t *testing.T) {
	s := New()
	require.NoError(t, s.Observe("revenue", mustStat(t, 10)))
	err := s.Observe("revenue", mustStat(t, "oops"))
	require.Error(t, err)
	assert.True(t, docerr.Is(err, docerr.TypeMismatch))
}

func TestState_CombineMergesPerVariable(t *testing.T) {
	left := New()
	require.NoError(t, left.Observe("revenue", mustStat(t, 10)))
	right := New()
	require.NoError(t, right.Observe("revenue", mustStat(t, 30)))

	require.NoError(t, left.Combine(right))
	agg := left.Finalize()
	entry := agg["revenue"].(docstat.FinalNumericAggDoc)
	assert.Equal(t, uint64(2), entry.Count)
	assert.Equal(t, float64(40), entry.Sum)
}

func TestState_MergeAggRehydratesAndMerges(t *testing.T) {
	producer := New()
	require.NoError(t, producer.Observe("revenue", mustStat(t, 10)))
	require.NoError(t, producer.Observe("revenue", mustStat(t, 20)))
	snapshot := producer.Snapshot()

	consumer := New()
	require.NoError(t, consumer.Observe("revenue", mustStat(t, 5)))
	require.NoError(t, consumer.MergeAgg(snapshot))

	entry := consumer.Finalize()["revenue"].(docstat.FinalNumericAggDoc)
	assert.Equal(t, uint64(3), entry.Count)
	assert.Equal(t, float64(35), entry.Sum)
}

func TestState_CombineRejectsMismatchedKind(t *testing.T) {
	left := New()
	require.NoError(t, left.Observe("revenue", mustStat(t, 10)))
	right := New()
	require.NoError(t, right.Observe("revenue", mustStat(t, "oops")))

	err := left.Combine(right)
	require.Error(t, err)
	assert.True(t, docerr.Is(err, docerr.TypeMismatch))
}
