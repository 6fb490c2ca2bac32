package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridit/jsonb-stats/internal/core/docstat"
)

func strStat(v string) docstat.Stat {
	s, err := docstat.NewStat(v)
	if err != nil {
		panic(err)
	}
	return s
}

func boolStat(v bool) docstat.Stat {
	s, err := docstat.NewStat(v)
	if err != nil {
		panic(err)
	}
	return s
}

func dateStat(v string) docstat.Stat {
	d, err := docstat.NewStat(v)
	// test dates are constructed as bare str stats for the accumulator,
	// matching how the date kernel's Update treats its value field.
	if err != nil {
		panic(err)
	}
	d.Type = docstat.KindDate
	return d
}

func TestCountMapAccumulator_StrFrequencies(t *testing.T) {
	acc := &CountMapAccumulator{kind: docstat.KindStr, counts: map[string]uint64{}}
	for _, v := range []string{"gold", "silver", "gold", "gold"} {
		require.NoError(t, acc.Update(strStat(v)))
	}
	snap := acc.Snapshot().(docstat.CountMapAggDoc)
	assert.Equal(t, uint64(3), snap.Counts["gold"])
	assert.Equal(t, uint64(1), snap.Counts["silver"])
}

func TestCountMapAccumulator_BoolFrequencies(t *testing.T) {
	acc := &CountMapAccumulator{kind: docstat.KindBool, counts: map[string]uint64{}}
	require.NoError(t, acc.Update(boolStat(true)))
	require.NoError(t, acc.Update(boolStat(true)))
	require.NoError(t, acc.Update(boolStat(false)))
	snap := acc.Snapshot().(docstat.CountMapAggDoc)
	assert.Equal(t, uint64(2), snap.Counts["true"])
	assert.Equal(t, uint64(1), snap.Counts["false"])
}

func TestDateAccumulator_MinMaxAndMerge(t *testing.T) {
	left := &DateAccumulator{counts: map[string]uint64{}}
	require.NoError(t, left.Update(dateStat("2024-03-01")))
	require.NoError(t, left.Update(dateStat("2024-01-15")))

	right := &DateAccumulator{counts: map[string]uint64{}}
	require.NoError(t, right.Update(dateStat("2024-06-30")))
	require.NoError(t, right.Update(dateStat("2024-01-15")))

	require.NoError(t, left.Merge(right))
	snap := left.Snapshot().(docstat.DateAggDoc)
	assert.Equal(t, "2024-01-15", snap.Min)
	assert.Equal(t, "2024-06-30", snap.Max)
	assert.Equal(t, uint64(2), snap.Counts["2024-01-15"])
}

func TestArrAccumulator_CountsElementsAcrossArrays(t *testing.T) {
	acc := &ArrAccumulator{counts: map[string]uint64{}}
	first, err := docstat.NewStat([]interface{}{"a", "b", "a"})
	require.NoError(t, err)
	second, err := docstat.NewStat([]interface{}{"a", 1})
	require.NoError(t, err)

	require.NoError(t, acc.Update(first))
	require.NoError(t, acc.Update(second))

	snap := acc.Snapshot().(docstat.ArrAggDoc)
	assert.Equal(t, uint64(2), snap.Count)
	assert.Equal(t, uint64(3), snap.Counts["a"])
	assert.Equal(t, uint64(1), snap.Counts["b"])
	assert.Equal(t, uint64(1), snap.Counts["1"])
}
