package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/entity"
)

func TestStatsFromPairs(t *testing.T) {
	stats, err := StatsFromPairs(map[string]interface{}{
		"revenue": 100,
		"region":  "west",
	})
	require.NoError(t, err)
	assert.Equal(t, docstat.KindInt, stats["revenue"].Type)
	assert.Equal(t, docstat.KindStr, stats["region"].Type)
}

func TestAggFromStats_AccumulatesMultipleObservations(t *testing.T) {
	a, err := StatsFromPairs(map[string]interface{}{"revenue": 10})
	require.NoError(t, err)
	b, err := StatsFromPairs(map[string]interface{}{"revenue": 30})
	require.NoError(t, err)

	agg, err := AggFromStats(nil, a, b)
	require.NoError(t, err)

	entry := agg["revenue"].(docstat.FinalNumericAggDoc)
	assert.Equal(t, uint64(2), entry.Count)
	assert.Equal(t, float64(40), entry.Sum)
}

// TestMergeOfAggs_CompanyRegionGlobalHierarchy mirrors a three-level
// rollup: per-company aggregates merge into a region aggregate, and the
// regions merge into one global aggregate, which must match aggregating
// every observation directly in one pass.
func TestMergeOfAggs_CompanyRegionGlobalHierarchy(t *testing.T) {
	companies := [][]int{
		{10, 20, 30},
		{5, 15},
		{100},
		{7, 7, 7, 7},
	}

	var companyAggs []docstat.StatsAgg
	var allValues []int
	for _, values := range companies {
		state := entity.New()
		for _, v := range values {
			require.NoError(t, Transition(state, "revenue", v))
			allValues = append(allValues, v)
		}
		companyAggs = append(companyAggs, Serialize(state))
	}

	regionA, err := MergeOfAggs(companyAggs[0], companyAggs[1])
	require.NoError(t, err)
	regionB, err := MergeOfAggs(companyAggs[2], companyAggs[3])
	require.NoError(t, err)

	global, err := MergeOfAggs(regionA, regionB)
	require.NoError(t, err)

	directState := entity.New()
	for _, v := range allValues {
		require.NoError(t, Transition(directState, "revenue", v))
	}
	direct := Final(directState)

	globalEntry := global["revenue"].(docstat.FinalNumericAggDoc)
	directEntry := direct["revenue"].(docstat.FinalNumericAggDoc)

	assert.Equal(t, directEntry.Count, globalEntry.Count)
	assert.Equal(t, directEntry.Sum, globalEntry.Sum)
	assert.InDelta(t, directEntry.Mean, globalEntry.Mean, 1e-9)
	assert.InDelta(t, *directEntry.Variance, *globalEntry.Variance, 1e-9)
}

func TestParallelMergeOfAggs_MatchesSequentialMerge(t *testing.T) {
	var aggs []docstat.StatsAgg
	for i := 1; i <= 20; i++ {
		state := entity.New()
		require.NoError(t, Transition(state, "count_seen", i))
		aggs = append(aggs, Serialize(state))
	}

	sequential, err := MergeOfAggs(aggs...)
	require.NoError(t, err)

	parallel, err := ParallelMergeOfAggs(aggs, 4)
	require.NoError(t, err)

	seqEntry := sequential["count_seen"].(docstat.FinalNumericAggDoc)
	parEntry := parallel["count_seen"].(docstat.FinalNumericAggDoc)
	assert.Equal(t, seqEntry.Count, parEntry.Count)
	assert.Equal(t, seqEntry.Sum, parEntry.Sum)
	assert.InDelta(t, seqEntry.Mean, parEntry.Mean, 1e-9)
}

func TestMergeOfAggs_TypeMismatchPropagates(t *testing.T) {
	a, err := StatsFromPairs(map[string]interface{}{"x": 1})
	require.NoError(t, err)
	b, err := StatsFromPairs(map[string]interface{}{"x": "oops"})
	require.NoError(t, err)

	aggA, err := AggFromStats(nil, a)
	require.NoError(t, err)
	aggB, err := AggFromStats(nil, b)
	require.NoError(t, err)

	_, err = MergeOfAggs(aggA, aggB)
	require.Error(t, err)
}
