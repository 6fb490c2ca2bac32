package docstat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_MarshalJSON_KeysSortedWithTypeDiscriminator(t *testing.T) {
	revenue, err := NewStat(100)
	require.NoError(t, err)
	region, err := NewStat("west")
	require.NoError(t, err)

	stats := Stats{"revenue": revenue, "region": region}
	out, err := json.Marshal(stats)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"region":{"type":"str","value":"west"},"revenue":{"type":"int","value":100},"type":"stats"}`,
		string(out))
	// key order: region < revenue < type
	assert.Regexp(t, `^\{"region":.*"revenue":.*"type":"stats"\}$`, string(out))
}

func TestStats_RoundTrip(t *testing.T) {
	revenue, err := NewStat(100)
	require.NoError(t, err)
	stats := Stats{"revenue": revenue}
	raw, err := json.Marshal(stats)
	require.NoError(t, err)

	var decoded Stats
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, stats, decoded)
}

func TestStats_UnmarshalJSON_MissingTypeRejected(t *testing.T) {
	var stats Stats
	err := json.Unmarshal([]byte(`{"revenue":{"type":"int","value":1}}`), &stats)
	require.Error(t, err)
}

func TestStatsAgg_RoundTrip(t *testing.T) {
	agg := StatsAgg{
		"revenue": NumericAggDoc{Kind: KindInt, Count: 1, Sum: 1, Min: 1, Max: 1, Mean: 1, SumSqDiff: 0},
	}
	raw, err := json.Marshal(agg)
	require.NoError(t, err)

	var decoded StatsAgg
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, agg, decoded)
}

func TestStatsAgg_UnmarshalJSON_WrongDiscriminatorRejected(t *testing.T) {
	var agg StatsAgg
	err := json.Unmarshal([]byte(`{"type":"stats"}`), &agg)
	require.Error(t, err)
}
