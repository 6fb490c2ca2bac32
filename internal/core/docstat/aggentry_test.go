package docstat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericAggDoc_CanonicalKeyOrder(t *testing.T) {
	doc := NumericAggDoc{Kind: KindInt, Count: 3, Sum: 60, Min: 10, Max: 30, Mean: 20, SumSqDiff: 200}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"max":30,"mean":20,"min":10,"sum":60,"sum_sq_diff":200,"type":"int_agg"}`, string(out))
}

func TestFinalNumericAggDoc_CanonicalKeyOrder(t *testing.T) {
	variance, stddev, cv := 100.0, 10.0, 50.0
	doc := FinalNumericAggDoc{
		Kind: KindInt, Count: 3, Sum: 60, Min: 10, Max: 30, Mean: 20, SumSqDiff: 200,
		Variance: &variance, Stddev: &stddev, CVPct: &cv,
	}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"coefficient_of_variation_pct":50.00,"count":3,"max":30,"mean":20.00,"min":10,"stddev":10.00,"sum":60,"sum_sq_diff":200.00,"type":"int_agg","variance":100.00}`,
		string(out))
}

func TestFinalNumericAggDoc_NullDerivedStats(t *testing.T) {
	doc := FinalNumericAggDoc{Kind: KindFloat, Count: 0}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"variance":null`)
	assert.Contains(t, string(out), `"coefficient_of_variation_pct":null`)
}

func TestCountMapAggDoc_CountsSortedByKey(t *testing.T) {
	doc := CountMapAggDoc{Kind: KindStr, Counts: map[string]uint64{"zeta": 1, "alpha": 2}}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"counts":{"alpha":2,"zeta":1},"type":"str_agg"}`, string(out))
}

func TestDecodeAggEntry_RoundTripsNumeric(t *testing.T) {
	doc := NumericAggDoc{Kind: KindFloat, Count: 2, Sum: 3, Min: 1, Max: 2, Mean: 1.5, SumSqDiff: 0.5}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	decoded, err := DecodeAggEntry(raw)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestDecodeAggEntry_RoundTripsFinalDec2(t *testing.T) {
	variance := 0.25
	doc := FinalDec2AggDoc{
		Dec2AggDoc: Dec2AggDoc{Count: 2, Sum: 3.00, Min: 1.00, Max: 2.00, Mean: 1.50, SumSqDiff: 0.50},
		Variance:   &variance,
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	decoded, err := DecodeAggEntry(raw)
	require.NoError(t, err)
	final, ok := decoded.(FinalDec2AggDoc)
	require.True(t, ok)
	assert.Equal(t, doc.Count, final.Count)
	assert.Equal(t, doc.Sum, final.Sum)
	require.NotNil(t, final.Variance)
	assert.Equal(t, *doc.Variance, *final.Variance)
}

func TestDecodeAggEntry_UnknownTypeRejected(t *testing.T) {
	_, err := DecodeAggEntry(json.RawMessage(`{"type":"money_agg"}`))
	require.Error(t, err)
}
