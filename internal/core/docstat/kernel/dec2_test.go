package kernel

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridit/jsonb-stats/internal/core/docstat"
)

func dec2Stat(s string) docstat.Stat {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return docstat.NewDec2(d)
}

func TestDec2Accumulator_ExactSum(t *testing.T) {
	acc := &Dec2Accumulator{}
	for _, v := range []string{"10.10", "0.20", "0.30", "19.99"} {
		require.NoError(t, acc.Update(dec2Stat(v)))
	}
	snap := acc.Snapshot().(docstat.Dec2AggDoc)
	assert.Equal(t, 30.59, snap.Sum)
	assert.Equal(t, 0.20, snap.Min)
	assert.Equal(t, 19.99, snap.Max)
}

func TestDec2Accumulator_MergeMatchesSinglePass(t *testing.T) {
	values := []string{"1.11", "2.22", "3.33", "4.44", "5.55"}

	whole := &Dec2Accumulator{}
	for _, v := range values {
		require.NoError(t, whole.Update(dec2Stat(v)))
	}

	left := &Dec2Accumulator{}
	for _, v := range values[:2] {
		require.NoError(t, left.Update(dec2Stat(v)))
	}
	right := &Dec2Accumulator{}
	for _, v := range values[2:] {
		require.NoError(t, right.Update(dec2Stat(v)))
	}
	require.NoError(t, left.Merge(right))

	wholeFinal := whole.Finalize().(docstat.FinalDec2AggDoc)
	mergedFinal := left.Finalize().(docstat.FinalDec2AggDoc)

	assert.Equal(t, wholeFinal.Sum, mergedFinal.Sum)
	assert.Equal(t, wholeFinal.Count, mergedFinal.Count)
	assert.InDelta(t, wholeFinal.Mean, mergedFinal.Mean, 1e-9)
	assert.InDelta(t, *wholeFinal.Variance, *mergedFinal.Variance, 1e-9)
}

func TestDec2Accumulator_RejectsWrongKind(t *testing.T) {
	acc := &Dec2Accumulator{}
	err := acc.Update(floatStat(1.0))
	require.Error(t, err)
}
