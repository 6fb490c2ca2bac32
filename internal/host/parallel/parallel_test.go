package parallel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridit/jsonb-stats/internal/core/docstat"
)

func TestBuildEntityState_MatchesSequentialObservation(t *testing.T) {
	var docs []docstat.Stats
	for i := 1; i <= 50; i++ {
		stat, err := docstat.NewStat(i)
		require.NoError(t, err)
		docs = append(docs, docstat.Stats{"revenue": stat})
	}

	state, err := BuildEntityState(docs, 6)
	require.NoError(t, err)

	final := state.Finalize()["revenue"].(docstat.FinalNumericAggDoc)
	assert.Equal(t, uint64(50), final.Count)
	assert.Equal(t, float64(1275), final.Sum)
}

func TestBuildEntityState_EmptyInput(t *testing.T) {
	state, err := BuildEntityState(nil, 4)
	require.NoError(t, err)
	assert.True(t, state.Empty())
}

func TestBuildEntityState_PropagatesTypeMismatch(t *testing.T) {
	a, err := docstat.NewStat(1)
	require.NoError(t, err)
	b, err := docstat.NewStat("oops")
	require.NoError(t, err)

	docs := []docstat.Stats{
		{"revenue": a},
		{"revenue": b},
	}
	_, err = BuildEntityState(docs, 2)
	require.Error(t, err)
}
