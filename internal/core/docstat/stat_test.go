package docstat

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat_MarshalJSON_WholeFloatHasNoTrailingZero(t *testing.T) {
	stat := Stat{Type: KindFloat, Value: 100.0}
	out, err := json.Marshal(stat)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"float","value":100}`, string(out))
}

func TestStat_MarshalJSON_Dec2AlwaysTwoDecimals(t *testing.T) {
	d, err := decimal.NewFromString("5")
	require.NoError(t, err)
	stat := Stat{Type: KindDec2, Value: d}
	out, err := json.Marshal(stat)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"dec2","value":5.00}`, string(out))
}

func TestStat_RoundTrip_Int(t *testing.T) {
	stat, err := NewStat(42)
	require.NoError(t, err)
	raw, err := json.Marshal(stat)
	require.NoError(t, err)

	var decoded Stat
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, stat, decoded)
}

func TestStat_UnmarshalJSON_UnknownTypeRejected(t *testing.T) {
	var stat Stat
	err := json.Unmarshal([]byte(`{"type":"money","value":1}`), &stat)
	require.Error(t, err)
}

func TestStat_UnmarshalJSON_InvalidDateRejected(t *testing.T) {
	var stat Stat
	err := json.Unmarshal([]byte(`{"type":"date","value":"2024-02-30"}`), &stat)
	require.Error(t, err)
}

func TestStat_UnmarshalJSON_PGArrayLiteral(t *testing.T) {
	var stat Stat
	err := json.Unmarshal([]byte(`{"type":"arr","value":"{a,b,c}"}`), &stat)
	require.NoError(t, err)
	elems := stat.Value.([]Stat)
	require.Len(t, elems, 3)
	assert.Equal(t, "b", elems[1].Value)
}

func TestStat_UnmarshalJSON_RejectsNestedArrays(t *testing.T) {
	var stat Stat
	err := json.Unmarshal([]byte(`{"type":"arr","value":[[1,2]]}`), &stat)
	require.Error(t, err)
}
