package schema

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateValue(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

	testCases := []struct {
		name string
		typ  ColumnType
		in   any
		want any
	}{
		{"bool from int", TypeBoolean, int64(1), true},
		{"bool from zero", TypeBoolean, int64(0), false},
		{"bool from t", TypeBoolean, "t", true},
		{"bool from yes", TypeBoolean, "YES", true},
		{"bool from off", TypeBoolean, "off", false},
		{"bool garbage", TypeBoolean, "maybe", nil},
		{"int from string", TypeInteger, "42", int64(42)},
		{"int truncates string", TypeInteger, "-3.9", int64(-3)},
		{"int truncates float", TypeInteger, 7.8, int64(7)},
		{"int from int32", TypeInteger, int32(5), int64(5)},
		{"int garbage", TypeInteger, "forty", nil},
		{"int overflow", TypeInteger, 1e300, nil},
		{"int at 2^63", TypeInteger, float64(math.MaxInt64), nil},
		{"int at -2^63", TypeInteger, float64(math.MinInt64), int64(math.MinInt64)},
		{"float from string", TypeFloat, "4.5", 4.5},
		{"float from int", TypeFloat, int64(3), 3.0},
		{"float garbage", TypeFloat, "x", nil},
		{"json object", TypeJSON, `{"a":[1,"b",2.5]}`, map[string]any{"a": []any{int64(1), "b", 2.5}}},
		{"json keeps large integers", TypeJSON, `[9007199254740993]`, []any{int64(9007199254740993)}},
		{"json trailing data", TypeJSON, `{} {}`, nil},
		{"json from bytes", TypeJSON, []byte(`["x","y"]`), []any{"x", "y"}},
		{"json passthrough", TypeJSON, []any{"x"}, []any{"x"}},
		{"json garbage", TypeJSON, `{nope`, nil},
		{"text", TypeText, "hello", "hello"},
		{"text from bytes", TypeText, []byte("hello"), "hello"},
		{"text from number", TypeText, int64(12), "12"},
		{"date from string", TypeDate, "2024-03-09", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"timestamp passthrough", TypeTimestamp, ts, ts},
		{"timestamp from rfc3339", TypeTimestampTZ, "2024-03-09T14:30:00Z", ts},
		{"timestamp garbage", TypeTimestamp, "yesterday", nil},
		{"nil stays nil", TypeInteger, nil, nil},
		{"unknown type passes", ColumnType("geometry"), "POINT(1 2)", "POINT(1 2)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := HydrateValue(tc.typ, tc.in)
			if want, ok := tc.want.(time.Time); ok {
				require.IsType(t, time.Time{}, got)
				assert.True(t, want.Equal(got.(time.Time)), "got %v", got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHydrateValue_BigInt(t *testing.T) {
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	assert.Equal(t, 0, huge.Cmp(HydrateValue(TypeBigInt, "123456789012345678901234567890").(*big.Int)))
	assert.Equal(t, 0, big.NewInt(9).Cmp(HydrateValue(TypeBigInt, int64(9)).(*big.Int)))
	assert.Equal(t, 0, big.NewInt(12).Cmp(HydrateValue(TypeBigInt, 12.0).(*big.Int)))
	assert.Equal(t, 0, big.NewInt(77).Cmp(HydrateValue(TypeBigInt, []byte("77")).(*big.Int)))
	assert.Same(t, huge, HydrateValue(TypeBigInt, huge))
	assert.Nil(t, HydrateValue(TypeBigInt, "12abc"))
}

func TestSerializeValue(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	testCases := []struct {
		name string
		typ  ColumnType
		in   any
		want any
	}{
		{"json object", TypeJSON, map[string]any{"a": 1}, `{"a":1}`},
		{"json list", TypeJSON, []string{"x", "y"}, `["x","y"]`},
		{"json string is quoted", TypeJSON, "x", `"x"`},
		{"json nil is null", TypeJSON, nil, nil},
		{"small bigint narrows", TypeBigInt, big.NewInt(5), int64(5)},
		{"huge bigint is text", TypeBigInt, huge, "123456789012345678901234567890"},
		{"plain bigint passes", TypeBigInt, int64(5), int64(5)},
		{"bool passes", TypeBoolean, true, true},
		{"text passes", TypeText, "x", "x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SerializeValue(tc.typ, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := SerializeValue(TypeJSON, map[string]any{"f": func() {}})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	values := []struct {
		typ ColumnType
		v   any
	}{
		{TypeJSON, map[string]any{"name": "dash", "tags": []any{"pegasus", "fast"}, "n": int64(20), "ratio": 0.5, "ok": true, "none": nil}},
		{TypeJSON, []any{"a", 1.5, map[string]any{}}},
		{TypeJSON, "plain"},
		{TypeJSON, []any{int64(9007199254740993), int64(math.MinInt64)}},
		{TypeBoolean, true},
		{TypeInteger, int64(-12)},
		{TypeFloat, 3.25},
		{TypeText, "rainbow"},
	}

	for _, tc := range values {
		stored, err := SerializeValue(tc.typ, tc.v)
		require.NoError(t, err)
		assert.Equal(t, tc.v, HydrateValue(tc.typ, stored), "type %s", tc.typ)
	}

	n, _ := new(big.Int).SetString("-98765432109876543210", 10)
	stored, err := SerializeValue(TypeBigInt, n)
	require.NoError(t, err)
	assert.Equal(t, 0, n.Cmp(HydrateValue(TypeBigInt, stored).(*big.Int)))
}

func TestTable_HydrateAndSerialize(t *testing.T) {
	table := storiesTable(t)

	row := map[string]any{
		"id":       int64(1),
		"tags":     `["pegasus"]`,
		"complete": int64(1),
		"rating":   "x",
		"j1_name":  "Dash",
	}
	got := table.Hydrate(row)

	assert.Equal(t, map[string]any{
		"id":       int64(1),
		"tags":     []any{"pegasus"},
		"complete": true,
		"rating":   nil,
		"j1_name":  "Dash",
	}, got)
	assert.Equal(t, `["pegasus"]`, row["tags"], "input row is not modified")

	out, err := table.Serialize(map[string]any{"tags": []string{"a"}, "title": "t", "extra": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": `["a"]`, "title": "t", "extra": 1}, out)
}
