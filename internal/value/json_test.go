package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalJSONScalars(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{`null`, Null{}},
		{`true`, Bool(true)},
		{`42`, Long(42)},
		{`-7`, Long(-7)},
		{`1.5`, Double(1.5)},
		{`1e3`, Double(1000)},
		{`"hi"`, String("hi")},
		{`{"$date":"2024-01-02T03:04:05.006Z"}`, Date(1704164645006)},
		{`{"$binary":"AQI="}`, Binary{1, 2}},
		{`{"$double":"NaN"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := UnmarshalJSON([]byte(tt.input))
			require.NoError(t, err)
			if tt.want == nil {
				assert.True(t, math.IsNaN(float64(got.(Double))))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalJSONDecimal(t *testing.T) {
	got, err := UnmarshalJSON([]byte(`{"$decimal":"12.50"}`))
	require.NoError(t, err)

	d, ok := got.(Decimal)
	require.True(t, ok)
	assert.Equal(t, "12.50", d.String())
}

func TestUnmarshalJSONOverflowBecomesDecimal(t *testing.T) {
	got, err := UnmarshalJSON([]byte(`123456789012345678901234567890`))
	require.NoError(t, err)
	assert.Equal(t, KindDecimal, got.Kind())
}

func TestUnmarshalJSONNested(t *testing.T) {
	got, err := UnmarshalJSON([]byte(`{"id": 42, "tags": ["a", "b"], "extra": {"$generic": "pt", "$payload": "AQ=="}}`))
	require.NoError(t, err)

	want := Record{
		"id":    Long(42),
		"tags":  Array{String("a"), String("b")},
		"extra": Generic{Type: "pt", Payload: []byte{1}},
	}
	assert.Equal(t, want, got)
}

func TestUnmarshalJSONPlainDollarKeyIsRecord(t *testing.T) {
	got, err := UnmarshalJSON([]byte(`{"$date": 5}`))
	require.NoError(t, err)
	assert.Equal(t, Record{"$date": Long(5)}, got)
}

func TestUnmarshalJSONRejectsTrailingData(t *testing.T) {
	_, err := UnmarshalJSON([]byte(`1 2`))
	assert.Error(t, err)
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	inputs := []Value{
		Null{},
		Long(-3),
		Double(2),
		Double(math.Inf(-1)),
		MustDecimal("0.001"),
		String("\u00e9<b>"),
		Binary{0xff},
		Date(86_400_000),
		Array{Long(1), Array{}},
		Record{"b": Bool(false), "a": Record{}},
		Generic{Type: "t", Payload: []byte("x")},
	}

	for _, v := range inputs {
		data, err := MarshalJSON(v)
		require.NoError(t, err)

		back, err := UnmarshalJSON(data)
		require.NoError(t, err, "input %s", data)
		assert.True(t, Equal(v, back), "round trip of %s gave %s", data, MustMarshalJSON(back))
	}
}

func TestMarshalJSONDoubleKeepsFraction(t *testing.T) {
	data, err := MarshalJSON(Double(2))
	require.NoError(t, err)
	assert.Equal(t, "2.0", string(data))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical(Record{"k": String("<a&b>")})
	require.NoError(t, err)
	assert.Equal(t, `{"k":"<a&b>"}`, string(data))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9
	data, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(data))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	data, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(data))

	// A literal backslash followed by "u2028" stays escaped.
	data, err = MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(data))
}
