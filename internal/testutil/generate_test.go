package testutil

import (
	"math"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

func generatorSchemas(t *testing.T) map[string]schema.Schema {
	t.Helper()
	must := func(s schema.Schema, err error) schema.Schema {
		t.Helper()
		require.NoError(t, err)
		return s
	}
	ptr := schema.Ptr[int64]
	return map[string]schema.Schema{
		"any":          schema.AnySchema,
		"boolean":      schema.BooleanSchema,
		"long":         schema.LongSchema,
		"long min":     must(schema.NewLong(ptr(math.MaxInt64-3), nil)),
		"long max":     must(schema.NewLong(nil, ptr(math.MinInt64+3))),
		"long full":    must(schema.NewLong(ptr(math.MinInt64), ptr(math.MaxInt64))),
		"long const":   schema.LongConst(7),
		"decimal":      schema.DecimalSchema,
		"decimal min":  must(schema.NewDecimal(apd.New(5, -1), nil)),
		"decimal both": must(schema.NewDecimal(apd.New(-3, 0), apd.New(3, 0))),
		"double":       schema.DoubleSchema,
		"double range": must(schema.NewDouble(schema.Ptr(-1.0), schema.Ptr(1.0))),
		"double inf":   must(schema.NewDouble(schema.Ptr(math.Inf(1)), nil)),
		"string":       schema.StringSchema,
		"string len":   must(schema.NewString("", ptr(3), ptr(3))),
		"pattern":      must(schema.NewString(`[a-c]{2,4}-\d+`, nil, nil)),
		"pattern len":  must(schema.NewString(`x+`, ptr(2), ptr(3))),
		"binary":       schema.BinarySchema,
		"binary len":   must(schema.NewBinary(ptr(2), ptr(5))),
		"date":         schema.DateSchema,
		"array":        schema.ArrayOf(schema.LongSchema),
		"tuple":        must(schema.NewArray([]schema.Schema{schema.StringSchema, schema.BooleanSchema}, nil, 0, nil)),
		"array bounds": must(schema.NewArray(nil, schema.BooleanSchema, 2, ptr(3))),
		"record": must(schema.NewRecord([]schema.Field{
			{Name: "id", Schema: schema.LongSchema},
			{Name: "note", Schema: schema.StringSchema, Optional: true},
		}, schema.LongSchema)),
		"union":   must(schema.NewOr(schema.LongSchema, schema.StringSchema, schema.NullSchema)),
		"generic": &schema.Generic{Type: "point"},
		"schema":  &schema.SchemaType{},
	}
}

func TestGeneratorMatchesSchema(t *testing.T) {
	for name, s := range generatorSchemas(t) {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(42)
			for i := range 50 {
				v, err := g.Value(s)
				require.NoError(t, err)
				assert.True(t, schema.Matches(s, v), "value %d: %s does not match %s",
					i, value.MustMarshalJSON(v), schema.Format(s))
			}
		})
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	s := generatorSchemas(t)["record"]
	a := NewGenerator(7).MustValues(s, 20)
	b := NewGenerator(7).MustValues(s, 20)
	for i := range a {
		assert.True(t, value.Equal(a[i], b[i]), "value %d differs", i)
	}
}

func TestGeneratorSeedsDiffer(t *testing.T) {
	a := NewGenerator(1).MustValues(schema.LongSchema, 10)
	b := NewGenerator(2).MustValues(schema.LongSchema, 10)

	same := true
	for i := range a {
		same = same && value.Equal(a[i], b[i])
	}
	assert.False(t, same)
}

func TestGeneratorImpossiblePattern(t *testing.T) {
	s, err := schema.NewString(`a{5}`, nil, schema.Ptr[int64](2))
	require.NoError(t, err)

	_, err = NewGenerator(1).Value(s)
	assert.ErrorContains(t, err, "no match")
}
