package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jcodec/internal/value"
)

func TestConstant(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		want   value.Value
	}{
		{"null", NullSchema, value.Null{}},
		{"boolean", BooleanConst(true), value.Bool(true)},
		{"long value", LongConst(9), value.Long(9)},
		{"long collapsed range", &Long{Min: Ptr[int64](4), Max: Ptr[int64](4)}, value.Long(4)},
		{"string value", StringConst("x"), value.String("x")},
		{"empty string", &String{MaxLength: Ptr[int64](0)}, value.String("")},
		{"empty binary", &Binary{MaxLength: Ptr[int64](0)}, value.Binary{}},
		{"date collapsed range", &Date{Min: Ptr(value.Date(3)), Max: Ptr(value.Date(3))}, value.Date(3)},
		{"array of constants", &Array{Head: []Schema{LongConst(1), NullSchema}}, value.Array{value.Long(1), value.Null{}}},
		{"record of constants", MustSchema(NewRecord([]Field{{Name: "k", Schema: StringConst("v")}}, nil)), value.Record{"k": value.String("v")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Constant(tt.schema)
			require.True(t, ok)
			assert.True(t, value.Equal(tt.want, got), "got %v", got)
			assert.True(t, Matches(tt.schema, got))
		})
	}
}

func TestNotConstant(t *testing.T) {
	for _, s := range []Schema{
		AnySchema,
		LongSchema,
		&Long{Min: Ptr[int64](0), Max: Ptr[int64](1)},
		&Double{Min: Ptr(1.0), Max: Ptr(1.0)},
		ArrayOf(NullSchema),
		MustSchema(NewRecord([]Field{{Name: "k", Schema: NullSchema, Optional: true}}, nil)),
		MustSchema(NewRecord(nil, NullSchema)),
		MustSchema(NewOr(LongConst(1), LongConst(2))),
	} {
		assert.False(t, IsConstant(s), Format(s))
	}
}

func TestIsNullable(t *testing.T) {
	assert.True(t, IsNullable(AnySchema))
	assert.True(t, IsNullable(NullSchema))
	assert.True(t, IsNullable(MustSchema(NewOr(LongSchema, NullSchema))))
	assert.False(t, IsNullable(LongSchema))
	assert.False(t, IsNullable(MustSchema(NewOr(LongSchema, StringSchema))))
}

func TestElementSchema(t *testing.T) {
	e, ok := ElementSchema(ArrayOf(LongSchema))
	require.True(t, ok)
	assert.Equal(t, LongSchema, e)

	e, ok = ElementSchema(&Array{Head: []Schema{StringSchema, LongSchema}, Rest: LongSchema})
	require.True(t, ok)
	assert.Equal(t, "string | long", Format(e))

	e, ok = ElementSchema(AnySchema)
	require.True(t, ok)
	assert.Equal(t, AnySchema, e)

	_, ok = ElementSchema(LongSchema)
	assert.False(t, ok)
}

func TestFieldSchema(t *testing.T) {
	rec := MustSchema(NewRecord([]Field{{Name: "id", Schema: LongSchema}}, StringSchema))

	f, ok := FieldSchema(rec, "id")
	require.True(t, ok)
	assert.Equal(t, LongSchema, f)

	f, ok = FieldSchema(rec, "other")
	require.True(t, ok)
	assert.Equal(t, StringSchema, f)

	closed := MustSchema(NewRecord([]Field{{Name: "id", Schema: LongSchema}}, nil))
	_, ok = FieldSchema(closed, "other")
	assert.False(t, ok)

	union := MustSchema(NewOr(closed, MustSchema(NewRecord([]Field{{Name: "id", Schema: StringSchema}}, nil))))
	f, ok = FieldSchema(union, "id")
	require.True(t, ok)
	assert.Equal(t, "long | string", Format(f))
}

func TestKinds(t *testing.T) {
	s := MustSchema(NewOr(StringSchema, LongSchema, NullSchema))
	assert.Equal(t, []value.Kind{value.KindNull, value.KindLong, value.KindDecimal, value.KindDouble, value.KindString}, Kinds(s))
	assert.Len(t, Kinds(AnySchema), value.NumKinds)
	assert.Equal(t, []value.Kind{value.KindSchema}, Kinds(&SchemaType{}))
}

func TestEqual(t *testing.T) {
	a := MustSchema(NewRecord([]Field{{Name: "b", Schema: LongSchema}, {Name: "a", Schema: StringSchema}}, nil))
	b := MustSchema(NewRecord([]Field{{Name: "a", Schema: StringSchema}, {Name: "b", Schema: LongSchema}}, nil))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, LongSchema))
	assert.True(t, Equal(&Long{}, LongSchema))
}
