package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/testutil"
)

func TestGeneratedValues(t *testing.T) {
	ptr := schema.Ptr[int64]
	point := schema.MustSchema(schema.NewRecord([]schema.Field{
		{Name: "x", Schema: schema.DoubleSchema},
		{Name: "y", Schema: schema.DoubleSchema},
	}, nil))

	schemas := map[string]schema.Schema{
		"any":      schema.AnySchema,
		"long":     schema.MustSchema(schema.NewLong(ptr(-50), ptr(50))),
		"decimal":  schema.DecimalSchema,
		"date":     schema.DateSchema,
		"pattern":  schema.MustSchema(schema.NewString(`[a-z]{1,3}(-[0-9])?`, nil, nil)),
		"binary":   schema.MustSchema(schema.NewBinary(ptr(1), ptr(3))),
		"array":    schema.ArrayOf(schema.MustSchema(schema.NewLong(ptr(0), ptr(3)))),
		"tuple":    schema.MustSchema(schema.NewArray([]schema.Schema{schema.BooleanSchema, schema.StringSchema}, schema.LongSchema, 0, ptr(2))),
		"points":   schema.ArrayOf(point),
		"nullable": schema.MustSchema(schema.Optional(point)),
		"union":    schema.MustSchema(schema.NewOr(schema.LongSchema, schema.StringSchema, schema.ArrayOf(schema.AnySchema))),
		"generic":  &schema.Generic{},
		"schema":   &schema.SchemaType{},
		"open record": schema.MustSchema(schema.NewRecord([]schema.Field{
			{Name: "id", Schema: schema.MustSchema(schema.NewLong(ptr(0), ptr(9)))},
			{Name: "tag", Schema: schema.StringSchema, Optional: true},
			{Name: "when", Schema: schema.DateSchema, Optional: true},
		}, schema.AnySchema)),
	}

	for name, s := range schemas {
		t.Run(name, func(t *testing.T) {
			c := mustCodec(t, s)
			values := testutil.NewGenerator(2024).MustValues(s, 40)
			assertOrderConsistent(t, c, values)

			for _, v := range values {
				enc, err := c.Encode(v)
				require.NoError(t, err)
				in := NewInput(enc)
				require.NoError(t, c.Skip(in))
				assert.Zero(t, in.Remaining())
			}
		})
	}
}
