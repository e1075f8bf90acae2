package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompact(t *testing.T) {
	rec := func() Schema {
		return MustSchema(NewRecord([]Field{{Name: "a", Schema: LongSchema}}, nil))
	}

	tests := []struct {
		name        string
		schema      Schema
		branches    []string
		matchesNull bool
		matchesAny  bool
		single      bool
	}{
		{
			name:     "single shape",
			schema:   LongSchema,
			branches: []string{"long"},
			single:   true,
		},
		{
			name:        "null alone",
			schema:      NullSchema,
			matchesNull: true,
		},
		{
			name:        "any alone",
			schema:      AnySchema,
			matchesNull: true,
			matchesAny:  true,
		},
		{
			name:        "optional long",
			schema:      &Or{Branches: []Schema{NullSchema, LongSchema}},
			branches:    []string{"long"},
			matchesNull: true,
			single:      true,
		},
		{
			name:     "duplicates removed",
			schema:   &Or{Branches: []Schema{rec(), StringSchema, rec()}},
			branches: []string{"{a: long}", "string"},
		},
		{
			name: "nested unions flattened",
			schema: &Or{Branches: []Schema{
				LongSchema,
				&Or{Branches: []Schema{StringSchema, AnySchema}},
			}},
			branches:    []string{"long", "string"},
			matchesNull: true,
			matchesAny:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compact(tt.schema)

			var got []string
			for _, b := range c.Branches {
				got = append(got, Format(b))
			}
			assert.Equal(t, tt.branches, got)
			assert.Equal(t, tt.matchesNull, c.MatchesNull)
			assert.Equal(t, tt.matchesAny, c.MatchesAny)
			assert.Equal(t, tt.single, c.HasSingleOtherBranch)
		})
	}
}

func TestCompactedSchema(t *testing.T) {
	c := Compact(&Or{Branches: []Schema{NullSchema, LongSchema, LongSchema}})
	assert.Equal(t, "long | null", Format(c.Schema()))

	assert.Equal(t, AnySchema, Compact(AnySchema).Schema())
	assert.Equal(t, NullSchema, Compact(NullSchema).Schema())
}
