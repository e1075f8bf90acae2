package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: longs
description: plain longs
schema: '"long"'
values: ["1", "2"]
order: [0, 1]
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "longs", s.Name)
	assert.Equal(t, `"long"`, s.Schema)
	assert.Equal(t, []string{"1", "2"}, s.Values)
	assert.Equal(t, []int{0, 1}, s.Order)
	assert.True(t, s.enabled(CheckSpill))
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown field", validScenario + "value: [1]\n", "field value not found"},
		{"missing name", "description: d\nschema: x\nvalues: ['1']\n", "name is required"},
		{"missing description", "name: n\nschema: x\nvalues: ['1']\n", "description is required"},
		{"missing schema", "name: n\ndescription: d\nvalues: ['1']\n", "schema is required"},
		{"missing values", "name: n\ndescription: d\nschema: x\n", "values list is required"},
		{"order length", "name: n\ndescription: d\nschema: x\nvalues: ['1', '2']\norder: [0]\n", "order has 1 entries"},
		{"order range", "name: n\ndescription: d\nschema: x\nvalues: ['1']\norder: [3]\n", "out of range"},
		{"order repeat", "name: n\ndescription: d\nschema: x\nvalues: ['1', '2']\norder: [1, 1]\n", "repeated"},
		{"unknown check", "name: n\ndescription: d\nschema: x\nvalues: ['1']\nchecks: [speed]\n", `unknown check "speed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScenarioChecksSubset(t *testing.T) {
	s := &Scenario{Checks: []string{CheckOrder}}
	assert.True(t, s.enabled(CheckOrder))
	assert.False(t, s.enabled(CheckStore))
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a-one.yaml", "a-two.yml", "b.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(validScenario), 0o644))
	}

	all, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := FindScenarios(dir, "a-*")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	single, err := FindScenarios(filepath.Join(dir, "b.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yaml")}, single)

	_, err = FindScenarios(dir, "[")
	assert.ErrorContains(t, err, "invalid filter pattern")

	_, err = FindScenarios(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}
