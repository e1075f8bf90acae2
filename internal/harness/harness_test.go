package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_AllScenarios(t *testing.T) {
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			s, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Encodings, len(s.Values))
			if len(s.Order) > 0 {
				assert.Equal(t, s.Order, result.Order)
			}
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"bounded-longs", "optional-record"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Result(t *testing.T) {
	result, err := Run(loadTestScenario(t, "bounded-longs"))
	require.NoError(t, err)

	assert.Equal(t, "long[0..]", result.Schema)
	assert.Len(t, result.Fingerprint, 64)
	assert.Equal(t, Encoding{Index: 2, Value: "300", Hex: "ac02"}, result.Encodings[2])
	assert.Empty(t, result.Errors)
}

func TestRun_WrongOrderFails(t *testing.T) {
	s := loadTestScenario(t, "bounded-longs")
	s.Order = []int{0, 1, 2}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	// order, store and spill each report the misplaced value once
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "check failed: order")
	assert.Contains(t, result.Errors[1], "check failed: store")
	assert.Contains(t, result.Errors[2], "check failed: spill")
}

func TestRun_AcceptedRejectFails(t *testing.T) {
	s := loadTestScenario(t, "bounded-longs")
	s.Rejects = []string{"7"}
	s.Checks = []string{CheckRejects}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "schema matches")
}

func TestRun_BrokenScenario(t *testing.T) {
	tests := []struct {
		name    string
		s       Scenario
		wantErr string
	}{
		{"bad schema", Scenario{Schema: `{a: `, Values: []string{"1"}}, "compile schema"},
		{"bad value json", Scenario{Schema: `"long"`, Values: []string{"{"}}, "values[0]"},
		{"value does not match", Scenario{Schema: `"long"`, Values: []string{`"x"`}}, "values[0]"},
		{"bad reject json", Scenario{Schema: `"long"`, Values: []string{"1"}, Rejects: []string{"["}}, "rejects[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(&tt.s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckErrorMessage(t *testing.T) {
	err := &CheckError{Check: CheckOrder, Expected: "a", Actual: "b", Value: "1"}
	assert.Equal(t, "check failed: order\n  Expected: a\n  Actual: b\n  Value: 1", err.Error())
}
