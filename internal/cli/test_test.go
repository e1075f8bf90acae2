package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longsScenario = `name: longs
description: Longs with a minimum
schema: '{"long": {"min": 0}}'
values: ["5", "0"]
order: [1, 0]
`

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := execute(t, "", "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios path not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(t, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(t, "", "test", t.TempDir(), "--format", "json")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := execute(t, "", "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "ok   bounded-longs")
	assert.Contains(t, out, "ok   optional-record")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := execute(t, "", "test", filepath.Join("..", "harness", "testdata", "scenarios"),
		"--filter", "bounded-*", "--format", "json")
	require.NoError(t, err)

	var response struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, 1, response.Data.Total)
	assert.Equal(t, "bounded-longs", response.Data.Scenarios[0].Name)
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	writeFile(t, scenarios, "longs.yaml", longsScenario)
	golden := filepath.Join(dir, "golden", "longs.golden")

	_, err := execute(t, "", "test", scenarios, "--update")
	require.NoError(t, err)
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"order":[1,0]`)

	_, err = execute(t, "", "test", scenarios)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{}`), 0o644))
	out, err := execute(t, "", "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL longs")
	assert.Contains(t, out, "do not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenarios/wrong.yaml", `name: wrong
description: Expected order is wrong
schema: '"long"'
values: ["2", "1"]
order: [0, 1]
`)
	writeFile(t, dir, "scenarios/broken.yaml", "name: broken\n")

	out, err := execute(t, "", "test", filepath.Join(dir, "scenarios"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, 2, response.Data.Failed)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenarios/longs.yaml", "/path/to/golden/longs.golden"},
		{"testdata/scenarios/longs.yml", "testdata/golden/longs.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input, "longs"))
	}
}
