package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// snapshot converts a result to a record for canonical JSON serialization.
// Values are embedded as values, not as JSON text, so the golden file shows
// them the way they were written in the scenario.
func snapshot(name string, result *Result) (value.Value, error) {
	encodings := make(value.Array, len(result.Encodings))
	for i, e := range result.Encodings {
		v, err := schema.UnmarshalValue([]byte(e.Value))
		if err != nil {
			return nil, err
		}
		encodings[i] = value.Record{
			"hex":   value.String(e.Hex),
			"value": v,
		}
	}
	order := make(value.Array, len(result.Order))
	for i, idx := range result.Order {
		order[i] = value.Long(idx)
	}
	return value.Record{
		"scenario_name": value.String(name),
		"schema":        value.String(result.Schema),
		"encodings":     encodings,
		"order":         order,
	}, nil
}

// Snapshot renders a result as the canonical JSON stored in golden files.
func Snapshot(name string, result *Result) ([]byte, error) {
	snap, err := snapshot(name, result)
	if err != nil {
		return nil, err
	}
	return value.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its encodings and codec
// order against a golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result against a golden file without re-running
// the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
