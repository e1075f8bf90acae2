package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-path>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios using the harness framework.

Each scenario file names a schema and values. The harness checks that the
values round-trip, that rejected values fail to encode, and that the codec,
the store and the spill sorter agree on the expected order. A scenario in
dir/scenarios/name.yaml is also compared against dir/golden/name.golden
when that file exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  jcodec test ./testdata/scenarios
  jcodec test ./testdata/scenarios --filter "bounded-*"
  jcodec test ./testdata/scenarios --update
  jcodec test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosPath string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosPath); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios path not found: %s", scenariosPath))
	}

	scenarioFiles, err := harness.FindScenarios(scenariosPath, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, formatter, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// runScenario executes a single scenario and reports it in text mode.
func runScenario(scenarioFile string, opts *TestOptions, formatter *OutputFormatter, cmd *cobra.Command) ScenarioResult {
	scenResult := executeScenario(scenarioFile, opts, formatter)
	if opts.Format != "json" {
		w := cmd.OutOrStdout()
		if scenResult.Pass {
			fmt.Fprintf(w, "ok   %s\n", scenResult.Name)
		} else {
			fmt.Fprintf(w, "FAIL %s\n", scenResult.Name)
			for _, e := range scenResult.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}
	return scenResult
}

func executeScenario(scenarioFile string, opts *TestOptions, formatter *OutputFormatter) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.RunWithLogger(scenario, newLogger(formatter))
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}
	if !result.Pass {
		return ScenarioResult{Name: scenario.Name, Errors: result.Errors}
	}

	snapshot, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("failed to render snapshot: %v", err)},
		}
	}

	goldenPath := goldenFilePath(scenarioFile, scenario.Name)
	if opts.Update {
		if err := updateGoldenFile(goldenPath, snapshot); err != nil {
			return ScenarioResult{
				Name:   scenario.Name,
				Errors: []string{fmt.Sprintf("failed to update golden file: %v", err)},
			}
		}
		formatter.VerboseLog("Updated %s", goldenPath)
		return ScenarioResult{Name: scenario.Name, Pass: true}
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		// No golden file - checks only
		return ScenarioResult{Name: scenario.Name, Pass: true}
	}
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("failed to read golden file: %v", err)},
		}
	}
	if !bytes.Equal(bytes.TrimSpace(golden), snapshot) {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{"encodings do not match golden file (run with --update to regenerate)"},
		}
	}
	return ScenarioResult{Name: scenario.Name, Pass: true}
}

// goldenFilePath returns the golden file of a scenario: golden/name.golden
// next to the directory holding the scenario file.
func goldenFilePath(scenarioFile, name string) string {
	root := filepath.Dir(filepath.Dir(scenarioFile))
	return filepath.Join(root, "golden", name+".golden")
}

// updateGoldenFile writes a snapshot as the golden file.
func updateGoldenFile(goldenPath string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, snapshot, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "All scenarios passed")
	return nil
}
