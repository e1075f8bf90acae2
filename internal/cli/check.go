package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Input string // file of JSON values, one per line
}

// ValueCheck is the outcome of checking one value.
type ValueCheck struct {
	Value string `json:"value"`
	Match bool   `json:"match"`
	Error string `json:"error,omitempty"`
}

// CheckResult holds the outcome of the check command.
type CheckResult struct {
	Schema      string       `json:"schema"`
	Fingerprint string       `json:"fingerprint"`
	Values      []ValueCheck `json:"values"`
	Failed      int          `json:"failed"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <schema-file> [value...]",
		Short: "Check a schema and the values it accepts",
		Long: `Compile a schema file (CUE or JSON) and check that values match it.

Values are JSON texts given as arguments or, with --input, one per line
in a file ("-" reads stdin). Without values only the schema is checked.

Exit codes:
  0 - Schema compiles and every value matches
  1 - One or more values do not match
  2 - Command error (schema does not compile, invalid JSON, etc.)

Examples:
  jcodec check schema.cue
  jcodec check schema.cue '{"id": 1}' '{"id": -1}'
  jcodec check schema.cue --input values.jsonl --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "file of JSON values, one per line")

	return cmd
}

func runCheck(opts *CheckOptions, schemaFile string, texts []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	s, err := loadSchema(formatter, schemaFile)
	if err != nil {
		return err
	}
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}
	c, err := codec.New(s)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}

	values := make([]value.Value, 0, len(texts))
	for _, text := range texts {
		v, err := parseValue(formatter, text)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	if opts.Input != "" {
		read, err := readInput(formatter, opts.Input, cmd)
		if err != nil {
			return err
		}
		values = append(values, read...)
	}

	result := CheckResult{
		Schema:      schema.Format(s),
		Fingerprint: fp,
		Values:      make([]ValueCheck, 0, len(values)),
	}
	for _, v := range values {
		check := ValueCheck{Value: jsonText(v), Match: true}
		if _, err := c.Encode(v); err != nil {
			check.Match = false
			check.Error = err.Error()
			result.Failed++
		}
		result.Values = append(result.Values, check)
	}

	err = formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "Schema: %s\n", result.Schema)
		fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
		for _, check := range result.Values {
			if check.Match {
				fmt.Fprintf(w, "ok   %s\n", check.Value)
			} else {
				fmt.Fprintf(w, "FAIL %s\n     %s\n", check.Value, check.Error)
			}
		}
	})
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d value(s) do not match", result.Failed))
	}
	return nil
}

// readInput reads values from a file, or from stdin when path is "-".
func readInput(f *OutputFormatter, path string, cmd *cobra.Command) ([]value.Value, error) {
	if path == "-" {
		return readValues(f, cmd.InOrStdin())
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, commandError(f, ErrCodeNotFound, fmt.Sprintf("input file not found: %s", path))
	}
	defer file.Close()
	return readValues(f, file)
}
