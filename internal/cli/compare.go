package cli

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/value"
)

// CompareResult holds the outcome of the compare command.
type CompareResult struct {
	A      EncodedValue `json:"a"`
	B      EncodedValue `json:"b"`
	Result int          `json:"result"` // -1, 0 or 1
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <schema-file> <a> <b>",
		Short: "Compare two values by their encodings",
		Long: `Encode two JSON values and compare the encodings with the codec
comparator. Prints -1, 0 or 1 as a is less than, equal to or greater than b.

Example:
  jcodec compare schema.cue '{"a": 1}' '{"a": -1}'`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(rootOpts, args[0], args[1], args[2], cmd)
		},
	}
	return cmd
}

func runCompare(opts *RootOptions, schemaFile, textA, textB string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := loadSchema(formatter, schemaFile)
	if err != nil {
		return err
	}
	c, err := codec.New(s)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}

	var values [2]value.Value
	var encs [2][]byte
	for i, text := range []string{textA, textB} {
		if values[i], err = parseValue(formatter, text); err != nil {
			return err
		}
		if encs[i], err = encodeValue(formatter, c, values[i]); err != nil {
			return err
		}
	}

	r, err := c.CompareBytes(encs[0], encs[1])
	if err != nil {
		return commandError(formatter, ErrCodeMalformed, err.Error())
	}
	r = clampSign(r)
	formatter.VerboseLog("Value order: %d", clampSign(value.Compare(values[0], values[1])))

	result := CompareResult{
		A:      EncodedValue{Value: jsonText(values[0]), Hex: hex.EncodeToString(encs[0])},
		B:      EncodedValue{Value: jsonText(values[1]), Hex: hex.EncodeToString(encs[1])},
		Result: r,
	}
	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Result)
	})
}

func clampSign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
