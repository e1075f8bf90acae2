package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/codec"
)

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <schema-file> <hex>...",
		Short: "Decode hex encodings to JSON values",
		Long: `Decode hex encodings produced by the codec of a schema and print the
values as JSON, one per line.

Exit codes:
  0 - Every encoding decoded
  1 - An encoding is corrupt or truncated
  2 - Command error (schema does not compile, invalid hex, etc.)

Example:
  jcodec decode schema.cue 0002 01020178`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runDecode(opts *RootOptions, schemaFile string, encodings []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := loadSchema(formatter, schemaFile)
	if err != nil {
		return err
	}
	c, err := codec.New(s)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}

	decoded := make([]EncodedValue, 0, len(encodings))
	for _, text := range encodings {
		text = strings.TrimSpace(text)
		enc, err := hex.DecodeString(text)
		if err != nil {
			return commandError(formatter, ErrCodeValue, fmt.Sprintf("invalid hex %q: %v", text, err))
		}
		v, err := c.Decode(enc)
		if err != nil {
			message := fmt.Sprintf("%s: %v", text, err)
			_ = formatter.Error(ErrCodeMalformed, message, nil)
			return NewExitError(ExitFailure, message)
		}
		decoded = append(decoded, EncodedValue{Value: jsonText(v), Hex: text})
	}

	return formatter.Emit(decoded, func(w io.Writer) {
		for _, d := range decoded {
			fmt.Fprintln(w, d.Value)
		}
	})
}
