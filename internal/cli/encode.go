package cli

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/codec"
)

// EncodedValue pairs a value with its encoding.
type EncodedValue struct {
	Value string `json:"value"`
	Hex   string `json:"hex"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <schema-file> <value>...",
		Short: "Encode JSON values",
		Long: `Encode JSON values with the codec of a schema and print the encodings
as hex, one per line.

Example:
  jcodec encode schema.cue '{"a": 1}' '{"a": 1, "b": "x"}'`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runEncode(opts *RootOptions, schemaFile string, texts []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := loadSchema(formatter, schemaFile)
	if err != nil {
		return err
	}
	c, err := codec.New(s)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}

	encoded := make([]EncodedValue, 0, len(texts))
	for _, text := range texts {
		v, err := parseValue(formatter, text)
		if err != nil {
			return err
		}
		enc, err := encodeValue(formatter, c, v)
		if err != nil {
			return err
		}
		encoded = append(encoded, EncodedValue{Value: jsonText(v), Hex: hex.EncodeToString(enc)})
	}

	return formatter.Emit(encoded, func(w io.Writer) {
		for _, e := range encoded {
			fmt.Fprintln(w, e.Hex)
		}
	})
}
