package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/schema"
)

// FingerprintOptions holds flags for the fingerprint command.
type FingerprintOptions struct {
	*RootOptions
	Doc bool // also print the canonical schema document
}

// FingerprintResult holds the outcome of the fingerprint command.
type FingerprintResult struct {
	Schema      string          `json:"schema"`
	Fingerprint string          `json:"fingerprint"`
	Doc         json.RawMessage `json:"doc,omitempty"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FingerprintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fingerprint <schema-file>",
		Short: "Print the fingerprint of a schema",
		Long: `Print the fingerprint identifying a compiled schema.

Producer and consumer of an encoding must agree on the fingerprint.
With --doc the canonical schema document is printed as well.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Doc, "doc", false, "print the canonical schema document")

	return cmd
}

func runFingerprint(opts *FingerprintOptions, schemaFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	s, err := loadSchema(formatter, schemaFile)
	if err != nil {
		return err
	}
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}

	result := FingerprintResult{Schema: schema.Format(s), Fingerprint: fp}
	if opts.Doc {
		doc, err := schema.MarshalDoc(s)
		if err != nil {
			return commandError(formatter, ErrCodeSchema, err.Error())
		}
		result.Doc = doc
	}

	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Fingerprint)
		if opts.Doc {
			fmt.Fprintln(w, string(result.Doc))
		}
	})
}
