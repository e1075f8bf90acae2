package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/spill"
	"github.com/roach88/jcodec/internal/store"
	"github.com/roach88/jcodec/internal/value"
)

// Sort engines.
const (
	EngineStore = "store"
	EngineSpill = "spill"
)

// ValidEngines defines the allowed sort engines.
var ValidEngines = []string{EngineStore, EngineSpill}

// SortOptions holds flags for the sort command.
type SortOptions struct {
	*RootOptions
	Input    string // file of JSON values, one per line ("-" is stdin)
	Engine   string // "store" | "spill"
	DB       string // SQLite database path for the store engine
	SpillDir string // pebble directory for the spill engine
	Compress bool   // zstd-compress store payloads
	Keep     bool   // keep the run in the database
	From     string // inclusive lower bound (store engine)
	To       string // exclusive upper bound (store engine)
}

// SortResult holds the outcome of the sort command.
type SortResult struct {
	Engine string   `json:"engine"`
	Run    string   `json:"run,omitempty"`
	Values []string `json:"values"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SortOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sort <schema-file>",
		Short: "Sort values in codec order",
		Long: `Read JSON values, one per line, spill them through a sorted store and
print them in ascending codec order.

The store engine writes the values as a run of a SQLite database ordered
by the codec collation. The spill engine sorts them in a pebble LSM in a
temporary directory.

Examples:
  jcodec sort schema.cue --input values.jsonl
  cat values.jsonl | jcodec sort schema.cue --engine spill
  jcodec sort schema.cue -i values.jsonl --db runs.db --keep
  jcodec sort schema.cue -i values.jsonl --from '{"id": 10}' --to '{"id": 20}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "file of JSON values, one per line")
	cmd.Flags().StringVar(&opts.Engine, "engine", EngineStore, "sort engine (store|spill)")
	cmd.Flags().StringVar(&opts.DB, "db", ":memory:", "SQLite database path (store engine)")
	cmd.Flags().StringVar(&opts.SpillDir, "spill-dir", "", "pebble directory (spill engine, default temporary)")
	cmd.Flags().BoolVar(&opts.Compress, "compress", false, "zstd-compress payloads (store engine)")
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "keep the run in the database (store engine)")
	cmd.Flags().StringVar(&opts.From, "from", "", "inclusive lower bound as JSON (store engine)")
	cmd.Flags().StringVar(&opts.To, "to", "", "exclusive upper bound as JSON (store engine)")

	return cmd
}

func runSort(opts *SortOptions, schemaFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if !slices.Contains(ValidEngines, opts.Engine) {
		return commandError(formatter, ErrCodeGeneric,
			fmt.Sprintf("invalid engine %q: must be one of %v", opts.Engine, ValidEngines))
	}
	if opts.Engine == EngineSpill && (opts.From != "" || opts.To != "") {
		return commandError(formatter, ErrCodeGeneric, "--from and --to require the store engine")
	}

	s, err := loadSchema(formatter, schemaFile)
	if err != nil {
		return err
	}
	values, err := readInput(formatter, opts.Input, cmd)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Read %d value(s)", len(values))

	// Reject mismatching values before anything is written.
	c, err := codec.New(s)
	if err != nil {
		return commandError(formatter, ErrCodeSchema, err.Error())
	}
	for _, v := range values {
		if _, err := encodeValue(formatter, c, v); err != nil {
			return err
		}
	}

	result := SortResult{Engine: opts.Engine, Values: make([]string, 0, len(values))}
	logger := newLogger(formatter)
	switch opts.Engine {
	case EngineStore:
		var r store.Range
		if r.From, err = parseBound(formatter, opts.From); err != nil {
			return err
		}
		if r.To, err = parseBound(formatter, opts.To); err != nil {
			return err
		}
		st, err := store.Open(opts.DB, s, store.Options{Compress: opts.Compress, Logger: logger})
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		defer st.Close()
		result.Run, err = sortWithStore(cmd.Context(), st, values, r, opts.Keep, &result.Values)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
	case EngineSpill:
		if err := sortWithSpill(s, opts.SpillDir, logger, values, &result.Values); err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
	}

	return formatter.Emit(result, func(w io.Writer) {
		for _, text := range result.Values {
			fmt.Fprintln(w, text)
		}
	})
}

func parseBound(f *OutputFormatter, text string) (value.Value, error) {
	if text == "" {
		return nil, nil
	}
	return parseValue(f, text)
}

// sortWithStore writes values as a new run, scans it in codec order, and
// deletes the run unless keep is set.
func sortWithStore(ctx context.Context, st *store.Store, values []value.Value, r store.Range, keep bool, out *[]string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	run, err := st.NewRun(ctx)
	if err != nil {
		return "", err
	}

	// The payload carries the JSON text, so the scan prints without decoding.
	entries := make([]store.Entry, len(values))
	for i, v := range values {
		entries[i] = store.Entry{Key: v, Payload: []byte(jsonText(v))}
	}
	if err := st.PutBatch(ctx, run, entries); err != nil {
		return "", err
	}

	err = st.ScanRange(ctx, run, r, func(e store.Entry) error {
		*out = append(*out, string(e.Payload))
		return nil
	})
	if err != nil {
		return "", err
	}

	if keep {
		return run, nil
	}
	if err := st.DeleteRun(ctx, run); err != nil {
		return "", err
	}
	return "", nil
}

// sortWithSpill sorts values in a pebble LSM under dir, or under a
// temporary directory removed afterwards when dir is empty.
func sortWithSpill(s schema.Schema, dir string, logger *slog.Logger, values []value.Value, out *[]string) error {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "jcodec-spill-")
		if err != nil {
			return fmt.Errorf("create spill directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	sorter, err := spill.New(s, spill.Options{Dir: dir, FS: vfs.Default, Logger: logger})
	if err != nil {
		return err
	}
	defer sorter.Close()

	for _, v := range values {
		if err := sorter.Add(v); err != nil {
			return err
		}
	}
	return sorter.Each(func(_ []byte, v value.Value) error {
		*out = append(*out, jsonText(v))
		return nil
	})
}
