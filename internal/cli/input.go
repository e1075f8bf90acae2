package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/compiler"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// maxLineSize bounds one JSON value read from a values file.
const maxLineSize = 16 << 20

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a logger writing to stderr at debug level in verbose
// mode, and a discarding logger otherwise.
func newLogger(f *OutputFormatter) *slog.Logger {
	if !f.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f.GetErrWriter(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// commandError reports an error through the formatter and returns it as a
// command-level exit error.
func commandError(f *OutputFormatter, code, message string) error {
	_ = f.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// loadSchema compiles a schema file, reporting failures through f.
func loadSchema(f *OutputFormatter, path string) (schema.Schema, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, commandError(f, ErrCodeNotFound, fmt.Sprintf("schema file not found: %s", path))
	}
	s, err := compiler.LoadFile(path)
	if err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) && compileErr.Pos.IsValid() {
			return nil, commandError(f, ErrCodeSchema, fmt.Sprintf("%s:%d:%d: %s",
				compileErr.Pos.Filename(), compileErr.Pos.Line(), compileErr.Pos.Column(), compileErr.Message))
		}
		return nil, commandError(f, ErrCodeSchema, err.Error())
	}
	f.VerboseLog("Loaded schema %s from %s", schema.Format(s), path)
	return s, nil
}

// parseValue parses the JSON text of a value.
func parseValue(f *OutputFormatter, text string) (value.Value, error) {
	v, err := schema.UnmarshalValue([]byte(text))
	if err != nil {
		return nil, commandError(f, ErrCodeValue, fmt.Sprintf("invalid value %s: %v", text, err))
	}
	return v, nil
}

// encodeValue encodes v, reporting a schema mismatch as a check failure.
func encodeValue(f *OutputFormatter, c *codec.Codec, v value.Value) ([]byte, error) {
	enc, err := c.Encode(v)
	if err != nil {
		code, exit := encodeFailure(err)
		message := fmt.Sprintf("%s: %v", jsonText(v), err)
		_ = f.Error(code, message, nil)
		return nil, NewExitError(exit, message)
	}
	return enc, nil
}

// encodeFailure returns the error and exit codes for a failed encode. Only a
// mismatch is a check failure.
func encodeFailure(err error) (code string, exit int) {
	if codec.IsMismatch(err) {
		return ErrCodeMismatch, ExitFailure
	}
	return ErrCodeGeneric, ExitCommandError
}

// readValues reads one JSON value per non-blank line from r.
func readValues(f *OutputFormatter, r io.Reader) ([]value.Value, error) {
	var values []value.Value
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := schema.UnmarshalValue(text)
		if err != nil {
			return nil, commandError(f, ErrCodeValue, fmt.Sprintf("line %d: %v", line, err))
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, commandError(f, ErrCodeGeneric, fmt.Sprintf("reading values: %v", err))
	}
	return values, nil
}

func jsonText(v value.Value) string {
	b, err := value.MarshalJSON(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}
