package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check failure (value does not match, scenarios failed, etc.)
	ExitCommandError = 2 // Command error (invalid paths, schema does not compile, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeNotFound = "E005" // Path not found

	ErrCodeSchema    = "E201" // Schema does not compile
	ErrCodeValue     = "E202" // Value is not valid JSON
	ErrCodeMismatch  = "E203" // Value does not match the schema
	ErrCodeMalformed = "E204" // Encoding is corrupt or truncated

	ErrCodeStore = "E301" // Store or spill failure
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int // ExitFailure or ExitCommandError
	Message string
	Err     error // optional cause
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError creates an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope of every JSON output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failure in a JSON response.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as JSON envelopes.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; nil means Writer
	Verbose   bool
}

func (f *OutputFormatter) json() bool { return f.Format == "json" }

func (f *OutputFormatter) encode(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Emit writes data as a JSON envelope, or calls text to render it.
func (f *OutputFormatter) Emit(data any, text func(w io.Writer)) error {
	if f.json() {
		return f.Success(data)
	}
	text(f.Writer)
	return nil
}

// Success writes data as an ok envelope, or prints it as is in text mode.
func (f *OutputFormatter) Success(data any) error {
	if f.json() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a failure. Details are shown in text mode only when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.json() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line in verbose mode. It never writes to
// Writer when ErrWriter is set, so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns the writer for diagnostics.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}
