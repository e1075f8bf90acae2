package codec

import (
	"errors"
	"fmt"
)

// Error represents a codec failure.
//
// Mismatch codes (SCHEMA_MISMATCH, MISSING_REQUIRED_FIELD, UNEXPECTED_FIELD)
// mean the codec cannot encode the value; the output may be rolled back and
// the value tried elsewhere. Malformed codes (MALFORMED_INPUT, UNKNOWN_TAG)
// mean the bytes are corrupt and the stream position is lost.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path locates the offending value, e.g. "tags[1]" or "meta.owner".
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes codec errors.
type ErrorCode string

const (
	// ErrCodeMismatch indicates a value that does not satisfy the codec's schema.
	ErrCodeMismatch ErrorCode = "SCHEMA_MISMATCH"

	// ErrCodeMissingField indicates a required record field absent from the value.
	ErrCodeMissingField ErrorCode = "MISSING_REQUIRED_FIELD"

	// ErrCodeUnexpectedField indicates an extra record field where the schema
	// declares no rest schema.
	ErrCodeUnexpectedField ErrorCode = "UNEXPECTED_FIELD"

	// ErrCodeMalformed indicates truncated or corrupt input.
	ErrCodeMalformed ErrorCode = "MALFORMED_INPUT"

	// ErrCodeUnknownTag indicates a union tag with no registered codec.
	ErrCodeUnknownTag ErrorCode = "UNKNOWN_TAG"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (at " + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func mismatch(format string, args ...any) *Error {
	return &Error{Code: ErrCodeMismatch, Message: fmt.Sprintf(format, args...)}
}

func malformed(format string, args ...any) *Error {
	return &Error{Code: ErrCodeMalformed, Message: fmt.Sprintf(format, args...)}
}

// atPath prefixes the path of a codec error with seg. Segments starting
// with '[' attach without a dot.
func atPath(err error, seg string) error {
	var ce *Error
	if !errors.As(err, &ce) {
		return err
	}
	switch {
	case ce.Path == "":
		ce.Path = seg
	case ce.Path[0] == '[':
		ce.Path = seg + ce.Path
	default:
		ce.Path = seg + "." + ce.Path
	}
	return err
}

// IsMismatch reports whether err means the value does not fit the schema.
func IsMismatch(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case ErrCodeMismatch, ErrCodeMissingField, ErrCodeUnexpectedField:
		return true
	}
	return false
}

// IsMalformed reports whether err means the encoded bytes are corrupt.
func IsMalformed(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == ErrCodeMalformed || ce.Code == ErrCodeUnknownTag
}
