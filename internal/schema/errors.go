package schema

import (
	"errors"
	"fmt"
)

// Error represents a schema construction error.
//
// Construction errors are fatal for the schema concerned: a schema that fails
// validation must never reach a codec.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path locates the offending node, e.g. "record.fields[id].long".
	Path string
}

// ErrorCode categorizes schema construction errors.
type ErrorCode string

const (
	// ErrCodeInvalidRange indicates min > max, or a negative length or count.
	ErrCodeInvalidRange ErrorCode = "INVALID_RANGE"

	// ErrCodeInvalidConstant indicates a pinned value outside the declared range.
	ErrCodeInvalidConstant ErrorCode = "INVALID_CONSTANT"

	// ErrCodeDuplicateField indicates two record fields share a name.
	ErrCodeDuplicateField ErrorCode = "DUPLICATE_FIELD"

	// ErrCodeUnsortedFields indicates record fields out of name order.
	ErrCodeUnsortedFields ErrorCode = "UNSORTED_FIELDS"

	// ErrCodeEmptyUnion indicates an Or without branches.
	ErrCodeEmptyUnion ErrorCode = "EMPTY_UNION"

	// ErrCodeNestedUnion indicates an Or directly containing an Or.
	ErrCodeNestedUnion ErrorCode = "NESTED_UNION"

	// ErrCodeInvalidPattern indicates a string pattern that does not compile.
	ErrCodeInvalidPattern ErrorCode = "INVALID_PATTERN"

	// ErrCodeInvalidRest indicates repetition bounds without a rest schema.
	ErrCodeInvalidRest ErrorCode = "INVALID_REST"

	// ErrCodeMalformed indicates a missing node or an unreadable schema document.
	ErrCodeMalformed ErrorCode = "MALFORMED_SCHEMA"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, path, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Path: path}
}

// IsConstructionError reports whether err is (or wraps) a schema error.
func IsConstructionError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// HasCode reports whether err is a schema error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
