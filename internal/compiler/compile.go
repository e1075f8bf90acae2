package compiler

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/jcodec/internal/schema"
)

//go:embed schema.cue
var schemaDef string

var docPath = cue.ParsePath("doc")

// CompileString compiles CUE (or JSON) source holding a schema document.
// See CompileValue for the accepted forms.
func CompileString(src string) (schema.Schema, error) {
	return compileBytes([]byte(src), "schema")
}

// LoadFile compiles the schema file at path.
func LoadFile(path string) (schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return compileBytes(data, path)
}

func compileBytes(data []byte, filename string) (schema.Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileValue(v)
}

// CompileValue turns a CUE value into a schema. The value is either a
// schema document, a struct whose "schema" field holds one, or a struct
// whose "type" field holds a CUE type to infer the schema from:
//
//	{"record": {"fields": [{"name": "id", "schema": {"long": {"min": 0}}}]}}
//	schema: "long"
//	type: {id: int & >=0, name: string}
func CompileValue(v cue.Value) (schema.Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if v.IncompleteKind() == cue.StructKind {
		if t := v.LookupPath(cue.ParsePath("type")); t.Exists() {
			return Infer(t)
		}
		if s := v.LookupPath(cue.ParsePath("schema")); s.Exists() {
			v = s
		}
	}

	def := v.Context().CompileString(schemaDef, cue.Filename("schema.cue"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("schema definition: %w", err)
	}
	doc := def.FillPath(docPath, v).LookupPath(docPath)
	if err := doc.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	s, err := schema.ParseDoc(data)
	if err != nil {
		return nil, schemaError(err, v.Pos())
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos

	// Err is the underlying schema construction error, if any.
	Err error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// schemaError attaches a source position to a schema construction error.
func schemaError(err error, pos token.Pos) error {
	var se *schema.Error
	if errors.As(err, &se) {
		return &CompileError{
			Field:   se.Path,
			Message: fmt.Sprintf("%s: %s", se.Code, se.Message),
			Pos:     pos,
			Err:     err,
		}
	}
	return &CompileError{Field: "schema", Message: err.Error(), Pos: pos, Err: err}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return &CompileError{Field: "cue", Message: firstErr.Error()}
}
