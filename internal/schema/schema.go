package schema

import (
	"fmt"
	"regexp"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/jcodec/internal/value"
)

// Schema is a sealed interface over the schema variants.
type Schema interface {
	Kind() Kind
	isSchema() // Sealed - only this package's types implement it
}

// Kind tags the schema variant.
type Kind uint8

const (
	KindAny Kind = iota
	KindNull
	KindBoolean
	KindLong
	KindDecimal
	KindDouble
	KindString
	KindBinary
	KindDate
	KindArray
	KindRecord
	KindOr
	KindGeneric
	KindSchema
)

var kindNames = [...]string{
	KindAny:     "any",
	KindNull:    "null",
	KindBoolean: "boolean",
	KindLong:    "long",
	KindDecimal: "decimal",
	KindDouble:  "double",
	KindString:  "string",
	KindBinary:  "binary",
	KindDate:    "date",
	KindArray:   "array",
	KindRecord:  "record",
	KindOr:      "or",
	KindGeneric: "generic",
	KindSchema:  "schema",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Any matches every value.
type Any struct{}

// Null matches only null.
type Null struct{}

// Boolean matches booleans, or exactly Value when set.
type Boolean struct {
	Value *bool
}

// Long matches 64-bit integers within [Min, Max], or exactly Value when set.
type Long struct {
	Min, Max, Value *int64
}

// Decimal matches decimals within [Min, Max], or exactly Value when set.
type Decimal struct {
	Min, Max, Value *apd.Decimal
}

// Double matches doubles within [Min, Max], or exactly Value when set.
type Double struct {
	Min, Max, Value *float64
}

// String matches strings whose byte length lies in [MinLength, MaxLength]
// and which fully match Pattern, or exactly Value when set.
type String struct {
	Pattern              string
	MinLength, MaxLength *int64
	Value                *string

	re *regexp.Regexp
}

// Binary matches byte strings whose length lies in [MinLength, MaxLength].
type Binary struct {
	MinLength, MaxLength *int64
}

// Date matches dates within [Min, Max], or exactly Value when set.
type Date struct {
	Min, Max, Value *value.Date
}

// Array matches arrays whose leading elements match Head positionally and
// whose remaining elements each match Rest, with a count in [MinRest, MaxRest].
// A nil Rest means the array has exactly len(Head) elements. A nil MaxRest
// means no upper bound.
type Array struct {
	Head    []Schema
	Rest    Schema
	MinRest int64
	MaxRest *int64
}

// Field is a named record field.
type Field struct {
	Name     string
	Schema   Schema
	Optional bool
}

// Record matches records carrying the named Fields. Fields are unique and
// sorted by value.CompareNames. A nil Rest closes the record; otherwise any
// other field must match Rest.
type Record struct {
	Fields []Field
	Rest   Schema
}

// Or matches values matching at least one branch. Branches are never Or.
type Or struct {
	Branches []Schema
}

// Generic matches generic values of Type, or every generic value when Type is empty.
type Generic struct {
	Type string
}

// SchemaType matches schema values.
type SchemaType struct{}

func (*Any) Kind() Kind        { return KindAny }
func (*Null) Kind() Kind       { return KindNull }
func (*Boolean) Kind() Kind    { return KindBoolean }
func (*Long) Kind() Kind       { return KindLong }
func (*Decimal) Kind() Kind    { return KindDecimal }
func (*Double) Kind() Kind     { return KindDouble }
func (*String) Kind() Kind     { return KindString }
func (*Binary) Kind() Kind     { return KindBinary }
func (*Date) Kind() Kind       { return KindDate }
func (*Array) Kind() Kind      { return KindArray }
func (*Record) Kind() Kind     { return KindRecord }
func (*Or) Kind() Kind         { return KindOr }
func (*Generic) Kind() Kind    { return KindGeneric }
func (*SchemaType) Kind() Kind { return KindSchema }

func (*Any) isSchema()        {}
func (*Null) isSchema()       {}
func (*Boolean) isSchema()    {}
func (*Long) isSchema()       {}
func (*Decimal) isSchema()    {}
func (*Double) isSchema()     {}
func (*String) isSchema()     {}
func (*Binary) isSchema()     {}
func (*Date) isSchema()       {}
func (*Array) isSchema()      {}
func (*Record) isSchema()     {}
func (*Or) isSchema()         {}
func (*Generic) isSchema()    {}
func (*SchemaType) isSchema() {}

// Ptr returns a pointer to v, for optional schema parameters.
func Ptr[T any](v T) *T {
	return &v
}

// Regexp returns the anchored pattern, or nil when the schema has none.
func (s *String) Regexp() *regexp.Regexp {
	if s.Pattern == "" {
		return nil
	}
	if s.re != nil {
		return s.re
	}
	re, err := compilePattern(s.Pattern)
	if err != nil {
		// Validate rejects such schemas; nothing matches meanwhile.
		return regexp.MustCompile(`[^\x00-\x{10FFFF}]`)
	}
	return re
}

// compilePattern anchors the pattern so it must match the whole string.
func compilePattern(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)$`)
}

// Field returns the named field.
func (r *Record) Field(name string) (Field, bool) {
	lo, hi := 0, len(r.Fields)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if value.CompareNames(r.Fields[mid].Name, name) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(r.Fields) && r.Fields[lo].Name == name {
		return r.Fields[lo], true
	}
	return Field{}, false
}

// IsFixed reports whether the array has a single possible length.
func (a *Array) IsFixed() bool {
	return a.Rest == nil || (a.MaxRest != nil && *a.MaxRest == a.MinRest)
}
