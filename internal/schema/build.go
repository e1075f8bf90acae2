package schema

import (
	"slices"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/jcodec/internal/value"
)

// Shared parameterless schemas. They are immutable like every other schema.
var (
	AnySchema     Schema = &Any{}
	NullSchema    Schema = &Null{}
	BooleanSchema Schema = &Boolean{}
	LongSchema    Schema = &Long{}
	DecimalSchema Schema = &Decimal{}
	DoubleSchema  Schema = &Double{}
	StringSchema  Schema = &String{}
	BinarySchema  Schema = &Binary{}
	DateSchema    Schema = &Date{}
)

// BooleanConst returns the schema matching exactly b.
func BooleanConst(b bool) *Boolean {
	return &Boolean{Value: &b}
}

// NewLong returns a long schema bounded by min and max (nil = unbounded).
func NewLong(min, max *int64) (*Long, error) {
	s := &Long{Min: min, Max: max}
	if err := validateLong(s, "long"); err != nil {
		return nil, err
	}
	return s, nil
}

// LongConst returns the schema matching exactly n.
func LongConst(n int64) *Long {
	return &Long{Value: &n}
}

// NewDecimal returns a decimal schema bounded by min and max (nil = unbounded).
func NewDecimal(min, max *apd.Decimal) (*Decimal, error) {
	s := &Decimal{Min: min, Max: max}
	if err := validateDecimal(s, "decimal"); err != nil {
		return nil, err
	}
	return s, nil
}

// DecimalConst returns the schema matching exactly d.
func DecimalConst(d value.Decimal) *Decimal {
	return &Decimal{Value: d.Apd()}
}

// NewDouble returns a double schema bounded by min and max (nil = unbounded).
func NewDouble(min, max *float64) (*Double, error) {
	s := &Double{Min: min, Max: max}
	if err := validateDouble(s, "double"); err != nil {
		return nil, err
	}
	return s, nil
}

// DoubleConst returns the schema matching exactly f.
func DoubleConst(f float64) *Double {
	return &Double{Value: &f}
}

// NewString returns a string schema. An empty pattern accepts every string.
func NewString(pattern string, minLength, maxLength *int64) (*String, error) {
	s := &String{Pattern: pattern, MinLength: minLength, MaxLength: maxLength}
	if err := validateString(s, "string"); err != nil {
		return nil, err
	}
	if pattern != "" {
		s.re, _ = compilePattern(pattern)
	}
	return s, nil
}

// StringConst returns the schema matching exactly str.
func StringConst(str string) *String {
	return &String{Value: &str}
}

// NewBinary returns a binary schema with byte length in [minLength, maxLength].
func NewBinary(minLength, maxLength *int64) (*Binary, error) {
	s := &Binary{MinLength: minLength, MaxLength: maxLength}
	if err := validateLengths(minLength, maxLength, "binary"); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDate returns a date schema bounded by min and max (nil = unbounded).
func NewDate(min, max *value.Date) (*Date, error) {
	s := &Date{Min: min, Max: max}
	if err := validateDate(s, "date"); err != nil {
		return nil, err
	}
	return s, nil
}

// DateConst returns the schema matching exactly d.
func DateConst(d value.Date) *Date {
	return &Date{Value: &d}
}

// NewArray returns an array schema. maxRest nil means unbounded; rest nil
// requires minRest == 0 and maxRest nil or 0.
func NewArray(head []Schema, rest Schema, minRest int64, maxRest *int64) (*Array, error) {
	s := &Array{Head: slices.Clone(head), Rest: rest, MinRest: minRest, MaxRest: maxRest}
	if rest == nil {
		s.MaxRest = nil
	}
	if err := validate(s, "array"); err != nil {
		return nil, err
	}
	return s, nil
}

// ArrayOf returns the schema of arrays of any length whose elements match elem.
func ArrayOf(elem Schema) *Array {
	return &Array{Rest: elem}
}

// NewRecord returns a record schema. Field names are NFC normalized and
// sorted; a nil rest closes the record.
func NewRecord(fields []Field, rest Schema) (*Record, error) {
	fs := make([]Field, len(fields))
	for i, f := range fields {
		f.Name = norm.NFC.String(f.Name)
		fs[i] = f
	}
	slices.SortStableFunc(fs, func(a, b Field) int {
		return value.CompareNames(a.Name, b.Name)
	})

	s := &Record{Fields: fs, Rest: rest}
	if err := validate(s, "record"); err != nil {
		return nil, err
	}
	return s, nil
}

// NewOr returns the union of branches. Nested unions are flattened and a
// single remaining branch is returned unwrapped.
func NewOr(branches ...Schema) (Schema, error) {
	var flat []Schema
	for _, b := range branches {
		if b == nil {
			return nil, newError(ErrCodeMalformed, "or", "nil branch")
		}
		if or, ok := b.(*Or); ok {
			flat = append(flat, or.Branches...)
			continue
		}
		flat = append(flat, b)
	}
	switch len(flat) {
	case 0:
		return nil, newError(ErrCodeEmptyUnion, "or", "union has no branches")
	case 1:
		return flat[0], nil
	}

	s := &Or{Branches: flat}
	if err := validate(s, "or"); err != nil {
		return nil, err
	}
	return s, nil
}

// Optional returns s | null.
func Optional(s Schema) (Schema, error) {
	if IsNullable(s) {
		return s, nil
	}
	return NewOr(s, NullSchema)
}

// MustSchema panics if err is not nil.
// Use only in tests or when inputs are known to be valid.
func MustSchema[S Schema](s S, err error) S {
	if err != nil {
		panic(err)
	}
	return s
}
