package value

import (
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Value is a sealed interface representing JSON-like values.
type Value interface {
	Kind() Kind
	isValue() // Sealed - only this package's types (and SchemaMarker embedders) implement it
}

// Kind tags the concrete variant of a Value.
// The numeric codes are part of the untyped wire format; do not reorder.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindLong
	KindDecimal
	KindDouble
	KindString
	KindBinary
	KindDate
	KindArray
	KindRecord
	KindSchema
	KindGeneric

	// NumKinds is the number of value kinds.
	NumKinds = int(KindGeneric) + 1
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "boolean",
	KindLong:    "long",
	KindDecimal: "decimal",
	KindDouble:  "double",
	KindString:  "string",
	KindBinary:  "binary",
	KindDate:    "date",
	KindArray:   "array",
	KindRecord:  "record",
	KindSchema:  "schema",
	KindGeneric: "generic",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k names a known kind.
func (k Kind) Valid() bool {
	return int(k) < NumKinds
}

// Class is the coarse ordering class of a kind. Values of different classes
// order by class alone; the numeric kinds share ClassNumber.
type Class uint8

const (
	ClassNull Class = iota
	ClassBool
	ClassNumber
	ClassString
	ClassBinary
	ClassDate
	ClassArray
	ClassRecord
	ClassSchema
	ClassGeneric
)

// ClassOf returns the ordering class of a kind.
func ClassOf(k Kind) Class {
	switch k {
	case KindNull:
		return ClassNull
	case KindBool:
		return ClassBool
	case KindLong, KindDecimal, KindDouble:
		return ClassNumber
	case KindString:
		return ClassString
	case KindBinary:
		return ClassBinary
	case KindDate:
		return ClassDate
	case KindArray:
		return ClassArray
	case KindRecord:
		return ClassRecord
	case KindSchema:
		return ClassSchema
	default:
		return ClassGeneric
	}
}

// Null represents a JSON null value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) isValue()   {}

// Bool represents a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) isValue()   {}

// Long represents a 64-bit integer value.
type Long int64

func (Long) Kind() Kind { return KindLong }
func (Long) isValue()   {}

// Double represents a 64-bit floating point value.
type Double float64

func (Double) Kind() Kind { return KindDouble }
func (Double) isValue()   {}

// String represents a UTF-8 string value.
type String string

func (String) Kind() Kind { return KindString }
func (String) isValue()   {}

// Binary represents an opaque byte string.
type Binary []byte

func (Binary) Kind() Kind { return KindBinary }
func (Binary) isValue()   {}

// Date represents an instant as milliseconds since the Unix epoch (UTC).
type Date int64

func (Date) Kind() Kind { return KindDate }
func (Date) isValue()   {}

// DateOf truncates t to millisecond precision.
func DateOf(t time.Time) Date {
	return Date(t.UnixMilli())
}

// Time returns the instant in UTC.
func (d Date) Time() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

// Array represents an ordered list of values.
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (Array) isValue()   {}

// Record represents a map of field names to values.
// Use SortedKeys() for deterministic iteration.
type Record map[string]Value

func (Record) Kind() Kind { return KindRecord }
func (Record) isValue()   {}

// Generic carries a value of an application-defined type as an opaque payload.
type Generic struct {
	Type    string
	Payload []byte
}

func (Generic) Kind() Kind { return KindGeneric }
func (Generic) isValue()   {}

// SchemaMarker is embedded by schema values defined outside this package so
// they satisfy the sealed Value interface.
type SchemaMarker struct{}

func (SchemaMarker) Kind() Kind { return KindSchema }
func (SchemaMarker) isValue()   {}

// SchemaValue is a schema used as a value. Doc returns the canonical schema
// document, which defines both equality and order.
type SchemaValue interface {
	Value
	Doc() []byte
}

// DecimalContext is the arithmetic context for decimal values (decimal128).
var DecimalContext = apd.Context{
	Precision:   34,
	MaxExponent: 6144,
	MinExponent: -6143,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfEven,
}

// Decimal represents a finite arbitrary precision decimal.
type Decimal struct {
	d *apd.Decimal
}

func (Decimal) Kind() Kind { return KindDecimal }
func (Decimal) isValue()   {}

// NewDecimal parses a decimal literal such as "12.50" or "-1e3".
func NewDecimal(s string) (Decimal, error) {
	d, _, err := DecimalContext.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return DecimalFromApd(d)
}

// MustDecimal is like NewDecimal but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DecimalFromApd wraps d. The decimal must be finite and is not copied;
// callers must not mutate it afterwards.
func DecimalFromApd(d *apd.Decimal) (Decimal, error) {
	if d == nil {
		return Decimal{}, fmt.Errorf("nil decimal")
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("decimal %s is not finite", d)
	}
	return Decimal{d: d}, nil
}

// DecimalFromInt64 returns the decimal value of n.
func DecimalFromInt64(n int64) Decimal {
	return Decimal{d: apd.New(n, 0)}
}

// DecimalFromFloat64 returns the shortest decimal that round-trips f.
func DecimalFromFloat64(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, fmt.Errorf("decimal from %v: not finite", f)
	}
	d := new(apd.Decimal)
	if _, err := d.SetFloat64(f); err != nil {
		return Decimal{}, fmt.Errorf("decimal from %v: %w", f, err)
	}
	return Decimal{d: d}, nil
}

// Apd returns the underlying decimal. Callers must not mutate it.
func (d Decimal) Apd() *apd.Decimal {
	if d.d == nil {
		return apd.New(0, 0)
	}
	return d.d
}

func (d Decimal) String() string {
	return d.Apd().String()
}

// Number is the numeric value of v as a decimal, if v is numeric.
// Doubles that are NaN or infinite are reported as not numeric.
func Number(v Value) (*apd.Decimal, bool) {
	switch n := v.(type) {
	case Long:
		return apd.New(int64(n), 0), true
	case Decimal:
		return n.Apd(), true
	case Double:
		d, err := DecimalFromFloat64(float64(n))
		if err != nil {
			return nil, false
		}
		return d.d, true
	}
	return nil, false
}
