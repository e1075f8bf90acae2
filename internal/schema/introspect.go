package schema

import (
	"bytes"

	"github.com/roach88/jcodec/internal/value"
)

// IsConstant reports whether s matches exactly one value.
func IsConstant(s Schema) bool {
	_, ok := Constant(s)
	return ok
}

// Constant returns the single value matched by s. Codecs built for such
// schemas write nothing and read back this value.
func Constant(s Schema) (value.Value, bool) {
	switch s := s.(type) {
	case *Null:
		return value.Null{}, true
	case *Boolean:
		if s.Value != nil {
			return value.Bool(*s.Value), true
		}
	case *Long:
		if s.Value != nil {
			return value.Long(*s.Value), true
		}
		if s.Min != nil && s.Max != nil && *s.Min == *s.Max {
			return value.Long(*s.Min), true
		}
	case *Decimal:
		if s.Value != nil {
			if d, err := value.DecimalFromApd(s.Value); err == nil {
				return d, true
			}
		}
	case *Double:
		if s.Value != nil {
			return value.Double(*s.Value), true
		}
	case *String:
		if s.Value != nil {
			return value.String(*s.Value), true
		}
		if s.MaxLength != nil && *s.MaxLength == 0 {
			return value.String(""), true
		}
	case *Binary:
		if s.MaxLength != nil && *s.MaxLength == 0 {
			return value.Binary{}, true
		}
	case *Date:
		if s.Value != nil {
			return *s.Value, true
		}
		if s.Min != nil && s.Max != nil && *s.Min == *s.Max {
			return *s.Min, true
		}
	case *Array:
		if s.Rest != nil && (s.MaxRest == nil || *s.MaxRest != 0) {
			return nil, false
		}
		arr := make(value.Array, len(s.Head))
		for i, h := range s.Head {
			c, ok := Constant(h)
			if !ok {
				return nil, false
			}
			arr[i] = c
		}
		return arr, true
	case *Record:
		if s.Rest != nil {
			return nil, false
		}
		rec := make(value.Record, len(s.Fields))
		for _, f := range s.Fields {
			if f.Optional {
				return nil, false
			}
			c, ok := Constant(f.Schema)
			if !ok {
				return nil, false
			}
			rec[f.Name] = c
		}
		return rec, true
	}
	return nil, false
}

// IsNullable reports whether s matches null.
func IsNullable(s Schema) bool {
	switch s := s.(type) {
	case *Any, *Null:
		return true
	case *Or:
		for _, b := range s.Branches {
			if IsNullable(b) {
				return true
			}
		}
	}
	return false
}

// ElementSchema returns the schema of any element of arrays matched by s.
func ElementSchema(s Schema) (Schema, bool) {
	switch s := s.(type) {
	case *Any:
		return AnySchema, true
	case *Array:
		elems := make([]Schema, 0, len(s.Head)+1)
		elems = append(elems, s.Head...)
		if s.Rest != nil {
			elems = append(elems, s.Rest)
		}
		return unionOf(elems)
	case *Or:
		var elems []Schema
		for _, b := range s.Branches {
			if e, ok := ElementSchema(b); ok {
				elems = append(elems, e)
			}
		}
		return unionOf(elems)
	}
	return nil, false
}

// FieldSchema returns the schema of the named field of records matched by s.
// Fields covered only by a rest schema report that schema.
func FieldSchema(s Schema, name string) (Schema, bool) {
	switch s := s.(type) {
	case *Any:
		return AnySchema, true
	case *Record:
		if f, ok := s.Field(name); ok {
			return f.Schema, true
		}
		if s.Rest != nil {
			return s.Rest, true
		}
	case *Or:
		var fields []Schema
		for _, b := range s.Branches {
			if f, ok := FieldSchema(b, name); ok {
				fields = append(fields, f)
			}
		}
		return unionOf(fields)
	}
	return nil, false
}

// unionOf returns the deduplicated union of ss, or false when ss is empty.
func unionOf(ss []Schema) (Schema, bool) {
	if len(ss) == 0 {
		return nil, false
	}
	u, err := NewOr(ss...)
	if err != nil {
		return nil, false
	}
	return Compact(u).Schema(), true
}

// Kinds returns the value kinds s can match, in value.Kind order.
func Kinds(s Schema) []value.Kind {
	var seen [value.NumKinds]bool
	markKinds(s, &seen)

	var kinds []value.Kind
	for k, ok := range seen {
		if ok {
			kinds = append(kinds, value.Kind(k))
		}
	}
	return kinds
}

func markKinds(s Schema, seen *[value.NumKinds]bool) {
	switch s := s.(type) {
	case *Any:
		for k := range seen {
			seen[k] = true
		}
	case *Null:
		seen[value.KindNull] = true
	case *Boolean:
		seen[value.KindBool] = true
	case *Long, *Decimal, *Double:
		seen[value.KindLong] = true
		seen[value.KindDecimal] = true
		seen[value.KindDouble] = true
	case *String:
		seen[value.KindString] = true
	case *Binary:
		seen[value.KindBinary] = true
	case *Date:
		seen[value.KindDate] = true
	case *Array:
		seen[value.KindArray] = true
	case *Record:
		seen[value.KindRecord] = true
	case *Generic:
		seen[value.KindGeneric] = true
	case *SchemaType:
		seen[value.KindSchema] = true
	case *Or:
		for _, b := range s.Branches {
			markKinds(b, seen)
		}
	}
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Schema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	da, err := MarshalDoc(a)
	if err != nil {
		return false
	}
	db, err := MarshalDoc(b)
	if err != nil {
		return false
	}
	return bytes.Equal(da, db)
}
