package schema

import (
	"cmp"

	"github.com/roach88/jcodec/internal/value"
)

// Matches reports whether v satisfies s. A value of the wrong kind simply
// does not match; Matches never fails. Numeric schemas accept any number
// that converts exactly to their kind, so 5.0 satisfies a long range.
func Matches(s Schema, v value.Value) bool {
	if v == nil {
		return false
	}

	switch s := s.(type) {
	case *Any:
		return true
	case *Null:
		return v.Kind() == value.KindNull
	case *Boolean:
		b, ok := v.(value.Bool)
		return ok && (s.Value == nil || bool(b) == *s.Value)
	case *Long:
		n, ok := value.AsLong(v)
		if !ok {
			return false
		}
		if s.Value != nil {
			return n == *s.Value
		}
		return inRange(n, s.Min, s.Max)
	case *Decimal:
		d, ok := value.AsDecimal(v)
		if !ok {
			return false
		}
		x := d.Apd()
		if s.Value != nil {
			return x.Cmp(s.Value) == 0
		}
		if s.Min != nil && x.Cmp(s.Min) < 0 {
			return false
		}
		return s.Max == nil || x.Cmp(s.Max) <= 0
	case *Double:
		x, ok := value.AsDouble(v)
		if !ok {
			return false
		}
		if s.Value != nil {
			return cmp.Compare(x, *s.Value) == 0
		}
		if s.Min != nil && cmp.Compare(x, *s.Min) < 0 {
			return false
		}
		return s.Max == nil || cmp.Compare(x, *s.Max) <= 0
	case *String:
		str, ok := v.(value.String)
		if !ok {
			return false
		}
		if s.Value != nil {
			return string(str) == *s.Value
		}
		if !inRange(int64(len(str)), s.MinLength, s.MaxLength) {
			return false
		}
		re := s.Regexp()
		return re == nil || re.MatchString(string(str))
	case *Binary:
		b, ok := v.(value.Binary)
		return ok && inRange(int64(len(b)), s.MinLength, s.MaxLength)
	case *Date:
		d, ok := v.(value.Date)
		if !ok {
			return false
		}
		if s.Value != nil {
			return d == *s.Value
		}
		return inRange(d, s.Min, s.Max)
	case *Array:
		arr, ok := v.(value.Array)
		return ok && matchesArray(s, arr)
	case *Record:
		rec, ok := v.(value.Record)
		return ok && matchesRecord(s, rec)
	case *Or:
		for _, b := range s.Branches {
			if Matches(b, v) {
				return true
			}
		}
		return false
	case *Generic:
		g, ok := v.(value.Generic)
		return ok && (s.Type == "" || g.Type == s.Type)
	case *SchemaType:
		return v.Kind() == value.KindSchema
	}
	return false
}

func matchesArray(s *Array, arr value.Array) bool {
	if len(arr) < len(s.Head) {
		return false
	}
	for i, h := range s.Head {
		if !Matches(h, arr[i]) {
			return false
		}
	}

	rest := int64(len(arr) - len(s.Head))
	if s.Rest == nil {
		return rest == 0
	}
	if rest < s.MinRest || (s.MaxRest != nil && rest > *s.MaxRest) {
		return false
	}
	for _, elem := range arr[len(s.Head):] {
		if !Matches(s.Rest, elem) {
			return false
		}
	}
	return true
}

func matchesRecord(s *Record, rec value.Record) bool {
	named := 0
	for _, f := range s.Fields {
		fv, ok := rec[f.Name]
		if !ok {
			if !f.Optional {
				return false
			}
			continue
		}
		named++
		if !Matches(f.Schema, fv) {
			return false
		}
	}
	if named == len(rec) {
		return true
	}
	if s.Rest == nil {
		return false
	}
	for name, fv := range rec {
		if _, ok := s.Field(name); ok {
			continue
		}
		if !Matches(s.Rest, fv) {
			return false
		}
	}
	return true
}
