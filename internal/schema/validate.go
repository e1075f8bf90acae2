package schema

import (
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/jcodec/internal/value"
)

// Validate checks every invariant of a schema tree: ordered ranges, pinned
// values inside their ranges, compilable patterns, sorted unique record
// fields, non-empty flat unions and rest/repetition consistency.
func Validate(s Schema) error {
	return validate(s, "$")
}

func validate(s Schema, path string) error {
	switch s := s.(type) {
	case nil:
		return newError(ErrCodeMalformed, path, "nil schema")
	case *Any, *Null, *Boolean, *Generic, *SchemaType:
		return nil
	case *Long:
		return validateLong(s, path)
	case *Decimal:
		return validateDecimal(s, path)
	case *Double:
		return validateDouble(s, path)
	case *String:
		return validateString(s, path)
	case *Binary:
		return validateLengths(s.MinLength, s.MaxLength, path)
	case *Date:
		return validateDate(s, path)
	case *Array:
		return validateArray(s, path)
	case *Record:
		return validateRecord(s, path)
	case *Or:
		return validateOr(s, path)
	default:
		return newError(ErrCodeMalformed, path, "unknown schema type %T", s)
	}
}

func validateLong(s *Long, path string) error {
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return newError(ErrCodeInvalidRange, path, "min %d > max %d", *s.Min, *s.Max)
	}
	if s.Value != nil && !inRange(*s.Value, s.Min, s.Max) {
		return newError(ErrCodeInvalidConstant, path, "value %d outside range", *s.Value)
	}
	return nil
}

func validateDecimal(s *Decimal, path string) error {
	for _, d := range []*apd.Decimal{s.Min, s.Max, s.Value} {
		if d != nil && d.Form != apd.Finite {
			return newError(ErrCodeInvalidRange, path, "decimal parameter %s is not finite", d)
		}
	}
	if s.Min != nil && s.Max != nil && s.Min.Cmp(s.Max) > 0 {
		return newError(ErrCodeInvalidRange, path, "min %s > max %s", s.Min, s.Max)
	}
	if s.Value != nil {
		if (s.Min != nil && s.Value.Cmp(s.Min) < 0) || (s.Max != nil && s.Value.Cmp(s.Max) > 0) {
			return newError(ErrCodeInvalidConstant, path, "value %s outside range", s.Value)
		}
	}
	return nil
}

func validateDouble(s *Double, path string) error {
	for _, f := range []*float64{s.Min, s.Max} {
		if f != nil && math.IsNaN(*f) {
			return newError(ErrCodeInvalidRange, path, "NaN bound")
		}
	}
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return newError(ErrCodeInvalidRange, path, "min %v > max %v", *s.Min, *s.Max)
	}
	if s.Value != nil && !inRange(*s.Value, s.Min, s.Max) {
		return newError(ErrCodeInvalidConstant, path, "value %v outside range", *s.Value)
	}
	return nil
}

func validateString(s *String, path string) error {
	if err := validateLengths(s.MinLength, s.MaxLength, path); err != nil {
		return err
	}
	if s.Pattern != "" {
		if _, err := compilePattern(s.Pattern); err != nil {
			return newError(ErrCodeInvalidPattern, path, "pattern %q: %v", s.Pattern, err)
		}
	}
	if s.Value != nil {
		n := int64(len(*s.Value))
		if !inRange(n, s.MinLength, s.MaxLength) {
			return newError(ErrCodeInvalidConstant, path, "value %q has length %d outside range", *s.Value, n)
		}
		if re := s.Regexp(); re != nil && !re.MatchString(*s.Value) {
			return newError(ErrCodeInvalidConstant, path, "value %q does not match pattern", *s.Value)
		}
	}
	return nil
}

func validateLengths(min, max *int64, path string) error {
	if min != nil && *min < 0 {
		return newError(ErrCodeInvalidRange, path, "negative min length %d", *min)
	}
	if max != nil && *max < 0 {
		return newError(ErrCodeInvalidRange, path, "negative max length %d", *max)
	}
	if min != nil && max != nil && *min > *max {
		return newError(ErrCodeInvalidRange, path, "min length %d > max length %d", *min, *max)
	}
	return nil
}

func validateDate(s *Date, path string) error {
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return newError(ErrCodeInvalidRange, path, "min %d > max %d", *s.Min, *s.Max)
	}
	if s.Value != nil && !inRange(*s.Value, s.Min, s.Max) {
		return newError(ErrCodeInvalidConstant, path, "value %d outside range", *s.Value)
	}
	return nil
}

func validateArray(s *Array, path string) error {
	for i, h := range s.Head {
		if err := validate(h, fmt.Sprintf("%s.head[%d]", path, i)); err != nil {
			return err
		}
	}
	if s.Rest == nil {
		if s.MinRest != 0 || (s.MaxRest != nil && *s.MaxRest != 0) {
			return newError(ErrCodeInvalidRest, path, "repetition bounds require a rest schema")
		}
		return nil
	}
	if s.MinRest < 0 {
		return newError(ErrCodeInvalidRange, path, "negative minRest %d", s.MinRest)
	}
	if s.MaxRest != nil && *s.MaxRest < s.MinRest {
		return newError(ErrCodeInvalidRange, path, "minRest %d > maxRest %d", s.MinRest, *s.MaxRest)
	}
	return validate(s.Rest, path+".rest")
}

func validateRecord(s *Record, path string) error {
	for i, f := range s.Fields {
		fpath := fmt.Sprintf("%s.fields[%s]", path, f.Name)
		if i > 0 {
			switch c := value.CompareNames(s.Fields[i-1].Name, f.Name); {
			case c == 0:
				return newError(ErrCodeDuplicateField, fpath, "duplicate field %q", f.Name)
			case c > 0:
				return newError(ErrCodeUnsortedFields, fpath, "field %q out of order", f.Name)
			}
		}
		if err := validate(f.Schema, fpath); err != nil {
			return err
		}
	}
	if s.Rest != nil {
		return validate(s.Rest, path+".rest")
	}
	return nil
}

func validateOr(s *Or, path string) error {
	if len(s.Branches) == 0 {
		return newError(ErrCodeEmptyUnion, path, "union has no branches")
	}
	for i, b := range s.Branches {
		bpath := fmt.Sprintf("%s.or[%d]", path, i)
		if _, ok := b.(*Or); ok {
			return newError(ErrCodeNestedUnion, bpath, "union directly contains a union")
		}
		if err := validate(b, bpath); err != nil {
			return err
		}
	}
	return nil
}

type ordered interface {
	~int64 | ~float64
}

func inRange[T ordered](v T, min, max *T) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}
