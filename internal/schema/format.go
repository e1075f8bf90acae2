package schema

import (
	"strconv"
	"strings"

	"github.com/roach88/jcodec/internal/value"
)

// Format renders s on one line for diagnostics, e.g.
//
//	{id: long[0..], name: string, tags: [...string], note?: string | null}
func Format(s Schema) string {
	var b strings.Builder
	format(&b, s)
	return b.String()
}

func format(b *strings.Builder, s Schema) {
	switch s := s.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Boolean:
		b.WriteString("boolean")
		if s.Value != nil {
			b.WriteString("(=" + strconv.FormatBool(*s.Value) + ")")
		}
	case *Long:
		b.WriteString("long")
		if s.Value != nil {
			b.WriteString("(=" + strconv.FormatInt(*s.Value, 10) + ")")
			return
		}
		formatRange(b, s.Min, s.Max, func(n int64) string { return strconv.FormatInt(n, 10) })
	case *Decimal:
		b.WriteString("decimal")
		if s.Value != nil {
			b.WriteString("(=" + s.Value.String() + ")")
			return
		}
		if s.Min != nil || s.Max != nil {
			b.WriteByte('[')
			if s.Min != nil {
				b.WriteString(s.Min.String())
			}
			b.WriteString("..")
			if s.Max != nil {
				b.WriteString(s.Max.String())
			}
			b.WriteByte(']')
		}
	case *Double:
		b.WriteString("double")
		if s.Value != nil {
			b.WriteString("(=" + formatFloat(*s.Value) + ")")
			return
		}
		formatRange(b, s.Min, s.Max, formatFloat)
	case *String:
		b.WriteString("string")
		if s.Value != nil {
			b.WriteString("(=" + strconv.Quote(*s.Value) + ")")
			return
		}
		formatRange(b, s.MinLength, s.MaxLength, func(n int64) string { return strconv.FormatInt(n, 10) })
		if s.Pattern != "" {
			b.WriteString(" =~ " + strconv.Quote(s.Pattern))
		}
	case *Binary:
		b.WriteString("binary")
		formatRange(b, s.MinLength, s.MaxLength, func(n int64) string { return strconv.FormatInt(n, 10) })
	case *Date:
		b.WriteString("date")
		layout := func(d value.Date) string { return d.Time().Format(value.DateLayout) }
		if s.Value != nil {
			b.WriteString("(=" + layout(*s.Value) + ")")
			return
		}
		formatRange(b, s.Min, s.Max, layout)
	case *Array:
		formatArray(b, s)
	case *Record:
		formatRecord(b, s)
	case *Or:
		for i, br := range s.Branches {
			if i > 0 {
				b.WriteString(" | ")
			}
			format(b, br)
		}
	case *Generic:
		b.WriteString("generic")
		if s.Type != "" {
			b.WriteString("<" + s.Type + ">")
		}
	default:
		b.WriteString(s.Kind().String())
	}
}

func formatRange[T any](b *strings.Builder, min, max *T, str func(T) string) {
	if min == nil && max == nil {
		return
	}
	b.WriteByte('[')
	if min != nil {
		b.WriteString(str(*min))
	}
	b.WriteString("..")
	if max != nil {
		b.WriteString(str(*max))
	}
	b.WriteByte(']')
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatArray(b *strings.Builder, s *Array) {
	b.WriteByte('[')
	for i, h := range s.Head {
		if i > 0 {
			b.WriteString(", ")
		}
		format(b, h)
	}
	if s.Rest != nil {
		if len(s.Head) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
		format(b, s.Rest)
		if s.MinRest != 0 || s.MaxRest != nil {
			b.WriteString("{" + strconv.FormatInt(s.MinRest, 10) + ",")
			if s.MaxRest != nil {
				b.WriteString(strconv.FormatInt(*s.MaxRest, 10))
			}
			b.WriteByte('}')
		}
	}
	b.WriteByte(']')
}

func formatRecord(b *strings.Builder, s *Record) {
	b.WriteByte('{')
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		if f.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		format(b, f.Schema)
	}
	if s.Rest != nil {
		if len(s.Fields) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...: ")
		format(b, s.Rest)
	}
	b.WriteByte('}')
}
