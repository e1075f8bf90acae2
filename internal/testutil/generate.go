package testutil

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp/syntax"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// Generator produces pseudo-random values matching a schema. The same seed
// yields the same sequence of values, so failures are reproducible.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// maxAttempts bounds retries for strings that must satisfy both a pattern
// and a length range.
const maxAttempts = 100

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Value returns a value matching s.
func (g *Generator) Value(s schema.Schema) (value.Value, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen(s, 0)
}

// Values returns n values matching s.
func (g *Generator) Values(s schema.Schema, n int) ([]value.Value, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]value.Value, 0, n)
	for range n {
		v, err := g.gen(s, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// MustValues is like Values but panics on error.
// Use only in tests.
func (g *Generator) MustValues(s schema.Schema, n int) []value.Value {
	vs, err := g.Values(s, n)
	if err != nil {
		panic(err)
	}
	return vs
}

func (g *Generator) gen(s schema.Schema, depth int) (value.Value, error) {
	if v, ok := schema.Constant(s); ok {
		return v, nil
	}

	switch s := s.(type) {
	case *schema.Any:
		return g.any(depth), nil
	case *schema.Boolean:
		return value.Bool(g.rnd.IntN(2) == 1), nil
	case *schema.Long:
		return value.Long(g.int64In(s.Min, s.Max, -1000, 1000)), nil
	case *schema.Decimal:
		return g.decimal(s)
	case *schema.Double:
		return value.Double(g.double(s)), nil
	case *schema.String:
		return g.string(s)
	case *schema.Binary:
		n := g.int64In(s.MinLength, s.MaxLength, 0, 8)
		b := make(value.Binary, n)
		for i := range b {
			b[i] = byte(g.rnd.IntN(256))
		}
		return b, nil
	case *schema.Date:
		var lo, hi *int64
		if s.Min != nil {
			lo = schema.Ptr(int64(*s.Min))
		}
		if s.Max != nil {
			hi = schema.Ptr(int64(*s.Max))
		}
		return value.Date(g.int64In(lo, hi, 1_600_000_000_000, 1_800_000_000_000)), nil
	case *schema.Array:
		return g.array(s, depth)
	case *schema.Record:
		return g.record(s, depth)
	case *schema.Or:
		return g.gen(s.Branches[g.rnd.IntN(len(s.Branches))], depth)
	case *schema.Generic:
		typ := s.Type
		if typ == "" {
			typ = []string{"point", "uuid"}[g.rnd.IntN(2)]
		}
		payload := make([]byte, g.rnd.IntN(4))
		for i := range payload {
			payload[i] = byte(g.rnd.IntN(256))
		}
		return value.Generic{Type: typ, Payload: payload}, nil
	case *schema.SchemaType:
		inner := []schema.Schema{schema.LongSchema, schema.StringSchema, schema.ArrayOf(schema.BooleanSchema)}
		return schema.NewValue(inner[g.rnd.IntN(len(inner))])
	}
	return nil, fmt.Errorf("generate: unsupported schema %s", schema.Format(s))
}

// int64In picks an integer in [min, max]. Missing bounds default to
// defLo and defHi, shifted next to the present bound.
func (g *Generator) int64In(min, max *int64, defLo, defHi int64) int64 {
	lo, hi := defLo, defHi
	width := uint64(defHi - defLo)
	switch {
	case min != nil && max != nil:
		lo, hi = *min, *max
	case min != nil:
		lo = *min
		hi = saturatingAdd(lo, width)
	case max != nil:
		hi = *max
		lo = saturatingSub(hi, width)
	}
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int64(g.rnd.Uint64())
	}
	return int64(uint64(lo) + g.rnd.Uint64N(span+1))
}

func saturatingAdd(n int64, d uint64) int64 {
	if uint64(math.MaxInt64-n) < d {
		return math.MaxInt64
	}
	return n + int64(d)
}

func saturatingSub(n int64, d uint64) int64 {
	if uint64(n-math.MinInt64) < d {
		return math.MinInt64
	}
	return n - int64(d)
}

// decimal picks a bound, or a hundredths value near the declared bound.
func (g *Generator) decimal(s *schema.Decimal) (value.Value, error) {
	ctx := value.DecimalContext
	step := apd.New(int64(g.rnd.IntN(10_000)), -2)
	d := new(apd.Decimal)
	var err error
	switch {
	case s.Min != nil && s.Max != nil:
		switch g.rnd.IntN(3) {
		case 0:
			d.Set(s.Min)
		case 1:
			d.Set(s.Max)
		default:
			if _, err = ctx.Add(d, s.Min, s.Max); err == nil {
				_, err = ctx.Quo(d, d, apd.New(2, 0))
			}
		}
	case s.Min != nil:
		_, err = ctx.Add(d, s.Min, step)
	case s.Max != nil:
		_, err = ctx.Sub(d, s.Max, step)
	default:
		d.Set(step)
		d.Negative = g.rnd.IntN(2) == 1 && !d.IsZero()
	}
	if err != nil {
		return nil, fmt.Errorf("generate decimal: %w", err)
	}
	return value.DecimalFromApd(d)
}

func (g *Generator) double(s *schema.Double) float64 {
	lo, hi := -1e6, 1e6
	if s.Min != nil {
		if math.IsInf(*s.Min, 1) {
			return *s.Min
		}
		if !math.IsInf(*s.Min, -1) {
			lo = *s.Min
			if s.Max == nil {
				hi = lo + 1e6
			}
		}
	}
	if s.Max != nil {
		if math.IsInf(*s.Max, -1) {
			return *s.Max
		}
		if !math.IsInf(*s.Max, 1) {
			hi = *s.Max
			if s.Min == nil || math.IsInf(*s.Min, -1) {
				lo = hi - 1e6
			}
		}
	}
	r := g.rnd.Float64()
	f := lo*(1-r) + hi*r
	return math.Min(math.Max(f, lo), hi)
}

func (g *Generator) string(s *schema.String) (value.Value, error) {
	minLen := int64(0)
	if s.MinLength != nil {
		minLen = *s.MinLength
	}
	if s.Pattern == "" {
		n := g.int64In(s.MinLength, s.MaxLength, 0, 12)
		var b strings.Builder
		for range n {
			b.WriteByte(byte('a' + g.rnd.IntN(26)))
		}
		return value.String(b.String()), nil
	}

	re, err := syntax.Parse(s.Pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("generate string: %w", err)
	}
	re = re.Simplify()
	for range maxAttempts {
		var b strings.Builder
		g.regexp(re, &b)
		str := b.String()
		n := int64(len(str))
		if n >= minLen && (s.MaxLength == nil || n <= *s.MaxLength) && schema.Matches(s, value.String(str)) {
			return value.String(str), nil
		}
	}
	return nil, fmt.Errorf("generate string: no match for %s after %d attempts", schema.Format(s), maxAttempts)
}

// regexp writes a random string matched by re.
func (g *Generator) regexp(re *syntax.Regexp, b *strings.Builder) {
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			b.WriteRune(r)
		}
	case syntax.OpCharClass:
		if len(re.Rune) == 0 {
			return
		}
		i := 2 * g.rnd.IntN(len(re.Rune)/2)
		lo, hi := re.Rune[i], re.Rune[i+1]
		hi = min(hi, lo+64)
		r := lo + rune(g.rnd.IntN(int(hi-lo)+1))
		if !utf8.ValidRune(r) {
			r = lo
		}
		b.WriteRune(r)
	case syntax.OpAnyCharNotNL, syntax.OpAnyChar:
		b.WriteByte(byte('a' + g.rnd.IntN(26)))
	case syntax.OpCapture:
		g.regexp(re.Sub[0], b)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			g.regexp(sub, b)
		}
	case syntax.OpAlternate:
		g.regexp(re.Sub[g.rnd.IntN(len(re.Sub))], b)
	case syntax.OpStar:
		g.repeat(re.Sub[0], 0, 4, b)
	case syntax.OpPlus:
		g.repeat(re.Sub[0], 1, 4, b)
	case syntax.OpQuest:
		g.repeat(re.Sub[0], 0, 1, b)
	case syntax.OpRepeat:
		hi := re.Max
		if hi < 0 {
			hi = re.Min + 4
		}
		g.repeat(re.Sub[0], re.Min, hi, b)
	}
}

func (g *Generator) repeat(re *syntax.Regexp, lo, hi int, b *strings.Builder) {
	n := lo + g.rnd.IntN(hi-lo+1)
	for range n {
		g.regexp(re, b)
	}
}

func (g *Generator) array(s *schema.Array, depth int) (value.Value, error) {
	arr := make(value.Array, 0, len(s.Head))
	for _, h := range s.Head {
		v, err := g.gen(h, depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if s.Rest == nil {
		return arr, nil
	}
	n := g.int64In(&s.MinRest, s.MaxRest, 0, 4)
	for range n {
		v, err := g.gen(s.Rest, depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func (g *Generator) record(s *schema.Record, depth int) (value.Value, error) {
	rec := make(value.Record, len(s.Fields))
	for _, f := range s.Fields {
		if f.Optional && g.rnd.IntN(2) == 0 {
			continue
		}
		v, err := g.gen(f.Schema, depth+1)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	if s.Rest == nil {
		return rec, nil
	}
	for i := range g.rnd.IntN(3) {
		name := fmt.Sprintf("x%d", i)
		if _, ok := s.Field(name); ok {
			continue
		}
		v, err := g.gen(s.Rest, depth+1)
		if err != nil {
			return nil, err
		}
		rec[name] = v
	}
	return rec, nil
}

// any returns a value of a random kind, with containers only near the top.
func (g *Generator) any(depth int) value.Value {
	kinds := 8
	if depth < 2 {
		kinds = 10
	}
	switch g.rnd.IntN(kinds) {
	case 0:
		return value.Null{}
	case 1:
		return value.Bool(g.rnd.IntN(2) == 1)
	case 2:
		return value.Long(g.rnd.Int64N(2000) - 1000)
	case 3:
		return value.Double(math.Round(g.rnd.NormFloat64()*1000) / 8)
	case 4:
		return value.DecimalFromInt64(g.rnd.Int64N(100))
	case 5:
		return value.String([]string{"", "a", "b", "ab", "zz"}[g.rnd.IntN(5)])
	case 6:
		return value.Binary{byte(g.rnd.IntN(4))}
	case 7:
		return value.Date(g.rnd.Int64N(1_000_000))
	case 8:
		arr := make(value.Array, g.rnd.IntN(3))
		for i := range arr {
			arr[i] = g.any(depth + 1)
		}
		return arr
	default:
		rec := make(value.Record)
		for range g.rnd.IntN(3) {
			rec[[]string{"a", "b", "c"}[g.rnd.IntN(3)]] = g.any(depth + 1)
		}
		return rec
	}
}
