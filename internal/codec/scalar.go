package codec

import (
	"cmp"
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// constCodec serves schemas matching a single value: nothing is written.
type constCodec struct {
	schema schema.Schema
	value  value.Value
}

func (c *constCodec) write(_ *Output, v value.Value) error {
	if !schema.Matches(c.schema, v) {
		return mismatch("expected constant %s, got %s", schema.Format(c.schema), kindName(v))
	}
	return nil
}

func (c *constCodec) read(*Input, value.Value) (value.Value, error) {
	return cloneValue(c.value), nil
}

func (c *constCodec) compare(_, _ *Input) (int, error) { return 0, nil }

func (c *constCodec) skip(*Input) error { return nil }

// cloneValue copies the mutable containers of v so callers may reuse the
// result as a read target.
func cloneValue(v value.Value) value.Value {
	switch x := v.(type) {
	case value.Array:
		out := make(value.Array, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case value.Record:
		out := make(value.Record, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case value.Binary:
		return append(value.Binary{}, x...)
	}
	return v
}

type booleanCodec struct{}

func (booleanCodec) write(out *Output, v value.Value) error {
	b, ok := v.(value.Bool)
	if !ok {
		return mismatch("expected boolean, got %s", kindName(v))
	}
	if b {
		out.writeByte(1)
	} else {
		out.writeByte(0)
	}
	return nil
}

func (booleanCodec) read(in *Input, _ value.Value) (value.Value, error) {
	b, err := in.ReadByte()
	if err != nil {
		return nil, err
	}
	if b > 1 {
		return nil, malformed("boolean byte %#x", b)
	}
	return value.Bool(b == 1), nil
}

func (booleanCodec) compare(a, b *Input) (int, error) {
	x, err := a.ReadByte()
	if err != nil {
		return 0, err
	}
	y, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	return cmp.Compare(x, y), nil
}

func (booleanCodec) skip(in *Input) error {
	_, err := in.ReadBytes(1)
	return err
}

// intCodec encodes 64-bit integers bounded by [min, max]. Without a minimum
// the value is a zig-zag varint; with one it is the unsigned distance from it.
// Longs and dates share it.
type intCodec struct {
	min, max *int64
	kind     value.Kind
}

func newLongCodec(s *schema.Long) *intCodec {
	return &intCodec{min: s.Min, max: s.Max, kind: value.KindLong}
}

func newDateCodec(s *schema.Date) *intCodec {
	c := &intCodec{kind: value.KindDate}
	if s.Min != nil {
		c.min = schema.Ptr(int64(*s.Min))
	}
	if s.Max != nil {
		c.max = schema.Ptr(int64(*s.Max))
	}
	return c
}

func (c *intCodec) toInt(v value.Value) (int64, bool) {
	if d, ok := v.(value.Date); ok {
		return int64(d), c.kind == value.KindDate
	}
	if c.kind != value.KindLong {
		return 0, false
	}
	return value.AsLong(v)
}

func (c *intCodec) fromInt(n int64) value.Value {
	if c.kind == value.KindDate {
		return value.Date(n)
	}
	return value.Long(n)
}

func (c *intCodec) write(out *Output, v value.Value) error {
	n, ok := c.toInt(v)
	if !ok {
		if c.kind == value.KindLong && v != nil && value.ClassOf(v.Kind()) == value.ClassNumber {
			return mismatch("%s is not a 64-bit integer", numberText(v))
		}
		return mismatch("expected %s, got %s", c.kind, kindName(v))
	}
	if (c.min != nil && n < *c.min) || (c.max != nil && n > *c.max) {
		return mismatch("%s %d out of range", c.kind, n)
	}
	if c.min != nil {
		out.WriteUvarint(uint64(n) - uint64(*c.min))
		return nil
	}
	out.WriteVarint(n)
	return nil
}

func (c *intCodec) readInt(in *Input) (int64, error) {
	if c.min == nil {
		n, err := in.ReadVarint()
		if err != nil {
			return 0, err
		}
		if c.max != nil && n > *c.max {
			return 0, malformed("%s %d above maximum", c.kind, n)
		}
		return n, nil
	}
	d, err := in.ReadUvarint()
	if err != nil {
		return 0, err
	}
	limit := uint64(math.MaxInt64) - uint64(*c.min)
	if c.max != nil {
		limit = uint64(*c.max) - uint64(*c.min)
	}
	if d > limit {
		return 0, malformed("%s offset %d out of range", c.kind, d)
	}
	return int64(uint64(*c.min) + d), nil
}

func (c *intCodec) read(in *Input, _ value.Value) (value.Value, error) {
	n, err := c.readInt(in)
	if err != nil {
		return nil, err
	}
	return c.fromInt(n), nil
}

func (c *intCodec) compare(a, b *Input) (int, error) {
	if c.min != nil {
		// Offsets from a shared minimum order like the values.
		x, err := a.ReadUvarint()
		if err != nil {
			return 0, err
		}
		y, err := b.ReadUvarint()
		if err != nil {
			return 0, err
		}
		return cmp.Compare(x, y), nil
	}
	x, err := c.readInt(a)
	if err != nil {
		return 0, err
	}
	y, err := c.readInt(b)
	if err != nil {
		return 0, err
	}
	return cmp.Compare(x, y), nil
}

func (c *intCodec) skip(in *Input) error {
	_, err := in.ReadUvarint()
	return err
}

// decimalCodec writes a decimal as its zig-zag exponent, a sign byte and the
// length-prefixed big-endian coefficient.
type decimalCodec struct {
	schema *schema.Decimal

	x, y apd.Decimal
}

func (c *decimalCodec) write(out *Output, v value.Value) error {
	d, ok := value.AsDecimal(v)
	if !ok {
		return mismatch("expected decimal, got %s", kindName(v))
	}
	if !schema.Matches(c.schema, d) {
		return mismatch("decimal %s out of range", d)
	}
	writeDecimal(out, d.Apd())
	return nil
}

func writeDecimal(out *Output, d *apd.Decimal) {
	out.WriteVarint(int64(d.Exponent))
	if d.Negative {
		out.writeByte(1)
	} else {
		out.writeByte(0)
	}
	out.writeLenPrefixed(d.Coeff.Bytes())
}

func readDecimal(in *Input, d *apd.Decimal) error {
	exp, err := in.ReadVarint()
	if err != nil {
		return err
	}
	if exp < math.MinInt32 || exp > math.MaxInt32 {
		return malformed("decimal exponent %d out of range", exp)
	}
	sign, err := in.ReadByte()
	if err != nil {
		return err
	}
	if sign > 1 {
		return malformed("decimal sign byte %#x", sign)
	}
	coeff, err := in.readLenPrefixed()
	if err != nil {
		return err
	}
	d.Form = apd.Finite
	d.Exponent = int32(exp)
	d.Negative = sign == 1
	d.Coeff.SetBytes(coeff)
	return nil
}

func skipDecimal(in *Input) error {
	if _, err := in.ReadVarint(); err != nil {
		return err
	}
	if _, err := in.ReadByte(); err != nil {
		return err
	}
	_, err := in.readLenPrefixed()
	return err
}

func (c *decimalCodec) read(in *Input, _ value.Value) (value.Value, error) {
	d := new(apd.Decimal)
	if err := readDecimal(in, d); err != nil {
		return nil, err
	}
	return value.DecimalFromApd(d)
}

func (c *decimalCodec) compare(a, b *Input) (int, error) {
	if err := readDecimal(a, &c.x); err != nil {
		return 0, err
	}
	if err := readDecimal(b, &c.y); err != nil {
		return 0, err
	}
	return c.x.Cmp(&c.y), nil
}

func (c *decimalCodec) skip(in *Input) error { return skipDecimal(in) }

// doubleCodec writes the eight IEEE 754 bytes of a double.
type doubleCodec struct {
	schema *schema.Double
}

func (c *doubleCodec) write(out *Output, v value.Value) error {
	f, ok := value.AsDouble(v)
	if !ok {
		if v != nil && value.ClassOf(v.Kind()) == value.ClassNumber {
			return mismatch("%s has no exact double", numberText(v))
		}
		return mismatch("expected double, got %s", kindName(v))
	}
	if !schema.Matches(c.schema, value.Double(f)) {
		return mismatch("double %v out of range", f)
	}
	out.WriteFloat64(f)
	return nil
}

func (c *doubleCodec) read(in *Input, _ value.Value) (value.Value, error) {
	f, err := in.ReadFloat64()
	if err != nil {
		return nil, err
	}
	return value.Double(f), nil
}

func (c *doubleCodec) compare(a, b *Input) (int, error) {
	x, err := a.ReadFloat64()
	if err != nil {
		return 0, err
	}
	y, err := b.ReadFloat64()
	if err != nil {
		return 0, err
	}
	return cmp.Compare(x, y), nil
}

func (c *doubleCodec) skip(in *Input) error {
	_, err := in.ReadBytes(8)
	return err
}

func numberText(v value.Value) string {
	if d, ok := value.Number(v); ok {
		return d.String()
	}
	return kindName(v)
}

func kindName(v value.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}
