package codec

import (
	"cmp"
	"slices"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

type recordField struct {
	name     string
	coder    coder
	optional bool
	bit      int // index in the presence bitset; -1 when required
}

// recordCodec writes a record as:
//
//	[count of additional fields, then (name, value) for each]  only with a rest schema
//	presence bitset of the optional fields, (n+7)/8 bytes
//	values of the present schema fields, in field order
//
// Additional fields are written in name order. Scratch buffers make the codec
// unsafe for concurrent use.
type recordCodec struct {
	schema *schema.Record
	fields []recordField
	nOpt   int
	rest   coder

	keys   []string
	extras []string
	sides  [2]recordSide
}

// recordSide is the decoded layout of one operand of compare.
type recordSide struct {
	names []string
	spans [][2]int
	bits  []byte
}

func newRecordCodec(s *schema.Record, field func(schema.Schema) (coder, error)) (*recordCodec, error) {
	c := &recordCodec{schema: s}
	for _, f := range s.Fields {
		fc, err := field(f.Schema)
		if err != nil {
			return nil, err
		}
		rf := recordField{name: f.Name, coder: fc, optional: f.Optional, bit: -1}
		if f.Optional {
			rf.bit = c.nOpt
			c.nOpt++
		}
		c.fields = append(c.fields, rf)
	}
	if s.Rest != nil {
		rc, err := field(s.Rest)
		if err != nil {
			return nil, err
		}
		c.rest = rc
	}
	return c, nil
}

func (c *recordCodec) bitsetLen() int { return (c.nOpt + 7) / 8 }

func (c *recordCodec) write(out *Output, v value.Value) error {
	rec, ok := v.(value.Record)
	if !ok {
		return mismatch("expected record, got %s", kindName(v))
	}

	c.keys = rec.AppendSortedKeys(c.keys[:0])
	c.extras = c.extras[:0]
	j := 0
	for _, f := range c.fields {
		for j < len(c.keys) && value.CompareNames(c.keys[j], f.name) < 0 {
			c.extras = append(c.extras, c.keys[j])
			j++
		}
		if j < len(c.keys) && c.keys[j] == f.name {
			j++
			continue
		}
		if !f.optional {
			return &Error{Code: ErrCodeMissingField, Message: "missing required field " + f.name, Path: f.name}
		}
	}
	c.extras = append(c.extras, c.keys[j:]...)

	if c.rest == nil {
		if len(c.extras) > 0 {
			name := c.extras[0]
			return &Error{Code: ErrCodeUnexpectedField, Message: "unexpected field " + name, Path: name}
		}
	} else {
		out.WriteUvarint(uint64(len(c.extras)))
		for _, name := range c.extras {
			out.writeLenPrefixed([]byte(name))
			if err := c.rest.write(out, rec[name]); err != nil {
				return atPath(err, name)
			}
		}
	}

	if c.nOpt > 0 {
		start := out.Len()
		for range c.bitsetLen() {
			out.writeByte(0)
		}
		bits := out.Bytes()[start:]
		for _, f := range c.fields {
			if _, ok := rec[f.name]; ok && f.optional {
				bits[f.bit/8] |= 1 << (f.bit % 8)
			}
		}
	}

	for _, f := range c.fields {
		fv, ok := rec[f.name]
		if !ok {
			continue
		}
		if err := f.coder.write(out, fv); err != nil {
			return atPath(err, f.name)
		}
	}
	return nil
}

func present(bits []byte, f recordField) bool {
	return !f.optional || bits[f.bit/8]&(1<<(f.bit%8)) != 0
}

// readExtraName reads an additional field name, which must sort strictly
// after prev and must not name a schema field.
func (c *recordCodec) readExtraName(in *Input, prev string, first bool) (string, error) {
	name, err := readName(in, prev, first)
	if err != nil {
		return "", err
	}
	if _, ok := c.schema.Field(name); ok {
		return "", malformed("additional field %q shadows a schema field", name)
	}
	return name, nil
}

func (c *recordCodec) extraCount(in *Input) (int, error) {
	if c.rest == nil {
		return 0, nil
	}
	n, err := in.readLen()
	if err != nil {
		return 0, err
	}
	if n > maxElements {
		return 0, malformed("record with %d additional fields", n)
	}
	return n, nil
}

func (c *recordCodec) readBits(in *Input) ([]byte, error) {
	bits, err := in.ReadBytes(c.bitsetLen())
	if err != nil {
		return nil, err
	}
	if pad := c.nOpt % 8; pad != 0 && bits[len(bits)-1]>>pad != 0 {
		return nil, malformed("presence bitset has stray bits")
	}
	return bits, nil
}

func (c *recordCodec) read(in *Input, target value.Value) (value.Value, error) {
	out, _ := target.(value.Record)
	if out == nil {
		out = make(value.Record, len(c.fields))
	}

	n, err := c.extraCount(in)
	if err != nil {
		return nil, err
	}
	var extras []string
	for i := 0; i < n; i++ {
		var prev string
		if i > 0 {
			prev = extras[i-1]
		}
		name, err := c.readExtraName(in, prev, i == 0)
		if err != nil {
			return nil, err
		}
		v, err := c.rest.read(in, out[name])
		if err != nil {
			return nil, atPath(err, name)
		}
		out[name] = v
		extras = append(extras, name)
	}

	bits, err := c.readBits(in)
	if err != nil {
		return nil, err
	}
	assigned := len(extras)
	for _, f := range c.fields {
		if !present(bits, f) {
			continue
		}
		v, err := f.coder.read(in, out[f.name])
		if err != nil {
			return nil, atPath(err, f.name)
		}
		out[f.name] = v
		assigned++
	}

	// Drop whatever the target held beyond the decoded fields.
	if len(out) > assigned {
		for k := range out {
			if i, ok := slices.BinarySearchFunc(c.fields, k, compareFieldName); ok {
				if present(bits, c.fields[i]) {
					continue
				}
			} else if _, ok := slices.BinarySearchFunc(extras, k, value.CompareNames); ok {
				continue
			}
			delete(out, k)
		}
	}
	return out, nil
}

func compareFieldName(f recordField, name string) int {
	return value.CompareNames(f.name, name)
}

// scan reads the additional fields and the presence bitset of one operand,
// leaving in at the first schema field value.
func (c *recordCodec) scan(in *Input, side *recordSide) error {
	side.names = side.names[:0]
	side.spans = side.spans[:0]
	n, err := c.extraCount(in)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		var prev string
		if i > 0 {
			prev = side.names[i-1]
		}
		name, err := c.readExtraName(in, prev, i == 0)
		if err != nil {
			return err
		}
		start := in.Offset()
		if err := c.rest.skip(in); err != nil {
			return err
		}
		side.names = append(side.names, name)
		side.spans = append(side.spans, [2]int{start, in.Offset()})
	}
	side.bits, err = c.readBits(in)
	return err
}

// recordCursor walks the keys of one operand in name order, merging the
// present schema fields with the additional fields.
type recordCursor struct {
	c     *recordCodec
	side  *recordSide
	field int
	extra int
}

func (r *recordCursor) skipAbsent() {
	for r.field < len(r.c.fields) && !present(r.side.bits, r.c.fields[r.field]) {
		r.field++
	}
}

// next returns the next key, whether it is a schema field, and false once
// the keys are exhausted.
func (r *recordCursor) next() (name string, isField bool, ok bool) {
	r.skipAbsent()
	hasField := r.field < len(r.c.fields)
	hasExtra := r.extra < len(r.side.names)
	switch {
	case hasField && hasExtra:
		fn, en := r.c.fields[r.field].name, r.side.names[r.extra]
		if value.CompareNames(fn, en) < 0 {
			return fn, true, true
		}
		return en, false, true
	case hasField:
		return r.c.fields[r.field].name, true, true
	case hasExtra:
		return r.side.names[r.extra], false, true
	}
	return "", false, false
}

func (c *recordCodec) compare(a, b *Input) (int, error) {
	sa, sb := &c.sides[0], &c.sides[1]
	if err := c.scan(a, sa); err != nil {
		return 0, err
	}
	if err := c.scan(b, sb); err != nil {
		return 0, err
	}

	ca := recordCursor{c: c, side: sa}
	cb := recordCursor{c: c, side: sb}
	for {
		na, fa, oka := ca.next()
		nb, _, okb := cb.next()
		if !oka || !okb {
			return cmp.Compare(boolRank(oka), boolRank(okb)), nil
		}
		if r := value.CompareNames(na, nb); r != 0 {
			// The record holding the smaller name is greater.
			return -r, nil
		}
		if fa {
			r, err := c.fields[ca.field].coder.compare(a, b)
			if err != nil || r != 0 {
				return r, err
			}
			ca.field++
			cb.field++
			continue
		}
		spa, spb := sa.spans[ca.extra], sb.spans[cb.extra]
		r, err := c.rest.compare(a.sub(spa[0], spa[1]), b.sub(spb[0], spb[1]))
		if err != nil || r != 0 {
			return r, err
		}
		ca.extra++
		cb.extra++
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *recordCodec) skip(in *Input) error {
	n, err := c.extraCount(in)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := in.readLenPrefixed(); err != nil {
			return err
		}
		if err := c.rest.skip(in); err != nil {
			return err
		}
	}
	bits, err := c.readBits(in)
	if err != nil {
		return err
	}
	for _, f := range c.fields {
		if !present(bits, f) {
			continue
		}
		if err := f.coder.skip(in); err != nil {
			return err
		}
	}
	return nil
}
