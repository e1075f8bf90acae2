package codec

import (
	"cmp"
	"fmt"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// coder is the contract shared by every codec. Compare reads one encoded
// value from each input; after a non-zero result or an error the inputs are
// left mid-value.
type coder interface {
	write(out *Output, v value.Value) error
	read(in *Input, target value.Value) (value.Value, error)
	compare(a, b *Input) (int, error)
	skip(in *Input) error
}

// Codec encodes values of one schema. Unions are multiplexed with a uvarint
// tag: tags below 16 carry an untyped value of that kind (null, or anything
// when the union admits any), tags from 16 on select a branch.
//
// A Codec keeps scratch buffers and is not safe for concurrent use.
type Codec struct {
	schema schema.Schema

	// single is set when no tag is written.
	single coder

	branches      []coder
	branchSchemas []schema.Schema
	branchClass   []value.Class
	classKnown    []bool
	candidates    [value.NumKinds][]int
	matchesNull   bool
	matchesAny    bool
}

// Schema returns the schema the codec was built for.
func (c *Codec) Schema() schema.Schema { return c.schema }

// Write appends the encoding of v. On error the output is rolled back.
func (c *Codec) Write(out *Output, v value.Value) error {
	start := out.Len()
	if err := c.write(out, v); err != nil {
		out.Truncate(start)
		return err
	}
	return nil
}

// Read decodes one value. A target of the same shape, usually the result of
// an earlier Read, lends its containers to the result.
func (c *Codec) Read(in *Input, target value.Value) (value.Value, error) {
	return c.read(in, target)
}

// Compare orders the next encoded values of a and b the way value.Compare
// orders the values themselves.
func (c *Codec) Compare(a, b *Input) (int, error) {
	return c.compare(a, b)
}

// Skip advances past one encoded value.
func (c *Codec) Skip(in *Input) error {
	return c.skip(in)
}

// Encode returns the encoding of v in a new slice.
func (c *Codec) Encode(v value.Value) ([]byte, error) {
	out := NewOutput(nil)
	if err := c.Write(out, v); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decode decodes data, which must hold exactly one value.
func (c *Codec) Decode(data []byte) (value.Value, error) {
	in := NewInput(data)
	v, err := c.Read(in, nil)
	if err != nil {
		return nil, err
	}
	if in.Remaining() != 0 {
		return nil, malformed("%d trailing bytes", in.Remaining())
	}
	return v, nil
}

// CompareBytes compares two encodings, each holding exactly one value.
func (c *Codec) CompareBytes(a, b []byte) (int, error) {
	ia, ib := NewInput(a), NewInput(b)
	r, err := c.Compare(ia, ib)
	if err != nil {
		return 0, err
	}
	if r == 0 && (ia.Remaining() != 0 || ib.Remaining() != 0) {
		return 0, malformed("trailing bytes after value")
	}
	return r, nil
}

// New validates s and builds a codec for it, sharing nothing with other codecs.
func New(s schema.Schema) (*Codec, error) {
	return NewFactory().Codec(s)
}

func (c *Codec) write(out *Output, v value.Value) error {
	if c.single != nil {
		return c.single.write(out, v)
	}
	if v == nil {
		return mismatch("expected a value, got nothing")
	}

	start := out.Len()
	var firstErr error
	cands := c.candidates[v.Kind()]
	for _, i := range cands {
		if len(cands) > 1 && !schema.Matches(c.branchSchemas[i], v) {
			continue
		}
		out.WriteUvarint(uint64(untypedTags + i))
		err := c.branches[i].write(out, v)
		if err == nil {
			return nil
		}
		out.Truncate(start)
		if !IsMismatch(err) {
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if c.matchesAny || (c.matchesNull && v.Kind() == value.KindNull) {
		return untyped{}.write(out, v)
	}
	if firstErr != nil {
		return firstErr
	}
	return mismatch("%s does not match %s", kindName(v), schema.Format(c.schema))
}

// readTag reads a union tag. Untyped tags are returned as a kind.
func (c *Codec) readTag(in *Input) (branch int, kind value.Kind, err error) {
	tag, err := in.ReadUvarint()
	if err != nil {
		return 0, 0, err
	}
	if tag >= untypedTags {
		i := tag - untypedTags
		if i >= uint64(len(c.branches)) {
			return 0, 0, &Error{Code: ErrCodeUnknownTag, Message: fmt.Sprintf("union tag %d has no branch", tag)}
		}
		return int(i), 0, nil
	}
	k := value.Kind(tag)
	if !k.Valid() || !(c.matchesAny || (c.matchesNull && k == value.KindNull)) {
		return 0, 0, &Error{Code: ErrCodeUnknownTag, Message: fmt.Sprintf("union tag %d not admitted by %s", tag, schema.Format(c.schema))}
	}
	return -1, k, nil
}

func (c *Codec) read(in *Input, target value.Value) (value.Value, error) {
	if c.single != nil {
		return c.single.read(in, target)
	}
	i, k, err := c.readTag(in)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return untyped{}.readPayload(in, k, 0)
	}
	return c.branches[i].read(in, target)
}

func (c *Codec) compare(a, b *Input) (int, error) {
	if c.single != nil {
		return c.single.compare(a, b)
	}
	ia, ka, err := c.readTag(a)
	if err != nil {
		return 0, err
	}
	ib, kb, err := c.readTag(b)
	if err != nil {
		return 0, err
	}

	switch {
	case ia < 0 && ib < 0:
		return untyped{}.comparePayloads(a, b, ka, kb, 0)
	case ia == ib:
		return c.branches[ia].compare(a, b)
	}

	// Different encodings: order by class when both are known, otherwise
	// decode both sides.
	ca, oka := c.classOf(ia, ka)
	cb, okb := c.classOf(ib, kb)
	if oka && okb && ca != cb {
		return cmp.Compare(ca, cb), nil
	}
	x, err := c.readBody(a, ia, ka)
	if err != nil {
		return 0, err
	}
	y, err := c.readBody(b, ib, kb)
	if err != nil {
		return 0, err
	}
	return value.Compare(x, y), nil
}

func (c *Codec) classOf(branch int, k value.Kind) (value.Class, bool) {
	if branch < 0 {
		return value.ClassOf(k), true
	}
	return c.branchClass[branch], c.classKnown[branch]
}

func (c *Codec) readBody(in *Input, branch int, k value.Kind) (value.Value, error) {
	if branch < 0 {
		return untyped{}.readPayload(in, k, 0)
	}
	return c.branches[branch].read(in, nil)
}

func (c *Codec) skip(in *Input) error {
	if c.single != nil {
		return c.single.skip(in)
	}
	i, k, err := c.readTag(in)
	if err != nil {
		return err
	}
	if i < 0 {
		_, err := untyped{}.readPayload(in, k, 0)
		return err
	}
	return c.branches[i].skip(in)
}
