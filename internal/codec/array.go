package codec

import (
	"cmp"
	"strconv"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// arrayCodec writes the head elements, the rest count minus MinRest (omitted
// when the length is fixed) and then the rest elements.
type arrayCodec struct {
	schema  *schema.Array
	head    []coder
	rest    coder
	minRest int64
	maxRest *int64
}

func (c *arrayCodec) fixed() bool { return c.schema.IsFixed() }

func (c *arrayCodec) write(out *Output, v value.Value) error {
	arr, ok := v.(value.Array)
	if !ok {
		return mismatch("expected array, got %s", kindName(v))
	}
	if len(arr) < len(c.head) {
		return mismatch("array has %d elements, want at least %d", len(arr), len(c.head))
	}
	n := int64(len(arr) - len(c.head))
	if c.rest == nil && n > 0 {
		return mismatch("array has %d elements, want %d", len(arr), len(c.head))
	}
	if n < c.minRest || (c.maxRest != nil && n > *c.maxRest) {
		return mismatch("array has %d trailing elements outside %s", n, schema.Format(c.schema))
	}

	for i, h := range c.head {
		if err := h.write(out, arr[i]); err != nil {
			return atPath(err, index(i))
		}
	}
	if c.rest == nil {
		return nil
	}
	if !c.fixed() {
		out.WriteUvarint(uint64(n - c.minRest))
	}
	for i := len(c.head); i < len(arr); i++ {
		if err := c.rest.write(out, arr[i]); err != nil {
			return atPath(err, index(i))
		}
	}
	return nil
}

// restCount reads the number of trailing elements.
func (c *arrayCodec) restCount(in *Input) (int, error) {
	if c.rest == nil {
		return 0, nil
	}
	if c.fixed() {
		return int(c.minRest), nil
	}
	d, err := in.ReadUvarint()
	if err != nil {
		return 0, err
	}
	// Constant elements occupy no bytes, so the count is not bounded by the input.
	limit := uint64(maxElements)
	if c.maxRest != nil {
		limit = uint64(*c.maxRest - c.minRest)
	}
	if d > limit {
		return 0, malformed("array count %d out of range", d)
	}
	return int(c.minRest + int64(d)), nil
}

// maxElements bounds decoded container sizes.
const maxElements = 1 << 28

func (c *arrayCodec) read(in *Input, target value.Value) (value.Value, error) {
	old, _ := target.(value.Array)
	out := old[:0]
	for i, h := range c.head {
		e, err := h.read(in, elemAt(old, i))
		if err != nil {
			return nil, atPath(err, index(i))
		}
		out = append(out, e)
	}
	n, err := c.restCount(in)
	if err != nil {
		return nil, err
	}
	for i := len(c.head); i < len(c.head)+n; i++ {
		e, err := c.rest.read(in, elemAt(old, i))
		if err != nil {
			return nil, atPath(err, index(i))
		}
		out = append(out, e)
	}
	clear(out[len(out):cap(out)])
	if out == nil {
		out = value.Array{}
	}
	return out, nil
}

func elemAt(arr value.Array, i int) value.Value {
	if i < len(arr) {
		return arr[i]
	}
	return nil
}

func (c *arrayCodec) compare(a, b *Input) (int, error) {
	for _, h := range c.head {
		if r, err := h.compare(a, b); err != nil || r != 0 {
			return r, err
		}
	}
	na, err := c.restCount(a)
	if err != nil {
		return 0, err
	}
	nb, err := c.restCount(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < min(na, nb); i++ {
		if r, err := c.rest.compare(a, b); err != nil || r != 0 {
			return r, err
		}
	}
	// Shorter array compares greater.
	return cmp.Compare(nb, na), nil
}

func (c *arrayCodec) skip(in *Input) error {
	for _, h := range c.head {
		if err := h.skip(in); err != nil {
			return err
		}
	}
	n, err := c.restCount(in)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := c.rest.skip(in); err != nil {
			return err
		}
	}
	return nil
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
