package codec

import (
	"bytes"
	"unicode/utf8"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// bytesCodec writes the length minus the minimum (omitted when the length is
// fixed) followed by the raw bytes. Strings and binaries share it.
type bytesCodec struct {
	minLen, maxLen *int64
	match          schema.Schema
	kind           value.Kind
}

func newStringCodec(s *schema.String) *bytesCodec {
	return &bytesCodec{minLen: s.MinLength, maxLen: s.MaxLength, match: s, kind: value.KindString}
}

func newBinaryCodec(s *schema.Binary) *bytesCodec {
	return &bytesCodec{minLen: s.MinLength, maxLen: s.MaxLength, match: s, kind: value.KindBinary}
}

func (c *bytesCodec) fixed() bool {
	return c.minLen != nil && c.maxLen != nil && *c.minLen == *c.maxLen
}

func (c *bytesCodec) base() int64 {
	if c.minLen == nil {
		return 0
	}
	return *c.minLen
}

func (c *bytesCodec) write(out *Output, v value.Value) error {
	var b []byte
	switch x := v.(type) {
	case value.String:
		if c.kind != value.KindString {
			return mismatch("expected %s, got string", c.kind)
		}
		b = []byte(x)
	case value.Binary:
		if c.kind != value.KindBinary {
			return mismatch("expected %s, got binary", c.kind)
		}
		b = x
	default:
		return mismatch("expected %s, got %s", c.kind, kindName(v))
	}
	if !schema.Matches(c.match, v) {
		return mismatch("%s does not satisfy %s", c.kind, schema.Format(c.match))
	}
	if !c.fixed() {
		out.WriteUvarint(uint64(int64(len(b)) - c.base()))
	}
	out.WriteBytes(b)
	return nil
}

func (c *bytesCodec) readRaw(in *Input) ([]byte, error) {
	n := c.base()
	if !c.fixed() {
		d, err := in.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if d > uint64(in.Remaining()) {
			return nil, truncated()
		}
		n += int64(d)
	}
	if c.maxLen != nil && n > *c.maxLen {
		return nil, malformed("%s length %d above maximum %d", c.kind, n, *c.maxLen)
	}
	return in.ReadBytes(int(n))
}

func (c *bytesCodec) read(in *Input, target value.Value) (value.Value, error) {
	b, err := c.readRaw(in)
	if err != nil {
		return nil, err
	}
	if c.kind == value.KindString {
		if !utf8.Valid(b) {
			return nil, malformed("string is not valid UTF-8")
		}
		return value.String(b), nil
	}
	// Reuse the target's memory when it is a binary.
	buf, _ := target.(value.Binary)
	return append(buf[:0], b...), nil
}

func (c *bytesCodec) compare(a, b *Input) (int, error) {
	x, err := c.readRaw(a)
	if err != nil {
		return 0, err
	}
	y, err := c.readRaw(b)
	if err != nil {
		return 0, err
	}
	return bytes.Compare(x, y), nil
}

func (c *bytesCodec) skip(in *Input) error {
	_, err := c.readRaw(in)
	return err
}
