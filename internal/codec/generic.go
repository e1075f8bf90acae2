package codec

import (
	"bytes"
	"cmp"
	"unicode/utf8"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// genericCodec writes the type name (unless the schema fixes it) and the
// length-prefixed payload.
type genericCodec struct {
	typ string
}

func (c *genericCodec) write(out *Output, v value.Value) error {
	g, ok := v.(value.Generic)
	if !ok {
		return mismatch("expected generic, got %s", kindName(v))
	}
	if c.typ == "" {
		out.writeLenPrefixed([]byte(g.Type))
	} else if g.Type != c.typ {
		return mismatch("expected generic<%s>, got generic<%s>", c.typ, g.Type)
	}
	out.writeLenPrefixed(g.Payload)
	return nil
}

func (c *genericCodec) readType(in *Input) (string, error) {
	if c.typ != "" {
		return c.typ, nil
	}
	b, err := in.readLenPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", malformed("generic type is not valid UTF-8")
	}
	return string(b), nil
}

func (c *genericCodec) read(in *Input, _ value.Value) (value.Value, error) {
	typ, err := c.readType(in)
	if err != nil {
		return nil, err
	}
	payload, err := in.readLenPrefixed()
	if err != nil {
		return nil, err
	}
	return value.Generic{Type: typ, Payload: bytes.Clone(payload)}, nil
}

func (c *genericCodec) compare(a, b *Input) (int, error) {
	ta, err := c.readType(a)
	if err != nil {
		return 0, err
	}
	tb, err := c.readType(b)
	if err != nil {
		return 0, err
	}
	if r := cmp.Compare(ta, tb); r != 0 {
		return r, nil
	}
	pa, err := a.readLenPrefixed()
	if err != nil {
		return 0, err
	}
	pb, err := b.readLenPrefixed()
	if err != nil {
		return 0, err
	}
	return bytes.Compare(pa, pb), nil
}

func (c *genericCodec) skip(in *Input) error {
	if _, err := c.readType(in); err != nil {
		return err
	}
	_, err := in.readLenPrefixed()
	return err
}

// schemaCodec writes a schema value as its length-prefixed schema document.
type schemaCodec struct{}

func (schemaCodec) write(out *Output, v value.Value) error {
	sv, ok := v.(value.SchemaValue)
	if !ok {
		return mismatch("expected schema, got %s", kindName(v))
	}
	out.writeLenPrefixed(sv.Doc())
	return nil
}

func (schemaCodec) read(in *Input, _ value.Value) (value.Value, error) {
	doc, err := in.readLenPrefixed()
	if err != nil {
		return nil, err
	}
	sv, err := schema.ValueFromDoc(bytes.Clone(doc))
	if err != nil {
		return nil, &Error{Code: ErrCodeMalformed, Message: "invalid schema document", Err: err}
	}
	return sv, nil
}

func (schemaCodec) compare(a, b *Input) (int, error) {
	da, err := a.readLenPrefixed()
	if err != nil {
		return 0, err
	}
	db, err := b.readLenPrefixed()
	if err != nil {
		return 0, err
	}
	return bytes.Compare(da, db), nil
}

func (schemaCodec) skip(in *Input) error {
	_, err := in.readLenPrefixed()
	return err
}
