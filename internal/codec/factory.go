package codec

import (
	"fmt"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// Factory builds codecs and caches them by schema fingerprint, so equal
// schemas, including equal sub-schemas of one tree, share a codec. Like the
// codecs it builds, a Factory is not safe for concurrent use: give each
// goroutine its own.
type Factory struct {
	codecs map[string]*Codec
	coders map[string]coder
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{
		codecs: make(map[string]*Codec),
		coders: make(map[string]coder),
	}
}

// Codec returns the codec for s, building it on first use.
func (f *Factory) Codec(s schema.Schema) (*Codec, error) {
	if err := schema.Validate(s); err != nil {
		return nil, err
	}
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return nil, err
	}
	if c, ok := f.codecs[fp]; ok {
		return c, nil
	}
	c, err := f.dispatcher(s)
	if err != nil {
		return nil, err
	}
	f.codecs[fp] = c
	return c, nil
}

// Len returns the number of distinct codecs built so far.
func (f *Factory) Len() int { return len(f.coders) + len(f.codecs) }

func (f *Factory) dispatcher(s schema.Schema) (*Codec, error) {
	comp := schema.Compact(s)
	c := &Codec{
		schema:      s,
		matchesNull: comp.MatchesNull,
		matchesAny:  comp.MatchesAny,
	}

	switch {
	case len(comp.Branches) == 0 && comp.MatchesAny:
		c.single = untyped{}
		return c, nil
	case len(comp.Branches) == 0:
		c.single = &constCodec{schema: schema.NullSchema, value: value.Null{}}
		return c, nil
	case comp.HasSingleOtherBranch && !comp.MatchesNull:
		bc, err := f.coder(comp.Branches[0])
		if err != nil {
			return nil, err
		}
		c.single = bc
		return c, nil
	}

	for i, b := range comp.Branches {
		bc, err := f.coder(b)
		if err != nil {
			return nil, err
		}
		c.branches = append(c.branches, bc)
		c.branchSchemas = append(c.branchSchemas, b)

		kinds := schema.Kinds(b)
		class, known := value.ClassOf(kinds[0]), true
		for _, k := range kinds {
			c.candidates[k] = append(c.candidates[k], i)
			if value.ClassOf(k) != class {
				known = false
			}
		}
		c.branchClass = append(c.branchClass, class)
		c.classKnown = append(c.classKnown, known)
	}
	return c, nil
}

// coder returns the cached codec for a sub-schema.
func (f *Factory) coder(s schema.Schema) (coder, error) {
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return nil, err
	}
	if c, ok := f.coders[fp]; ok {
		return c, nil
	}
	c, err := f.build(s)
	if err != nil {
		return nil, err
	}
	f.coders[fp] = c
	return c, nil
}

func (f *Factory) build(s schema.Schema) (coder, error) {
	if v, ok := schema.Constant(s); ok {
		return &constCodec{schema: s, value: v}, nil
	}

	switch s := s.(type) {
	case *schema.Any:
		return untyped{}, nil
	case *schema.Boolean:
		return booleanCodec{}, nil
	case *schema.Long:
		return newLongCodec(s), nil
	case *schema.Decimal:
		return &decimalCodec{schema: s}, nil
	case *schema.Double:
		return &doubleCodec{schema: s}, nil
	case *schema.String:
		return newStringCodec(s), nil
	case *schema.Binary:
		return newBinaryCodec(s), nil
	case *schema.Date:
		return newDateCodec(s), nil
	case *schema.Array:
		c := &arrayCodec{schema: s, minRest: s.MinRest, maxRest: s.MaxRest}
		for _, h := range s.Head {
			hc, err := f.coder(h)
			if err != nil {
				return nil, err
			}
			c.head = append(c.head, hc)
		}
		if s.Rest != nil {
			rc, err := f.coder(s.Rest)
			if err != nil {
				return nil, err
			}
			c.rest = rc
		}
		return c, nil
	case *schema.Record:
		return newRecordCodec(s, f.coder)
	case *schema.Generic:
		return &genericCodec{typ: s.Type}, nil
	case *schema.SchemaType:
		return schemaCodec{}, nil
	case *schema.Or:
		return f.dispatcher(s)
	}
	return nil, fmt.Errorf("no codec for schema kind %s", s.Kind())
}
