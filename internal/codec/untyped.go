package codec

import (
	"bytes"
	"cmp"
	"strconv"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/jcodec/internal/value"
)

// untypedTags is the size of the tag space reserved for untyped values.
// Union branches are tagged from here on.
const untypedTags = 16

// maxDepth bounds the nesting of untyped containers read from input.
const maxDepth = 1000

// untyped encodes any value without a schema: the value kind as a uvarint
// tag followed by a kind-specific payload. Containers nest untyped values;
// record fields are written in name order. It holds no state.
type untyped struct{}

func (u untyped) write(out *Output, v value.Value) error {
	if v == nil {
		return mismatch("expected a value, got nothing")
	}
	out.WriteUvarint(uint64(v.Kind()))
	return u.writePayload(out, v)
}

func (u untyped) writePayload(out *Output, v value.Value) error {
	switch x := v.(type) {
	case value.Null:
	case value.Bool:
		return booleanCodec{}.write(out, x)
	case value.Long:
		out.WriteVarint(int64(x))
	case value.Decimal:
		writeDecimal(out, x.Apd())
	case value.Double:
		out.WriteFloat64(float64(x))
	case value.String:
		out.writeLenPrefixed([]byte(x))
	case value.Binary:
		out.writeLenPrefixed(x)
	case value.Date:
		out.WriteVarint(int64(x))
	case value.Array:
		out.WriteUvarint(uint64(len(x)))
		for i, e := range x {
			if err := u.write(out, e); err != nil {
				return atPath(err, index(i))
			}
		}
	case value.Record:
		keys := x.SortedKeys()
		out.WriteUvarint(uint64(len(keys)))
		for _, k := range keys {
			out.writeLenPrefixed([]byte(k))
			if err := u.write(out, x[k]); err != nil {
				return atPath(err, k)
			}
		}
	case value.Generic:
		return (&genericCodec{}).write(out, x)
	case value.SchemaValue:
		return schemaCodec{}.write(out, x)
	default:
		return mismatch("unsupported value %T", v)
	}
	return nil
}

func readKind(in *Input) (value.Kind, error) {
	tag, err := in.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if tag >= uint64(value.NumKinds) {
		return 0, &Error{Code: ErrCodeUnknownTag, Message: "unknown value tag " + itoa(tag)}
	}
	return value.Kind(tag), nil
}

func (u untyped) read(in *Input, _ value.Value) (value.Value, error) {
	return u.readValue(in, 0)
}

func (u untyped) readValue(in *Input, depth int) (value.Value, error) {
	k, err := readKind(in)
	if err != nil {
		return nil, err
	}
	return u.readPayload(in, k, depth)
}

func (u untyped) readPayload(in *Input, k value.Kind, depth int) (value.Value, error) {
	if depth > maxDepth {
		return nil, malformed("values nested deeper than %d", maxDepth)
	}
	switch k {
	case value.KindNull:
		return value.Null{}, nil
	case value.KindBool:
		return booleanCodec{}.read(in, nil)
	case value.KindLong:
		n, err := in.ReadVarint()
		if err != nil {
			return nil, err
		}
		return value.Long(n), nil
	case value.KindDecimal:
		d := new(apd.Decimal)
		if err := readDecimal(in, d); err != nil {
			return nil, err
		}
		return value.DecimalFromApd(d)
	case value.KindDouble:
		f, err := in.ReadFloat64()
		if err != nil {
			return nil, err
		}
		return value.Double(f), nil
	case value.KindString:
		b, err := in.readLenPrefixed()
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, malformed("string is not valid UTF-8")
		}
		return value.String(b), nil
	case value.KindBinary:
		b, err := in.readLenPrefixed()
		if err != nil {
			return nil, err
		}
		return value.Binary(bytes.Clone(b)), nil
	case value.KindDate:
		n, err := in.ReadVarint()
		if err != nil {
			return nil, err
		}
		return value.Date(n), nil
	case value.KindArray:
		n, err := in.readLen()
		if err != nil {
			return nil, err
		}
		arr := make(value.Array, 0, n)
		for i := 0; i < n; i++ {
			e, err := u.readValue(in, depth+1)
			if err != nil {
				return nil, atPath(err, index(i))
			}
			arr = append(arr, e)
		}
		return arr, nil
	case value.KindRecord:
		n, err := in.readLen()
		if err != nil {
			return nil, err
		}
		rec := make(value.Record, n)
		var prev string
		for i := 0; i < n; i++ {
			name, err := readName(in, prev, i == 0)
			if err != nil {
				return nil, err
			}
			e, err := u.readValue(in, depth+1)
			if err != nil {
				return nil, atPath(err, name)
			}
			rec[name] = e
			prev = name
		}
		return rec, nil
	case value.KindGeneric:
		return (&genericCodec{}).read(in, nil)
	case value.KindSchema:
		return schemaCodec{}.read(in, nil)
	}
	return nil, &Error{Code: ErrCodeUnknownTag, Message: "unknown value tag " + itoa(uint64(k))}
}

// readName reads a record field name that must sort strictly after prev.
func readName(in *Input, prev string, first bool) (string, error) {
	b, err := in.readLenPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", malformed("field name is not valid UTF-8")
	}
	name := string(b)
	if !first && value.CompareNames(prev, name) >= 0 {
		return "", malformed("field %q out of order", name)
	}
	return name, nil
}

func (u untyped) compare(a, b *Input) (int, error) {
	return u.compareValues(a, b, 0)
}

func (u untyped) compareValues(a, b *Input, depth int) (int, error) {
	ka, err := readKind(a)
	if err != nil {
		return 0, err
	}
	kb, err := readKind(b)
	if err != nil {
		return 0, err
	}
	return u.comparePayloads(a, b, ka, kb, depth)
}

// comparePayloads compares two payloads whose kind tags were already read.
func (u untyped) comparePayloads(a, b *Input, ka, kb value.Kind, depth int) (int, error) {
	if depth > maxDepth {
		return 0, malformed("values nested deeper than %d", maxDepth)
	}
	if ca, cb := value.ClassOf(ka), value.ClassOf(kb); ca != cb {
		return cmp.Compare(ca, cb), nil
	}
	if ka != kb {
		// Numbers of different kinds compare by value.
		x, err := u.readPayload(a, ka, depth)
		if err != nil {
			return 0, err
		}
		y, err := u.readPayload(b, kb, depth)
		if err != nil {
			return 0, err
		}
		return value.CompareNumbers(x, y), nil
	}

	switch ka {
	case value.KindNull:
		return 0, nil
	case value.KindBool:
		return booleanCodec{}.compare(a, b)
	case value.KindLong, value.KindDate:
		x, err := a.ReadVarint()
		if err != nil {
			return 0, err
		}
		y, err := b.ReadVarint()
		if err != nil {
			return 0, err
		}
		return cmp.Compare(x, y), nil
	case value.KindDecimal:
		var x, y apd.Decimal
		if err := readDecimal(a, &x); err != nil {
			return 0, err
		}
		if err := readDecimal(b, &y); err != nil {
			return 0, err
		}
		return x.Cmp(&y), nil
	case value.KindDouble:
		return (&doubleCodec{}).compare(a, b)
	case value.KindString, value.KindBinary:
		x, err := a.readLenPrefixed()
		if err != nil {
			return 0, err
		}
		y, err := b.readLenPrefixed()
		if err != nil {
			return 0, err
		}
		return bytes.Compare(x, y), nil
	case value.KindArray:
		na, err := a.readLen()
		if err != nil {
			return 0, err
		}
		nb, err := b.readLen()
		if err != nil {
			return 0, err
		}
		for i := 0; i < min(na, nb); i++ {
			if r, err := u.compareValues(a, b, depth+1); err != nil || r != 0 {
				return r, err
			}
		}
		// Shorter array compares greater.
		return cmp.Compare(nb, na), nil
	case value.KindRecord:
		na, err := a.readLen()
		if err != nil {
			return 0, err
		}
		nb, err := b.readLen()
		if err != nil {
			return 0, err
		}
		var pa, pb string
		for i := 0; i < min(na, nb); i++ {
			if pa, err = readName(a, pa, i == 0); err != nil {
				return 0, err
			}
			if pb, err = readName(b, pb, i == 0); err != nil {
				return 0, err
			}
			if r := value.CompareNames(pa, pb); r != 0 {
				// The record holding the smaller name is greater.
				return -r, nil
			}
			if r, err := u.compareValues(a, b, depth+1); err != nil || r != 0 {
				return r, err
			}
		}
		return cmp.Compare(na, nb), nil
	case value.KindGeneric:
		return (&genericCodec{}).compare(a, b)
	case value.KindSchema:
		return schemaCodec{}.compare(a, b)
	}
	return 0, &Error{Code: ErrCodeUnknownTag, Message: "unknown value tag " + itoa(uint64(ka))}
}

func (u untyped) skip(in *Input) error {
	_, err := u.readValue(in, 0)
	return err
}

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }
