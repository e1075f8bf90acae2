package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/jcodec/internal/value"
)

// DomainSchema prefixes schema fingerprints. The version suffix allows the
// document grammar to evolve.
const DomainSchema = "jcodec/schema/v1"

// MarshalDoc returns the schema document of s: deterministic JSON with
// sorted keys. Two schemas are equal exactly when their documents are.
func MarshalDoc(s Schema) ([]byte, error) {
	node, err := docNode(s)
	if err != nil {
		return nil, err
	}
	return value.MarshalJSON(node)
}

// Fingerprint identifies s by content: SHA256(domain + 0x00 + document),
// hex encoded.
func Fingerprint(s Schema) (string, error) {
	doc, err := MarshalDoc(s)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return fingerprintDoc(doc), nil
}

func fingerprintDoc(doc []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainSchema))
	h.Write([]byte{0x00})
	h.Write(doc)
	return hex.EncodeToString(h.Sum(nil))
}

func kindNode(k Kind) value.Value {
	return value.String(k.String())
}

func wrap(k Kind, params value.Value) value.Value {
	return value.Record{k.String(): params}
}

func docNode(s Schema) (value.Value, error) {
	switch s := s.(type) {
	case nil:
		return nil, newError(ErrCodeMalformed, "", "nil schema")
	case *Any, *Null, *SchemaType:
		return kindNode(s.Kind()), nil
	case *Boolean:
		if s.Value == nil {
			return kindNode(KindBoolean), nil
		}
		return wrap(KindBoolean, value.Record{"value": value.Bool(*s.Value)}), nil
	case *Long:
		p := value.Record{}
		putInt(p, "min", s.Min)
		putInt(p, "max", s.Max)
		putInt(p, "value", s.Value)
		return paramsNode(KindLong, p), nil
	case *Decimal:
		p := value.Record{}
		for name, d := range map[string]*apd.Decimal{"min": s.Min, "max": s.Max, "value": s.Value} {
			if d != nil {
				p[name] = value.String(d.String())
			}
		}
		return paramsNode(KindDecimal, p), nil
	case *Double:
		p := value.Record{}
		for name, f := range map[string]*float64{"min": s.Min, "max": s.Max, "value": s.Value} {
			if f != nil {
				p[name] = value.Double(*f)
			}
		}
		return paramsNode(KindDouble, p), nil
	case *String:
		p := value.Record{}
		if s.Pattern != "" {
			p["pattern"] = value.String(s.Pattern)
		}
		putInt(p, "minLength", s.MinLength)
		putInt(p, "maxLength", s.MaxLength)
		if s.Value != nil {
			p["value"] = value.String(*s.Value)
		}
		return paramsNode(KindString, p), nil
	case *Binary:
		p := value.Record{}
		putInt(p, "minLength", s.MinLength)
		putInt(p, "maxLength", s.MaxLength)
		return paramsNode(KindBinary, p), nil
	case *Date:
		p := value.Record{}
		for name, d := range map[string]*value.Date{"min": s.Min, "max": s.Max, "value": s.Value} {
			if d != nil {
				p[name] = value.String(d.Time().Format(value.DateLayout))
			}
		}
		return paramsNode(KindDate, p), nil
	case *Array:
		p := value.Record{}
		if len(s.Head) > 0 {
			head := make(value.Array, len(s.Head))
			for i, h := range s.Head {
				n, err := docNode(h)
				if err != nil {
					return nil, err
				}
				head[i] = n
			}
			p["head"] = head
		}
		if s.Rest != nil {
			n, err := docNode(s.Rest)
			if err != nil {
				return nil, err
			}
			p["rest"] = n
			if s.MinRest != 0 {
				p["minRest"] = value.Long(s.MinRest)
			}
			putInt(p, "maxRest", s.MaxRest)
		}
		return wrap(KindArray, p), nil
	case *Record:
		fields := make(value.Array, len(s.Fields))
		for i, f := range s.Fields {
			n, err := docNode(f.Schema)
			if err != nil {
				return nil, err
			}
			fd := value.Record{"name": value.String(f.Name), "schema": n}
			if f.Optional {
				fd["optional"] = value.Bool(true)
			}
			fields[i] = fd
		}
		p := value.Record{"fields": fields}
		if s.Rest != nil {
			n, err := docNode(s.Rest)
			if err != nil {
				return nil, err
			}
			p["rest"] = n
		}
		return wrap(KindRecord, p), nil
	case *Or:
		branches := make(value.Array, len(s.Branches))
		for i, b := range s.Branches {
			n, err := docNode(b)
			if err != nil {
				return nil, err
			}
			branches[i] = n
		}
		return wrap(KindOr, branches), nil
	case *Generic:
		if s.Type == "" {
			return kindNode(KindGeneric), nil
		}
		return wrap(KindGeneric, value.String(s.Type)), nil
	}
	return nil, newError(ErrCodeMalformed, "", "unknown schema type %T", s)
}

func putInt(p value.Record, name string, n *int64) {
	if n != nil {
		p[name] = value.Long(*n)
	}
}

func paramsNode(k Kind, p value.Record) value.Value {
	if len(p) == 0 {
		return kindNode(k)
	}
	return wrap(k, p)
}

// ParseDoc parses a schema document and validates the result.
func ParseDoc(data []byte) (Schema, error) {
	v, err := value.UnmarshalJSON(data)
	if err != nil {
		return nil, newError(ErrCodeMalformed, "$", "%v", err)
	}
	return FromValue(v)
}

// FromValue builds a schema from a document already decoded into a value.
func FromValue(v value.Value) (Schema, error) {
	s, err := parseNode(v, "$")
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

var namedKinds = map[string]Schema{
	"any":     AnySchema,
	"null":    NullSchema,
	"boolean": BooleanSchema,
	"long":    LongSchema,
	"decimal": DecimalSchema,
	"double":  DoubleSchema,
	"string":  StringSchema,
	"binary":  BinarySchema,
	"date":    DateSchema,
	"generic": &Generic{},
	"schema":  &SchemaType{},
}

func parseNode(v value.Value, path string) (Schema, error) {
	switch n := v.(type) {
	case value.String:
		s, ok := namedKinds[string(n)]
		if !ok {
			return nil, newError(ErrCodeMalformed, path, "unknown schema kind %q", string(n))
		}
		return s, nil
	case value.Record:
		if len(n) != 1 {
			return nil, newError(ErrCodeMalformed, path, "schema object must have exactly one key, got %d", len(n))
		}
		for k, params := range n {
			return parseParams(k, params, path+"."+k)
		}
	}
	return nil, newError(ErrCodeMalformed, path, "schema node must be a string or an object, got %s", kindOf(v))
}

func kindOf(v value.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}

func parseParams(kind string, params value.Value, path string) (Schema, error) {
	switch kind {
	case "or":
		arr, ok := params.(value.Array)
		if !ok {
			return nil, newError(ErrCodeMalformed, path, "or expects an array")
		}
		if len(arr) == 0 {
			return nil, newError(ErrCodeEmptyUnion, path, "union has no branches")
		}
		branches := make([]Schema, len(arr))
		for i, b := range arr {
			s, err := parseNode(b, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			branches[i] = s
		}
		return NewOr(branches...)
	case "generic":
		t, ok := params.(value.String)
		if !ok {
			return nil, newError(ErrCodeMalformed, path, "generic expects a type name")
		}
		return &Generic{Type: string(t)}, nil
	}

	p, ok := params.(value.Record)
	if !ok {
		return nil, newError(ErrCodeMalformed, path, "%s expects an object", kind)
	}
	r := paramReader{p: p, path: path}

	var s Schema
	switch kind {
	case "boolean":
		b := &Boolean{}
		if v, ok := r.take("value"); ok {
			bv, isBool := v.(value.Bool)
			if !isBool {
				return nil, r.fail("value", "expected a boolean")
			}
			b.Value = Ptr(bool(bv))
		}
		s = b
	case "long":
		s = &Long{Min: r.int("min"), Max: r.int("max"), Value: r.int("value")}
	case "decimal":
		s = &Decimal{Min: r.decimal("min"), Max: r.decimal("max"), Value: r.decimal("value")}
	case "double":
		s = &Double{Min: r.double("min"), Max: r.double("max"), Value: r.double("value")}
	case "string":
		str := &String{MinLength: r.int("minLength"), MaxLength: r.int("maxLength")}
		if v, ok := r.take("pattern"); ok {
			pat, isStr := v.(value.String)
			if !isStr {
				return nil, r.fail("pattern", "expected a string")
			}
			str.Pattern = string(pat)
		}
		if v, ok := r.take("value"); ok {
			sv, isStr := v.(value.String)
			if !isStr {
				return nil, r.fail("value", "expected a string")
			}
			str.Value = Ptr(string(sv))
		}
		if str.Pattern != "" {
			str.re, _ = compilePattern(str.Pattern)
		}
		s = str
	case "binary":
		s = &Binary{MinLength: r.int("minLength"), MaxLength: r.int("maxLength")}
	case "date":
		s = &Date{Min: r.date("min"), Max: r.date("max"), Value: r.date("value")}
	case "array":
		a := &Array{}
		if v, ok := r.take("head"); ok {
			head, isArr := v.(value.Array)
			if !isArr {
				return nil, r.fail("head", "expected an array")
			}
			for i, h := range head {
				hs, err := parseNode(h, fmt.Sprintf("%s.head[%d]", path, i))
				if err != nil {
					return nil, err
				}
				a.Head = append(a.Head, hs)
			}
		}
		if v, ok := r.take("rest"); ok {
			rest, err := parseNode(v, path+".rest")
			if err != nil {
				return nil, err
			}
			a.Rest = rest
		}
		if n := r.int("minRest"); n != nil {
			a.MinRest = *n
		}
		a.MaxRest = r.int("maxRest")
		s = a
	case "record":
		rec, err := parseRecord(&r)
		if err != nil {
			return nil, err
		}
		s = rec
	default:
		return nil, newError(ErrCodeMalformed, path, "unknown schema kind %q", kind)
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseRecord(r *paramReader) (Schema, error) {
	var fields []Field
	if v, ok := r.take("fields"); ok {
		arr, isArr := v.(value.Array)
		if !isArr {
			return nil, r.fail("fields", "expected an array")
		}
		for i, fv := range arr {
			fpath := fmt.Sprintf("%s.fields[%d]", r.path, i)
			fd, isRec := fv.(value.Record)
			if !isRec {
				return nil, newError(ErrCodeMalformed, fpath, "field must be an object")
			}
			fr := paramReader{p: fd, path: fpath}
			var f Field
			if nv, ok := fr.take("name"); ok {
				name, isStr := nv.(value.String)
				if !isStr {
					return nil, fr.fail("name", "expected a string")
				}
				f.Name = string(name)
			} else {
				return nil, fr.fail("name", "missing field name")
			}
			sv, ok := fr.take("schema")
			if !ok {
				return nil, fr.fail("schema", "missing field schema")
			}
			fs, err := parseNode(sv, fpath+".schema")
			if err != nil {
				return nil, err
			}
			f.Schema = fs
			if ov, ok := fr.take("optional"); ok {
				opt, isBool := ov.(value.Bool)
				if !isBool {
					return nil, fr.fail("optional", "expected a boolean")
				}
				f.Optional = bool(opt)
			}
			if err := fr.finish(); err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
	}

	var rest Schema
	if v, ok := r.take("rest"); ok {
		s, err := parseNode(v, r.path+".rest")
		if err != nil {
			return nil, err
		}
		rest = s
	}
	return NewRecord(fields, rest)
}

// paramReader consumes the parameters of one schema node. The first
// conversion failure is kept and reported by finish, along with any
// parameter nobody asked for.
type paramReader struct {
	p    value.Record
	path string
	used []string
	err  error
}

func (r *paramReader) take(name string) (value.Value, bool) {
	v, ok := r.p[name]
	if ok {
		r.used = append(r.used, name)
	}
	return v, ok
}

func (r *paramReader) fail(name, format string, args ...any) *Error {
	return newError(ErrCodeMalformed, r.path+"."+name, format, args...)
}

func (r *paramReader) setErr(err *Error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *paramReader) finish() error {
	if r.err != nil {
		return r.err
	}
	if len(r.used) == len(r.p) {
		return nil
	}
	for _, k := range r.p.SortedKeys() {
		known := false
		for _, u := range r.used {
			if u == k {
				known = true
				break
			}
		}
		if !known {
			return r.fail(k, "unknown parameter")
		}
	}
	return nil
}

func (r *paramReader) int(name string) *int64 {
	v, ok := r.take(name)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case value.Long:
		return Ptr(int64(n))
	case value.Double:
		f := float64(n)
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return Ptr(int64(f))
		}
	case value.Decimal:
		if i, err := n.Apd().Int64(); err == nil {
			return Ptr(i)
		}
	}
	r.setErr(r.fail(name, "expected an integer, got %s", kindOf(v)))
	return nil
}

func (r *paramReader) double(name string) *float64 {
	v, ok := r.take(name)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case value.Double:
		return Ptr(float64(n))
	case value.Long:
		return Ptr(float64(n))
	case value.Decimal:
		if f, err := n.Apd().Float64(); err == nil {
			return Ptr(f)
		}
	}
	r.setErr(r.fail(name, "expected a number, got %s", kindOf(v)))
	return nil
}

func (r *paramReader) decimal(name string) *apd.Decimal {
	v, ok := r.take(name)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case value.String:
		d, err := value.NewDecimal(string(n))
		if err == nil {
			return d.Apd()
		}
		r.setErr(r.fail(name, "%v", err))
		return nil
	case value.Long, value.Decimal, value.Double:
		if d, ok := value.Number(n); ok {
			return d
		}
	}
	r.setErr(r.fail(name, "expected a decimal, got %s", kindOf(v)))
	return nil
}

func (r *paramReader) date(name string) *value.Date {
	v, ok := r.take(name)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case value.String:
		t, err := time.Parse(time.RFC3339Nano, string(n))
		if err == nil {
			return Ptr(value.DateOf(t))
		}
		r.setErr(r.fail(name, "%v", err))
		return nil
	case value.Long:
		return Ptr(value.Date(n))
	case value.Date:
		return Ptr(n)
	}
	r.setErr(r.fail(name, "expected a date, got %s", kindOf(v)))
	return nil
}

// Value is a schema carried as a value, e.g. a stored schema column.
type Value struct {
	value.SchemaMarker
	schema Schema
	doc    []byte
}

// NewValue wraps a validated schema as a value.
func NewValue(s Schema) (Value, error) {
	if err := Validate(s); err != nil {
		return Value{}, err
	}
	doc, err := MarshalDoc(s)
	if err != nil {
		return Value{}, err
	}
	return Value{schema: s, doc: doc}, nil
}

// Schema returns the wrapped schema.
func (v Value) Schema() Schema { return v.schema }

// Doc returns the schema document. Callers must not modify it.
func (v Value) Doc() []byte { return v.doc }

// ValueFromDoc parses a schema document into a schema value.
func ValueFromDoc(doc []byte) (value.SchemaValue, error) {
	s, err := ParseDoc(doc)
	if err != nil {
		return nil, err
	}
	v, err := NewValue(s)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Decoder reads JSON values, turning {"$schema": doc} objects into schema values.
var Decoder = value.Decoder{DecodeSchema: ValueFromDoc}

// UnmarshalValue decodes JSON text into a value with schema support.
func UnmarshalValue(data []byte) (value.Value, error) {
	return Decoder.Unmarshal(data)
}
