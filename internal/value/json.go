package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Extended JSON keys for kinds that plain JSON cannot express.
// An object is read as an extended value only when its key set is exactly
// one of these forms.
const (
	keyDecimal = "$decimal"
	keyDouble  = "$double"
	keyDate    = "$date"
	keyBinary  = "$binary"
	keyGeneric = "$generic"
	keyPayload = "$payload"
	keySchema  = "$schema"
)

// DateLayout is the textual form of dates: RFC 3339 with milliseconds, UTC.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Decoder converts JSON text into values.
type Decoder struct {
	// DecodeSchema turns a {"$schema": doc} object into a schema value.
	// When nil, such objects are read as plain records.
	DecodeSchema func(doc []byte) (SchemaValue, error)
}

// UnmarshalJSON decodes JSON text into a Value without schema support.
func UnmarshalJSON(data []byte) (Value, error) {
	return Decoder{}.Unmarshal(data)
}

// Unmarshal decodes JSON text into a Value.
// Integers become Long (Decimal when they overflow int64), numbers with a
// fraction or exponent become Double.
func (d Decoder) Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}

	return d.convert(raw)
}

// convert recursively converts a decoded JSON tree into a Value.
func (d Decoder) convert(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		return parseNumber(string(val))
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			item, err := d.convert(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = item
		}
		return arr, nil
	case map[string]any:
		if ext, ok, err := d.convertExtended(val); ok || err != nil {
			return ext, err
		}
		rec := make(Record, len(val))
		for k, elem := range val {
			item, err := d.convert(elem)
			if err != nil {
				return nil, fmt.Errorf("record[%q]: %w", k, err)
			}
			rec[k] = item
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func parseNumber(s string) (Value, error) {
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", s, err)
		}
		return Double(f), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Long(n), nil
	}
	return NewDecimal(s)
}

// convertExtended recognizes the extended JSON object forms.
func (d Decoder) convertExtended(obj map[string]any) (Value, bool, error) {
	switch len(obj) {
	case 1:
	case 2:
		typ, ok := obj[keyGeneric].(string)
		if !ok {
			return nil, false, nil
		}
		payload, ok := obj[keyPayload].(string)
		if !ok {
			return nil, false, nil
		}
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, true, fmt.Errorf("%s: %w", keyPayload, err)
		}
		return Generic{Type: typ, Payload: b}, true, nil
	default:
		return nil, false, nil
	}

	for k, raw := range obj {
		if k == keySchema && d.DecodeSchema != nil {
			doc, err := json.Marshal(raw)
			if err != nil {
				return nil, true, fmt.Errorf("%s: %w", keySchema, err)
			}
			sv, err := d.DecodeSchema(doc)
			if err != nil {
				return nil, true, fmt.Errorf("%s: %w", keySchema, err)
			}
			return sv, true, nil
		}

		s, ok := raw.(string)
		if !ok {
			return nil, false, nil
		}
		switch k {
		case keyDecimal:
			dec, err := NewDecimal(s)
			return dec, true, err
		case keyDouble:
			f, err := parseSpecialDouble(s)
			return Double(f), true, err
		case keyDate:
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, true, fmt.Errorf("%s: %w", keyDate, err)
			}
			return DateOf(t), true, nil
		case keyBinary:
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, true, fmt.Errorf("%s: %w", keyBinary, err)
			}
			return Binary(b), true, nil
		}
	}
	return nil, false, nil
}

func parseSpecialDouble(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "+Inf", "Infinity":
		return math.Inf(1), nil
	case "-Inf", "-Infinity":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", keyDouble, err)
	}
	return f, nil
}

// MarshalJSON marshals a Value to JSON with sorted record keys.
// NOTE: This is NOT canonical marshaling. Use MarshalCanonical for hashing.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustMarshalJSON is like MarshalJSON but panics on error.
func MustMarshalJSON(v Value) []byte {
	b, err := MarshalJSON(v)
	if err != nil {
		panic(err)
	}
	return b
}

func writeJSON(buf *bytes.Buffer, v Value, canonical bool) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("nil value")
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Long:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Double:
		writeDouble(buf, float64(val))
	case Decimal:
		writeExtended(buf, keyDecimal, val.String())
	case String:
		return writeString(buf, string(val), canonical)
	case Binary:
		writeExtended(buf, keyBinary, base64.StdEncoding.EncodeToString(val))
	case Date:
		writeExtended(buf, keyDate, val.Time().Format(DateLayout))
	case Generic:
		buf.WriteString(`{"` + keyGeneric + `":`)
		if err := writeString(buf, val.Type, canonical); err != nil {
			return err
		}
		buf.WriteString(`,"` + keyPayload + `":"`)
		buf.WriteString(base64.StdEncoding.EncodeToString(val.Payload))
		buf.WriteString(`"}`)
	case SchemaValue:
		buf.WriteString(`{"` + keySchema + `":`)
		buf.Write(val.Doc())
		buf.WriteByte('}')
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem, canonical); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Record:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k, canonical); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, val[k], canonical); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type: %T", v)
	}
	return nil
}

func writeExtended(buf *bytes.Buffer, key, s string) {
	buf.WriteString(`{"` + key + `":`)
	b, _ := json.Marshal(s)
	buf.Write(b)
	buf.WriteByte('}')
}

// writeDouble keeps a fraction or exponent so the text reads back as Double.
func writeDouble(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		writeExtended(buf, keyDouble, "NaN")
		return
	case math.IsInf(f, 1):
		writeExtended(buf, keyDouble, "+Inf")
		return
	case math.IsInf(f, -1):
		writeExtended(buf, keyDouble, "-Inf")
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	buf.WriteString(s)
}

func writeString(buf *bytes.Buffer, s string, canonical bool) error {
	if canonical {
		b, err := marshalCanonicalString(s)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
