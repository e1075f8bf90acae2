package value

import (
	"bytes"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON for hashing and
// golden comparison.
//
// Differences from MarshalJSON:
//  1. Strings and keys are NFC normalized
//  2. No HTML escaping (< > & are NOT escaped)
//  3. U+2028 and U+2029 are written literally
//
// Record keys are sorted by UTF-16 code units in both forms.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalCanonicalString produces a canonical JSON string with NFC normalization.
// Only control characters (U+0000-U+001F), backslash, and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // CRITICAL: <, >, & must NOT be escaped
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. When an even run of backslashes
// precedes "u2028" the text is literal (\\u2028) and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		// Count the run of backslashes starting here.
		j := i
		for j < len(data) && data[j] == '\\' {
			j++
		}
		run := j - i
		out = append(out, data[i:j]...)
		i = j - 1
		if run%2 == 0 || j+5 > len(data) {
			continue
		}
		seq := data[j : j+5]
		switch string(seq) {
		case "u2028":
			out = append(out[:len(out)-1], "\u2028"...)
			i += 5
		case "u2029":
			out = append(out[:len(out)-1], "\u2029"...)
			i += 5
		}
	}
	return out
}
