package value

import (
	"bytes"
	"cmp"
	"math"
	"slices"
	"unicode/utf16"
)

// Compare returns the three-way order of a and b.
//
// Values of different classes order by class. Numbers compare numerically
// across Long, Decimal and Double. When one array is a prefix of the other
// the shorter array is greater. Records walk both key lists in name order:
// the record holding the smaller differing name is greater, and a record with
// more trailing fields is greater.
//
// Codecs reproduce this order directly from encoded bytes.
func Compare(a, b Value) int {
	ka, kb := a.Kind(), b.Kind()
	ca, cb := ClassOf(ka), ClassOf(kb)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}

	switch x := a.(type) {
	case Null:
		return 0
	case Bool:
		return compareBool(bool(x), bool(b.(Bool)))
	case Long, Decimal, Double:
		return CompareNumbers(a, b)
	case String:
		return cmp.Compare(string(x), string(b.(String)))
	case Binary:
		return bytes.Compare(x, b.(Binary))
	case Date:
		return cmp.Compare(x, b.(Date))
	case Array:
		return compareArrays(x, b.(Array))
	case Record:
		return compareRecords(x, b.(Record))
	case Generic:
		y := b.(Generic)
		if c := cmp.Compare(x.Type, y.Type); c != 0 {
			return c
		}
		return bytes.Compare(x.Payload, y.Payload)
	case SchemaValue:
		return bytes.Compare(x.Doc(), b.(SchemaValue).Doc())
	}
	return 0
}

// Equal reports whether a and b have the same kind and compare equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && Compare(a, b) == 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// CompareNumbers compares two numeric values in the precision of the wider
// operand. NaN doubles sort before every other number.
func CompareNumbers(a, b Value) int {
	switch x := a.(type) {
	case Long:
		if y, ok := b.(Long); ok {
			return cmp.Compare(x, y)
		}
	case Double:
		if y, ok := b.(Double); ok {
			return cmp.Compare(float64(x), float64(y))
		}
	}

	if c, ok := compareSpecial(a, b); ok {
		return c
	}
	da, _ := Number(a)
	db, _ := Number(b)
	return da.Cmp(db)
}

// compareSpecial orders NaN and infinite doubles against other numbers.
func compareSpecial(a, b Value) (int, bool) {
	ra, sa := specialRank(a)
	rb, sb := specialRank(b)
	if !sa && !sb {
		return 0, false
	}
	return cmp.Compare(ra, rb), true
}

// specialRank ranks NaN < -Inf < finite < +Inf.
func specialRank(v Value) (int, bool) {
	d, ok := v.(Double)
	if !ok {
		return 2, false
	}
	f := float64(d)
	switch {
	case math.IsNaN(f):
		return 0, true
	case math.IsInf(f, -1):
		return 1, true
	case math.IsInf(f, 1):
		return 3, true
	}
	return 2, false
}

func compareArrays(a, b Array) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	// Shorter array compares greater.
	return cmp.Compare(len(b), len(a))
}

func compareRecords(a, b Record) int {
	ka := a.SortedKeys()
	kb := b.SortedKeys()
	n := min(len(ka), len(kb))
	for i := 0; i < n; i++ {
		if c := CompareNames(ka[i], kb[i]); c != 0 {
			// The record holding the smaller name is greater.
			return -c
		}
		if c := Compare(a[ka[i]], b[kb[i]]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ka), len(kb))
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (r Record) SortedKeys() []string {
	return r.AppendSortedKeys(make([]string, 0, len(r)))
}

// AppendSortedKeys appends the sorted keys of r to dst, reusing its capacity.
func (r Record) AppendSortedKeys(dst []string) []string {
	start := len(dst)
	for k := range r {
		dst = append(dst, k)
	}
	slices.SortFunc(dst[start:], CompareNames)
	return dst
}

// CompareNames compares field names using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func CompareNames(a, b string) int {
	if isASCII(a) && isASCII(b) {
		return cmp.Compare(a, b)
	}

	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	return cmp.Compare(len(a16), len(b16))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
