package value

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Verify all types implement Value (compile-time check via assignment)
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Long(1)
	var _ Value = Double(1.5)
	var _ Value = MustDecimal("1.5")
	var _ Value = String("s")
	var _ Value = Binary{0x01}
	var _ Value = Date(0)
	var _ Value = Array{Long(1)}
	var _ Value = Record{"a": Long(1)}
	var _ Value = Generic{Type: "point"}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "long", KindLong.String())
	assert.Equal(t, "record", KindRecord.String())
	assert.Equal(t, "kind(200)", Kind(200).String())
	assert.False(t, Kind(200).Valid())
}

func TestClassOfNumbersShared(t *testing.T) {
	assert.Equal(t, ClassNumber, ClassOf(KindLong))
	assert.Equal(t, ClassNumber, ClassOf(KindDecimal))
	assert.Equal(t, ClassNumber, ClassOf(KindDouble))
	assert.Less(t, ClassOf(KindNull), ClassOf(KindBool))
}

func TestRecordSortedKeys(t *testing.T) {
	rec := Record{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, rec.SortedKeys())
}

func TestRecordSortedKeysUTF16Order(t *testing.T) {
	// U+FF61 is a single UTF-16 unit (0xFF61); U+1F600 is a surrogate pair
	// starting at 0xD83D. UTF-8 byte order puts U+FF61 first.
	rec := Record{
		"\uFF61":     Long(1),
		"\U0001F600": Long(2),
	}

	assert.Equal(t, []string{"\U0001F600", "\uFF61"}, rec.SortedKeys())
}

func TestAppendSortedKeysReusesBuffer(t *testing.T) {
	rec := Record{"b": Null{}, "a": Null{}}
	buf := make([]string, 0, 8)

	keys := rec.AppendSortedKeys(buf)

	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, 8, cap(keys))
}

func TestDateRoundTripsTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 123_000_000, time.UTC)
	d := DateOf(ts)

	assert.Equal(t, ts, d.Time())
}

func TestNewDecimalRejectsNonFinite(t *testing.T) {
	_, err := NewDecimal("NaN")
	assert.Error(t, err)

	_, err = DecimalFromFloat64(math.Inf(1))
	assert.Error(t, err)
}

func TestNumber(t *testing.T) {
	d, ok := Number(Long(5))
	require.True(t, ok)
	assert.Equal(t, "5", d.String())

	_, ok = Number(Double(math.NaN()))
	assert.False(t, ok)

	_, ok = Number(String("5"))
	assert.False(t, ok)
}
