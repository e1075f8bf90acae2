package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareAcrossClasses(t *testing.T) {
	ordered := []Value{
		Null{},
		Bool(true),
		Long(-100),
		String(""),
		Binary{},
		Date(0),
		Array{},
		Record{},
		Generic{Type: "a"},
	}

	for i := 1; i < len(ordered); i++ {
		assert.Equal(t, -1, Compare(ordered[i-1], ordered[i]), "index %d", i)
		assert.Equal(t, 1, Compare(ordered[i], ordered[i-1]), "index %d", i)
	}
}

func TestCompareNumbersAcrossKinds(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"long vs long", Long(1), Long(2), -1},
		{"long vs decimal equal", Long(1), MustDecimal("1.00"), 0},
		{"decimal vs double", MustDecimal("0.5"), Double(0.25), 1},
		{"long vs double", Long(3), Double(2.5), 1},
		{"nan smallest", Double(math.NaN()), Long(math.MinInt64), -1},
		{"neg inf below decimal", Double(math.Inf(-1)), MustDecimal("-1e100"), -1},
		{"pos inf above long", Double(math.Inf(1)), Long(math.MaxInt64), 1},
		{"nan equals nan", Double(math.NaN()), Double(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestCompareStringsBytewise(t *testing.T) {
	assert.Equal(t, -1, Compare(String("ab"), String("b")))
	assert.Equal(t, -1, Compare(String("a"), String("ab")))
	assert.Equal(t, 0, Compare(String("x"), String("x")))
}

// Arrays break prefix ties toward the shorter array being greater.
func TestCompareArrayShorterPrefixIsGreater(t *testing.T) {
	short := Array{Long(1), Long(2)}
	long := Array{Long(1), Long(2), Long(3)}

	assert.Equal(t, 1, Compare(short, long))
	assert.Equal(t, -1, Compare(long, short))
	assert.Equal(t, -1, Compare(Array{Long(1), Long(9)}, Array{Long(2)}))
}

// Records: the record holding the smaller field name is greater; more
// trailing fields after a common prefix is greater.
func TestCompareRecordConventions(t *testing.T) {
	withA := Record{"a": Long(1)}
	withB := Record{"b": Long(1)}
	assert.Equal(t, 1, Compare(withA, withB))
	assert.Equal(t, -1, Compare(withB, withA))

	prefix := Record{"a": Long(1)}
	longer := Record{"a": Long(1), "z": Long(0)}
	assert.Equal(t, 1, Compare(longer, prefix))

	assert.Equal(t, -1, Compare(Record{"a": Long(1)}, Record{"a": Long(2)}))
}

func TestEqualRequiresSameKind(t *testing.T) {
	assert.True(t, Equal(Long(1), Long(1)))
	assert.False(t, Equal(Long(1), MustDecimal("1")))
	assert.True(t, Equal(Record{"a": Array{String("x")}}, Record{"a": Array{String("x")}}))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(Null{}, nil))
}

func TestCompareGeneric(t *testing.T) {
	assert.Equal(t, -1, Compare(Generic{Type: "a", Payload: []byte{9}}, Generic{Type: "b"}))
	assert.Equal(t, 1, Compare(Generic{Type: "a", Payload: []byte{2}}, Generic{Type: "a", Payload: []byte{1}}))
}

func TestCompareNamesASCIIFastPath(t *testing.T) {
	assert.Equal(t, -1, CompareNames("A", "a"))
	assert.Equal(t, -1, CompareNames("a", "aa"))
	assert.Equal(t, 0, CompareNames("id", "id"))
}
