package spill

import (
	"errors"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/testutil"
	"github.com/roach88/jcodec/internal/value"
)

func newTestSorter(t *testing.T, s schema.Schema) *Sorter {
	t.Helper()
	sorter, err := New(s, Options{Dir: "spill", FS: vfs.NewMem(), MemTableSize: 64 << 10})
	require.NoError(t, err)
	t.Cleanup(func() { sorter.Close() })
	return sorter
}

func assertAscending(t *testing.T, values []value.Value) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		assert.LessOrEqual(t, value.Compare(values[i-1], values[i]), 0,
			"%s sorted after %s", value.MustMarshalJSON(values[i]), value.MustMarshalJSON(values[i-1]))
	}
}

func TestSorterOrdersLongs(t *testing.T) {
	sorter := newTestSorter(t, schema.LongSchema)
	for _, n := range []int64{5, -3, 12, 0, -3, 7} {
		require.NoError(t, sorter.Add(value.Long(n)))
	}
	assert.Equal(t, 6, sorter.Len())

	got, err := sorter.Values()
	require.NoError(t, err)
	assert.Equal(t, []value.Value{
		value.Long(-3), value.Long(-3), value.Long(0), value.Long(5), value.Long(7), value.Long(12),
	}, got)
}

func TestSorterUsesCodecOrderNotBytes(t *testing.T) {
	// Zig-zag bytes of -1 (0x01) sort before 1 (0x02) but after 0 (0x00);
	// a shorter array sorts after a longer one sharing its prefix.
	s := schema.ArrayOf(schema.LongSchema)
	sorter := newTestSorter(t, s)
	input := []value.Array{{value.Long(1)}, {value.Long(1), value.Long(2)}, {value.Long(-1)}, {}}
	for _, v := range input {
		require.NoError(t, sorter.Add(v))
	}

	got, err := sorter.Values()
	require.NoError(t, err)
	assert.Equal(t, []value.Value{
		value.Array{value.Long(-1)},
		value.Array{value.Long(1), value.Long(2)},
		value.Array{value.Long(1)},
		value.Array{},
	}, got)
}

func TestSorterEqualValuesKeepDistinctEncodings(t *testing.T) {
	sorter := newTestSorter(t, schema.AnySchema)
	require.NoError(t, sorter.Add(value.Long(1)))
	require.NoError(t, sorter.Add(value.MustDecimal("1.0")))
	require.NoError(t, sorter.Add(value.Double(1)))
	require.NoError(t, sorter.Add(value.Long(0)))

	var kinds []value.Kind
	err := sorter.Each(func(_ []byte, v value.Value) error {
		kinds = append(kinds, v.Kind())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []value.Kind{value.KindLong, value.KindLong, value.KindDecimal, value.KindDouble}, kinds)
}

func TestSorterGeneratedRecords(t *testing.T) {
	s := schema.MustSchema(schema.NewRecord([]schema.Field{
		{Name: "id", Schema: schema.LongSchema},
		{Name: "name", Schema: schema.StringSchema, Optional: true},
	}, nil))
	sorter := newTestSorter(t, s)

	input := testutil.NewGenerator(99).MustValues(s, 2000)
	for _, v := range input {
		require.NoError(t, sorter.Add(v))
	}

	got, err := sorter.Values()
	require.NoError(t, err)
	require.Len(t, got, len(input))
	assertAscending(t, got)
}

func TestSorterAddEncoded(t *testing.T) {
	sorter := newTestSorter(t, schema.StringSchema)
	c, err := codec.New(schema.StringSchema)
	require.NoError(t, err)

	for _, str := range []string{"pear", "apple", "fig"} {
		enc, err := c.Encode(value.String(str))
		require.NoError(t, err)
		require.NoError(t, sorter.AddEncoded(enc))
	}
	assert.Error(t, sorter.AddEncoded([]byte{0x05, 'a'}))
	assert.Error(t, sorter.AddEncoded([]byte{0x01, 'a', 'b'}))

	got, err := sorter.Values()
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.String("apple"), value.String("fig"), value.String("pear")}, got)
}

func TestSorterRejectsMismatch(t *testing.T) {
	sorter := newTestSorter(t, schema.LongSchema)
	err := sorter.Add(value.String("x"))
	require.Error(t, err)
	assert.True(t, codec.IsMismatch(err))
	assert.Zero(t, sorter.Len())
}

func TestSorterEachStopsOnError(t *testing.T) {
	sorter := newTestSorter(t, schema.LongSchema)
	for n := range int64(5) {
		require.NoError(t, sorter.Add(value.Long(n)))
	}

	stop := errors.New("stop")
	calls := 0
	err := sorter.Each(func([]byte, value.Value) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestSorterClosed(t *testing.T) {
	sorter := newTestSorter(t, schema.LongSchema)
	require.NoError(t, sorter.Close())
	require.NoError(t, sorter.Close())

	assert.ErrorIs(t, sorter.Add(value.Long(1)), ErrClosed)
	assert.ErrorIs(t, sorter.Each(func([]byte, value.Value) error { return nil }), ErrClosed)
}

func TestSorterInvalidSchema(t *testing.T) {
	_, err := New(&schema.Or{}, Options{Dir: "spill", FS: vfs.NewMem()})
	assert.Error(t, err)
}

func TestCompareKeys(t *testing.T) {
	cmp, err := newComparer(schema.LongSchema, nil)
	require.NoError(t, err)

	c, err := codec.New(schema.LongSchema)
	require.NoError(t, err)
	key := func(n int64, seq uint64) []byte {
		enc, err := c.Encode(value.Long(n))
		require.NoError(t, err)
		return makeKey(nil, enc, seq)
	}

	assert.Negative(t, cmp.Compare(key(-1, 9), key(1, 1)))
	assert.Negative(t, cmp.Compare(key(1, 1), key(1, 2)))
	assert.Zero(t, cmp.Compare(key(1, 1), key(1, 1)))
	assert.Negative(t, cmp.Compare(nil, key(0, 0)))

	k := key(3, 4)
	assert.Negative(t, cmp.Compare(k, cmp.ImmediateSuccessor(nil, k)))
}
