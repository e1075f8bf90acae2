package codec

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	out := NewOutput(nil)
	unsigned := []uint64{0, 1, 127, 128, 300, math.MaxUint32, math.MaxUint64}
	signed := []int64{0, -1, 1, -64, 64, math.MinInt64, math.MaxInt64}
	for _, u := range unsigned {
		out.WriteUvarint(u)
	}
	for _, s := range signed {
		out.WriteVarint(s)
	}

	in := NewInput(out.Bytes())
	for _, want := range unsigned {
		got, err := in.ReadUvarint()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, want := range signed {
		got, err := in.ReadVarint()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Zero(t, in.Remaining())
}

func TestVarintZigZag(t *testing.T) {
	out := NewOutput(nil)
	out.WriteVarint(-1)
	out.WriteVarint(1)
	out.WriteVarint(300)
	assert.Equal(t, []byte{0x01, 0x02, 0xd8, 0x04}, out.Bytes())
}

func TestFloat64BigEndian(t *testing.T) {
	out := NewOutput(nil)
	out.WriteFloat64(1.5)
	assert.Equal(t, []byte{0x3f, 0xf8, 0, 0, 0, 0, 0, 0}, out.Bytes())

	f, err := NewInput(out.Bytes()).ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)
}

func TestOutputWriteByte(t *testing.T) {
	out := NewOutput(nil)
	out.writeByte(0x01)

	var w io.ByteWriter = out
	require.NoError(t, w.WriteByte(0xff))
	assert.Equal(t, []byte{0x01, 0xff}, out.Bytes())
}

func TestOutputTruncate(t *testing.T) {
	out := NewOutput(make([]byte, 8))
	assert.Zero(t, out.Len())

	out.WriteString("abc")
	mark := out.Len()
	out.WriteBytes([]byte("def"))
	out.Truncate(mark)
	assert.Equal(t, "abc", string(out.Bytes()))

	out.Reset()
	assert.Zero(t, out.Len())
}

func TestInputTruncated(t *testing.T) {
	tests := []struct {
		name string
		read func(in *Input) error
		data []byte
	}{
		{"byte", func(in *Input) error { _, err := in.ReadByte(); return err }, nil},
		{"uvarint", func(in *Input) error { _, err := in.ReadUvarint(); return err }, []byte{0x80}},
		{"varint", func(in *Input) error { _, err := in.ReadVarint(); return err }, []byte{0xff, 0xff}},
		{"float64", func(in *Input) error { _, err := in.ReadFloat64(); return err }, []byte{1, 2, 3}},
		{"bytes", func(in *Input) error { _, err := in.ReadBytes(2); return err }, []byte{1}},
		{"len prefixed", func(in *Input) error { _, err := in.readLenPrefixed(); return err }, []byte{0x05, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewInput(tt.data))
			require.Error(t, err)
			assert.True(t, IsMalformed(err))
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		})
	}
}

func TestInputVarintOverflow(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	_, err := NewInput(data).ReadUvarint()
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.False(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestInputReset(t *testing.T) {
	in := NewInput([]byte{1, 2})
	_, err := in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, 1, in.Offset())

	in.Reset([]byte{9})
	b, err := in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(9), b)
}

func TestErrorPath(t *testing.T) {
	err := atPath(atPath(mismatch("bad"), "[2]"), "tags")
	err = atPath(err, "meta")

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "meta.tags[2]", ce.Path)
	assert.Equal(t, "SCHEMA_MISMATCH: bad (at meta.tags[2])", ce.Error())
	assert.True(t, IsMismatch(err))
	assert.False(t, IsMalformed(err))
}
