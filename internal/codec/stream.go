package codec

import (
	"encoding/binary"
	"io"
	"math"
)

// Output accumulates encoded bytes. Only appends are supported, plus
// Truncate to roll back a partially written value.
type Output struct {
	buf []byte
}

// NewOutput returns an Output appending to buf[:0].
func NewOutput(buf []byte) *Output {
	return &Output{buf: buf[:0]}
}

// Bytes returns the encoded bytes. They alias the internal buffer until the
// next write.
func (o *Output) Bytes() []byte { return o.buf }

// Len returns the number of bytes written.
func (o *Output) Len() int { return len(o.buf) }

// Reset clears the output but keeps its memory.
func (o *Output) Reset() { o.buf = o.buf[:0] }

// Truncate discards everything written after the first n bytes.
func (o *Output) Truncate(n int) { o.buf = o.buf[:n] }

// WriteByte appends one byte, satisfying io.ByteWriter. It never fails;
// codecs use writeByte.
func (o *Output) WriteByte(b byte) error {
	o.writeByte(b)
	return nil
}

func (o *Output) writeByte(b byte) {
	o.buf = append(o.buf, b)
}

// WriteBytes appends raw bytes.
func (o *Output) WriteBytes(b []byte) {
	o.buf = append(o.buf, b...)
}

// WriteString appends the bytes of s.
func (o *Output) WriteString(s string) {
	o.buf = append(o.buf, s...)
}

// WriteUvarint appends an unsigned varint.
func (o *Output) WriteUvarint(v uint64) {
	o.buf = binary.AppendUvarint(o.buf, v)
}

// WriteVarint appends a zig-zag encoded signed varint.
func (o *Output) WriteVarint(v int64) {
	o.buf = binary.AppendVarint(o.buf, v)
}

// WriteFloat64 appends the IEEE 754 bits of f, big-endian.
func (o *Output) WriteFloat64(f float64) {
	o.buf = binary.BigEndian.AppendUint64(o.buf, math.Float64bits(f))
}

// writeLenPrefixed appends a uvarint length followed by b.
func (o *Output) writeLenPrefixed(b []byte) {
	o.WriteUvarint(uint64(len(b)))
	o.WriteBytes(b)
}

// Input reads encoded bytes sequentially.
type Input struct {
	data []byte
	pos  int
}

// NewInput returns an Input positioned at the start of data.
func NewInput(data []byte) *Input {
	return &Input{data: data}
}

// Reset repositions the input at the start of data.
func (in *Input) Reset(data []byte) {
	in.data = data
	in.pos = 0
}

// Offset returns the read position.
func (in *Input) Offset() int { return in.pos }

// Remaining returns the number of unread bytes.
func (in *Input) Remaining() int { return len(in.data) - in.pos }

// sub returns an independent input over data[start:end].
func (in *Input) sub(start, end int) *Input {
	return &Input{data: in.data[start:end]}
}

// ReadByte reads one byte.
func (in *Input) ReadByte() (byte, error) {
	if in.pos >= len(in.data) {
		return 0, truncated()
	}
	b := in.data[in.pos]
	in.pos++
	return b, nil
}

// ReadBytes reads n bytes. The result aliases the input.
func (in *Input) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > in.Remaining() {
		return nil, truncated()
	}
	b := in.data[in.pos : in.pos+n]
	in.pos += n
	return b, nil
}

// ReadUvarint reads an unsigned varint.
func (in *Input) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(in.data[in.pos:])
	switch {
	case n == 0:
		return 0, truncated()
	case n < 0:
		return 0, malformed("varint overflows 64 bits")
	}
	in.pos += n
	return v, nil
}

// ReadVarint reads a zig-zag encoded signed varint.
func (in *Input) ReadVarint() (int64, error) {
	v, n := binary.Varint(in.data[in.pos:])
	switch {
	case n == 0:
		return 0, truncated()
	case n < 0:
		return 0, malformed("varint overflows 64 bits")
	}
	in.pos += n
	return v, nil
}

// ReadFloat64 reads eight big-endian bytes as IEEE 754 bits.
func (in *Input) ReadFloat64() (float64, error) {
	b, err := in.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// readLen reads a uvarint length no larger than the remaining input.
func (in *Input) readLen() (int, error) {
	n, err := in.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64(in.Remaining()) {
		return 0, truncated()
	}
	return int(n), nil
}

// readLenPrefixed reads a uvarint length and that many bytes.
func (in *Input) readLenPrefixed() ([]byte, error) {
	n, err := in.readLen()
	if err != nil {
		return nil, err
	}
	return in.ReadBytes(n)
}

func truncated() *Error {
	return &Error{Code: ErrCodeMalformed, Message: "truncated input", Err: io.ErrUnexpectedEOF}
}
