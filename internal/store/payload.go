package store

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Payload forms, stored as the first byte of the payload column.
const (
	payloadRaw  byte = 0
	payloadZstd byte = 1
)

// minCompressSize is the smallest payload worth compressing.
const minCompressSize = 64

// Encoders and decoders are safe for concurrent EncodeAll/DecodeAll.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// marshalPayload prefixes payload with its form byte, compressing it when
// compress is set and compression pays off.
func marshalPayload(payload []byte, compress bool) ([]byte, error) {
	if compress && len(payload) >= minCompressSize {
		enc, _, err := zstdCodecs()
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		out := enc.EncodeAll(payload, []byte{payloadZstd})
		if len(out) < len(payload)+1 {
			return out, nil
		}
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, payloadRaw)
	return append(out, payload...), nil
}

// unmarshalPayload reverses marshalPayload.
func unmarshalPayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("unmarshal payload: empty")
	}
	switch data[0] {
	case payloadRaw:
		return data[1:], nil
	case payloadZstd:
		_, dec, err := zstdCodecs()
		if err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		out, err := dec.DecodeAll(data[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unmarshal payload: unknown form %d", data[0])
}
