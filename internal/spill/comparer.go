package spill

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
)

// codecComparer adapts a codec's byte comparator to pebble.
type codecComparer struct {
	codecs sync.Pool
	logger *slog.Logger
}

func newComparer(s schema.Schema, logger *slog.Logger) (*pebble.Comparer, error) {
	// Build once up front so schema errors surface here and not inside pebble.
	first, err := codec.New(s)
	if err != nil {
		return nil, err
	}
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cc := &codecComparer{logger: logger}
	cc.codecs.New = func() any {
		c, err := codec.New(s)
		if err != nil {
			panic(fmt.Sprintf("spill: rebuild codec: %v", err))
		}
		return c
	}
	cc.codecs.Put(first)

	return &pebble.Comparer{
		Compare:        cc.compare,
		Equal:          bytes.Equal,
		AbbreviatedKey: func([]byte) uint64 { return 0 },
		FormatKey:      pebble.DefaultComparer.FormatKey,
		Separator: func(dst, a, _ []byte) []byte {
			return append(dst, a...)
		},
		Successor: func(dst, a []byte) []byte {
			return append(dst, a...)
		},
		ImmediateSuccessor: func(dst, a []byte) []byte {
			return append(append(dst, a...), 0)
		},
		Split: func(a []byte) int { return len(a) },
		Name:  "jcodec." + fp[:16],
	}, nil
}

// compare orders keys by their encoded value, then bytewise. It must be a
// total order, so decode failures fall back to comparing bytes.
func (cc *codecComparer) compare(a, b []byte) int {
	if len(a) == 0 || len(b) == 0 {
		return len(a) - len(b)
	}
	ea, oka := splitKey(a)
	eb, okb := splitKey(b)
	if oka && okb {
		c := cc.codecs.Get().(*codec.Codec)
		r, err := c.CompareBytes(ea, eb)
		cc.codecs.Put(c)
		if err != nil {
			cc.logger.Warn("spill: compare keys", "error", err)
		} else if r != 0 {
			return r
		}
	}
	return bytes.Compare(a, b)
}

// splitKey returns the encoded value inside a key.
func splitKey(key []byte) ([]byte, bool) {
	n, w := binary.Uvarint(key)
	if w <= 0 || uint64(len(key)-w) < n {
		return nil, false
	}
	return key[w : w+int(n)], true
}

func makeKey(dst, enc []byte, seq uint64) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(enc)))
	dst = append(dst, enc...)
	return binary.BigEndian.AppendUint64(dst, seq)
}
