package spill

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// ErrClosed is returned by operations on a closed Sorter.
var ErrClosed = errors.New("spill: sorter closed")

// Options configures a Sorter.
type Options struct {
	// Dir is the directory holding the spill files. It is created if needed.
	Dir string

	// FS overrides the filesystem; vfs.NewMem() keeps everything in memory.
	// Nil means the OS filesystem.
	FS vfs.FS

	// MemTableSize is the write buffer size before pebble flushes a sorted
	// run to disk. Zero keeps pebble's default.
	MemTableSize uint64

	// Logger receives pebble's log output and comparator warnings.
	// Nil discards them.
	Logger *slog.Logger
}

// Sorter accumulates values of one schema and yields them in codec order.
// Add and Each must not be called concurrently with each other.
type Sorter struct {
	db     *pebble.DB
	codec  *codec.Codec
	logger *slog.Logger

	seq    atomic.Uint64
	key    []byte
	closed bool
}

// New opens a sorter for values of s.
func New(s schema.Schema, opts Options) (*Sorter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c, err := codec.New(s)
	if err != nil {
		return nil, fmt.Errorf("spill: %w", err)
	}
	cmp, err := newComparer(s, logger)
	if err != nil {
		return nil, fmt.Errorf("spill: %w", err)
	}

	po := &pebble.Options{
		Comparer: cmp,
		FS:       opts.FS,
		Logger:   pebbleLogger{logger},
	}
	if opts.MemTableSize > 0 {
		po.MemTableSize = opts.MemTableSize
	}
	db, err := pebble.Open(opts.Dir, po)
	if err != nil {
		return nil, fmt.Errorf("spill: open %s: %w", opts.Dir, err)
	}

	logger.Debug("spill sorter opened", "dir", opts.Dir, "schema", schema.Format(s))
	return &Sorter{db: db, codec: c, logger: logger}, nil
}

// Add encodes v and buffers it.
func (s *Sorter) Add(v value.Value) error {
	if s.closed {
		return ErrClosed
	}
	enc, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("spill: add: %w", err)
	}
	return s.put(enc)
}

// AddEncoded buffers a value that is already encoded with the sorter's codec.
// The encoding is validated by skipping over it.
func (s *Sorter) AddEncoded(enc []byte) error {
	if s.closed {
		return ErrClosed
	}
	in := codec.NewInput(enc)
	if err := s.codec.Skip(in); err != nil {
		return fmt.Errorf("spill: add encoded: %w", err)
	}
	if in.Remaining() != 0 {
		return fmt.Errorf("spill: add encoded: %d trailing bytes", in.Remaining())
	}
	return s.put(enc)
}

func (s *Sorter) put(enc []byte) error {
	s.key = makeKey(s.key[:0], enc, s.seq.Add(1))
	if err := s.db.Set(s.key, nil, pebble.NoSync); err != nil {
		return fmt.Errorf("spill: set: %w", err)
	}
	return nil
}

// Len returns the number of values added.
func (s *Sorter) Len() int {
	return int(s.seq.Load())
}

// Each calls fn with every value in ascending codec order, together with its
// encoding. Both are only valid during the call. Iteration stops at the first
// error fn returns.
func (s *Sorter) Each(fn func(enc []byte, v value.Value) error) error {
	if s.closed {
		return ErrClosed
	}
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("spill: iterate: %w", err)
	}

	var v value.Value
	for iter.First(); iter.Valid(); iter.Next() {
		enc, ok := splitKey(iter.Key())
		if !ok {
			iter.Close()
			return fmt.Errorf("spill: corrupt key %x", iter.Key())
		}
		in := codec.NewInput(enc)
		if v, err = s.codec.Read(in, v); err != nil {
			iter.Close()
			return fmt.Errorf("spill: decode: %w", err)
		}
		if err := fn(enc, v); err != nil {
			iter.Close()
			return err
		}
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return fmt.Errorf("spill: iterate: %w", err)
	}
	return iter.Close()
}

// Values returns all values in ascending codec order.
func (s *Sorter) Values() ([]value.Value, error) {
	out := make([]value.Value, 0, s.Len())
	err := s.Each(func(enc []byte, _ value.Value) error {
		v, err := s.codec.Decode(enc)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// Close releases the database. The spill files stay in Dir.
func (s *Sorter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// pebbleLogger routes pebble's log output to slog.
type pebbleLogger struct {
	logger *slog.Logger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "pebble")
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "pebble")
}

func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "pebble")
	panic(fmt.Sprintf(format, args...))
}
