package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/jcodec/internal/value"
)

// Entry is one key/payload pair of a run.
type Entry struct {
	Key     value.Value
	Payload []byte
}

// Range bounds a scan. Nil bounds are open.
type Range struct {
	// From is the inclusive lower bound.
	From value.Value

	// To is the exclusive upper bound.
	To value.Value
}

// Scan calls fn for every entry of run in ascending codec order of the keys.
// Entries with equal keys come in insertion order. Iteration stops at the
// first error fn returns. The scan holds the store's only connection, so fn
// must not call back into the store.
func (s *Store) Scan(ctx context.Context, run string, fn func(Entry) error) error {
	return s.ScanRange(ctx, run, Range{}, fn)
}

// ScanRange is like Scan restricted to keys within r.
func (s *Store) ScanRange(ctx context.Context, run string, r Range, fn func(Entry) error) error {
	var query strings.Builder
	query.WriteString(`SELECT key, payload FROM entries WHERE run = ?`)
	args := []any{run}

	s.mu.Lock()
	for _, b := range []struct {
		v  value.Value
		op string
	}{{r.From, ">="}, {r.To, "<"}} {
		if b.v == nil {
			continue
		}
		enc, err := s.codec.Encode(b.v)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("scan: bound: %w", err)
		}
		fmt.Fprintf(&query, ` AND key %s ?`, b.op)
		args = append(args, encodeKey(enc))
	}
	s.mu.Unlock()
	query.WriteString(` ORDER BY key ASC, id ASC`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	defer rows.Close()

	var buf []byte
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		buf, err = decodeKey(buf[:0], key)
		if err != nil {
			return fmt.Errorf("scan: corrupt key: %w", err)
		}
		s.mu.Lock()
		k, err := s.codec.Decode(buf)
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		payload, err := unmarshalPayload(data)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := fn(Entry{Key: k, Payload: payload}); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}
	return nil
}

// Entries returns every entry of run in scan order.
// Returns an empty slice (not nil) for an empty or unknown run.
func (s *Store) Entries(ctx context.Context, run string) ([]Entry, error) {
	entries := []Entry{}
	err := s.Scan(ctx, run, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries in run.
func (s *Store) Count(ctx context.Context, run string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE run = ?`, run).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Runs returns the IDs of all runs, in ascending ID order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
