package store

import (
	"context"
	"fmt"

	"github.com/roach88/jcodec/internal/value"
)

// NewRun creates an empty run and returns its ID.
func (s *Store) NewRun(ctx context.Context) (string, error) {
	id := s.runIDs.Generate()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, fingerprint) VALUES (?, ?)
	`, id, s.fingerprint)
	if err != nil {
		return "", fmt.Errorf("new run: %w", err)
	}
	s.logger.Debug("run created", "run", id)
	return id, nil
}

// Put appends an entry to run. The key must match the store's schema;
// a mismatch is reported as a codec mismatch error and nothing is written.
func (s *Store) Put(ctx context.Context, run string, key value.Value, payload []byte) error {
	s.mu.Lock()
	enc, err := s.codec.Encode(key)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return s.putEncoded(ctx, run, enc, payload)
}

// PutEncoded appends an entry whose key is already encoded with the store's
// codec. The encoding is checked before it is written.
func (s *Store) PutEncoded(ctx context.Context, run string, key []byte, payload []byte) error {
	s.mu.Lock()
	_, err := s.codec.Decode(key)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("put encoded: %w", err)
	}
	return s.putEncoded(ctx, run, key, payload)
}

func (s *Store) putEncoded(ctx context.Context, run string, key, payload []byte) error {
	data, err := marshalPayload(payload, s.compress)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (run, key, payload) VALUES (?, ?, ?)
	`, run, encodeKey(key), data)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

// PutBatch appends entries to run in one transaction. Either all entries are
// written or none.
func (s *Store) PutBatch(ctx context.Context, run string, entries []Entry) error {
	keys := make([]string, len(entries))
	payloads := make([][]byte, len(entries))
	s.mu.Lock()
	for i, e := range entries {
		enc, err := s.codec.Encode(e.Key)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("put batch: entry %d: %w", i, err)
		}
		keys[i] = encodeKey(enc)
	}
	s.mu.Unlock()
	for i, e := range entries {
		data, err := marshalPayload(e.Payload, s.compress)
		if err != nil {
			return fmt.Errorf("put batch: entry %d: %w", i, err)
		}
		payloads[i] = data
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (run, key, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		if _, err := stmt.ExecContext(ctx, run, keys[i], payloads[i]); err != nil {
			return fmt.Errorf("put batch: entry %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	return nil
}

// DeleteRun removes a run and its entries.
// Deleting a run that does not exist is not an error.
func (s *Store) DeleteRun(ctx context.Context, run string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
