package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/testutil"
	"github.com/roach88/jcodec/internal/value"
)

// createTestStore creates a new file-backed store for s with deterministic run IDs.
func createTestStore(t *testing.T, s schema.Schema) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path, s, Options{RunIDs: testutil.NewRunIDs()})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// createTestRun creates a run and fills it with keys, using each key's
// index as its payload.
func createTestRun(t *testing.T, st *Store, keys ...value.Value) string {
	t.Helper()
	ctx := context.Background()
	run, err := st.NewRun(ctx)
	require.NoError(t, err)
	for i, k := range keys {
		require.NoError(t, st.Put(ctx, run, k, []byte{byte(i)}))
	}
	return run
}

func scanKeys(t *testing.T, st *Store, run string) []value.Value {
	t.Helper()
	entries, err := st.Entries(context.Background(), run)
	require.NoError(t, err)
	keys := make([]value.Value, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}
