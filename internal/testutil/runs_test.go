package testutil

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDs_Sequence(t *testing.T) {
	ids := NewRunIDs()
	assert.Equal(t, int64(0), ids.Issued())

	assert.Equal(t, "00000000-0000-7000-8000-000000000001", ids.Generate())
	assert.Equal(t, "00000000-0000-7000-8000-000000000002", ids.Generate())
	assert.Equal(t, int64(2), ids.Issued())
}

func TestRunIDs_ParseAsUUID(t *testing.T) {
	id, err := uuid.Parse(NewRunIDs().Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestRunIDs_Reset(t *testing.T) {
	ids := NewRunIDs()
	first := ids.Generate()
	ids.Generate()

	ids.Reset()
	assert.Equal(t, int64(0), ids.Issued())
	assert.Equal(t, first, ids.Generate())
}

func TestRunIDs_ThreadSafe(t *testing.T) {
	ids := NewRunIDs()
	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	results := make([][]string, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for range perGoroutine {
				results[idx] = append(results[idx], ids.Generate())
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, rs := range results {
		for _, id := range rs {
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, goroutines*perGoroutine)
	assert.Equal(t, int64(goroutines*perGoroutine), ids.Issued())
}
