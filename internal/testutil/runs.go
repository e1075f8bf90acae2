package testutil

import (
	"fmt"
	"sync"
)

// RunIDs hands out predictable run identifiers: the n-th call to Generate
// returns a UUID-shaped string ending in n. Stores created with it produce
// identical run IDs across test runs, which keeps golden output stable.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type RunIDs struct {
	mu  sync.Mutex
	seq int64
}

// NewRunIDs creates a generator whose first ID ends in 1.
func NewRunIDs() *RunIDs {
	return &RunIDs{}
}

// Generate returns the next run ID.
//
// Implements store.RunIDGenerator.
func (r *RunIDs) Generate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", r.seq)
}

// Issued returns how many IDs have been generated since the last Reset.
func (r *RunIDs) Issued() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Reset restarts the sequence so the next ID ends in 1 again.
func (r *RunIDs) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = 0
}
