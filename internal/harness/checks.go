package harness

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble/vfs"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/spill"
	"github.com/roach88/jcodec/internal/store"
	"github.com/roach88/jcodec/internal/testutil"
	"github.com/roach88/jcodec/internal/value"
)

// CheckError is returned when a check fails.
// It includes detailed context to help debug the failure.
type CheckError struct {
	Check    string // Check name for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Value    string // JSON text of the offending value, if any
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "check failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if e.Value != "" {
		fmt.Fprintf(&buf, "\n  Value: %s", e.Value)
	}
	return buf.String()
}

func jsonText(v value.Value) string {
	b, err := value.MarshalJSON(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// checkRoundTrip decodes every encoding and skips over it. The decoded value
// must compare equal to the original, though numbers come back in the kind
// of the schema. Skipping must consume exactly the encoding.
func (h *Harness) checkRoundTrip() []error {
	var errs []error
	for i, enc := range h.encodings {
		got, err := h.codec.Decode(enc)
		if err != nil {
			errs = append(errs, &CheckError{Check: CheckRoundTrip, Expected: "decodable encoding",
				Actual: err.Error(), Value: jsonText(h.values[i])})
			continue
		}
		if value.Compare(h.values[i], got) != 0 {
			errs = append(errs, &CheckError{Check: CheckRoundTrip, Expected: jsonText(h.values[i]),
				Actual: jsonText(got), Value: jsonText(h.values[i])})
		}

		in := codec.NewInput(enc)
		if err := h.codec.Skip(in); err != nil || in.Remaining() != 0 {
			errs = append(errs, &CheckError{Check: CheckRoundTrip, Expected: fmt.Sprintf("skip over %d bytes", len(enc)),
				Actual: fmt.Sprintf("stopped at %d (%v)", in.Offset(), err), Value: jsonText(h.values[i])})
		}
	}
	return errs
}

// checkRejects verifies that rejected values neither match nor encode.
func (h *Harness) checkRejects(rejects []value.Value) []error {
	var errs []error
	for _, v := range rejects {
		if schema.Matches(h.schema, v) {
			errs = append(errs, &CheckError{Check: CheckRejects, Expected: "no match",
				Actual: "schema matches", Value: jsonText(v)})
			continue
		}
		enc, err := h.codec.Encode(v)
		switch {
		case err == nil:
			errs = append(errs, &CheckError{Check: CheckRejects, Expected: "mismatch error",
				Actual: fmt.Sprintf("encoded as %x", enc), Value: jsonText(v)})
		case !codec.IsMismatch(err):
			errs = append(errs, &CheckError{Check: CheckRejects, Expected: "mismatch error",
				Actual: err.Error(), Value: jsonText(v)})
		}
	}
	return errs
}

// checkOrder compares every pair of encodings against the value order, and
// the codec order against the expected order when one is given.
func (h *Harness) checkOrder(expected []int) []error {
	var errs []error
	for i := range h.values {
		for j := range h.values {
			want := sign(value.Compare(h.values[i], h.values[j]))
			got, err := h.codec.CompareBytes(h.encodings[i], h.encodings[j])
			if err != nil {
				errs = append(errs, &CheckError{Check: CheckOrder, Expected: "comparable encodings",
					Actual: err.Error(), Value: jsonText(h.values[i])})
				continue
			}
			if sign(got) != want {
				errs = append(errs, &CheckError{Check: CheckOrder,
					Expected: fmt.Sprintf("compare(%s, %s) = %d", jsonText(h.values[i]), jsonText(h.values[j]), want),
					Actual:   fmt.Sprintf("%d", sign(got))})
			}
		}
	}
	if err := h.checkSequence(CheckOrder, expected, h.order()); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// checkSequence verifies that got, a sequence of value indices produced by
// sorting, is ascending in codec order and agrees with expected up to ties.
func (h *Harness) checkSequence(check string, expected, got []int) error {
	if len(got) != len(h.values) {
		return &CheckError{Check: check, Expected: fmt.Sprintf("%d values", len(h.values)),
			Actual: fmt.Sprintf("%d values", len(got))}
	}
	for k := 1; k < len(got); k++ {
		r, err := h.codec.CompareBytes(h.encodings[got[k-1]], h.encodings[got[k]])
		if err != nil || r > 0 {
			return &CheckError{Check: check, Expected: "ascending codec order",
				Actual: fmt.Sprintf("%s before %s", jsonText(h.values[got[k-1]]), jsonText(h.values[got[k]]))}
		}
	}
	for k, idx := range expected {
		if value.Compare(h.values[idx], h.values[got[k]]) != 0 {
			return &CheckError{Check: check, Expected: fmt.Sprintf("position %d holds %s", k, jsonText(h.values[idx])),
				Actual: jsonText(h.values[got[k]])}
		}
	}
	return nil
}

// checkStore spills the values through a SQLite store and verifies the scan order.
func (h *Harness) checkStore(ctx context.Context, expected []int) []error {
	st, err := store.Open(":memory:", h.schema, store.Options{RunIDs: testutil.NewRunIDs(), Logger: h.logger})
	if err != nil {
		return []error{fmt.Errorf("store: %w", err)}
	}
	defer st.Close()

	run, err := st.NewRun(ctx)
	if err != nil {
		return []error{fmt.Errorf("store: %w", err)}
	}
	for i, enc := range h.encodings {
		if err := st.PutEncoded(ctx, run, enc, []byte{byte(i), byte(i >> 8)}); err != nil {
			return []error{fmt.Errorf("store: put %s: %w", jsonText(h.values[i]), err)}
		}
	}

	var got []int
	err = st.Scan(ctx, run, func(e store.Entry) error {
		got = append(got, int(e.Payload[0])|int(e.Payload[1])<<8)
		return nil
	})
	if err != nil {
		return []error{fmt.Errorf("store: scan: %w", err)}
	}
	if err := h.checkSequence(CheckStore, expected, got); err != nil {
		return []error{err}
	}
	return nil
}

// checkSpill sorts the values with the pebble-backed sorter and verifies the order.
func (h *Harness) checkSpill(expected []int) []error {
	sorter, err := spill.New(h.schema, spill.Options{Dir: "spill", FS: vfs.NewMem(), Logger: h.logger})
	if err != nil {
		return []error{fmt.Errorf("spill: %w", err)}
	}
	defer sorter.Close()

	for _, enc := range h.encodings {
		if err := sorter.AddEncoded(enc); err != nil {
			return []error{fmt.Errorf("spill: %w", err)}
		}
	}

	// Map sorted encodings back to indices; identical encodings are
	// interchangeable, so take the first unused one.
	used := make([]bool, len(h.encodings))
	var got []int
	err = sorter.Each(func(enc []byte, _ value.Value) error {
		for i, e := range h.encodings {
			if !used[i] && bytes.Equal(e, enc) {
				used[i] = true
				got = append(got, i)
				return nil
			}
		}
		return fmt.Errorf("unknown encoding %x", enc)
	})
	if err != nil {
		return []error{fmt.Errorf("spill: %w", err)}
	}
	if err := h.checkSequence(CheckSpill, expected, got); err != nil {
		return []error{err}
	}
	return nil
}
