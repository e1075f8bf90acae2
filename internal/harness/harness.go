package harness

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/compiler"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

// Harness holds the compiled state of one scenario run.
type Harness struct {
	schema    schema.Schema
	codec     *codec.Codec
	values    []value.Value
	encodings [][]byte
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the schema and build its codec
//  2. Parse and encode the values (a value that fails is a scenario error)
//  3. Run the enabled checks
//  4. Return result with pass/fail, encodings, order and errors
//
// The returned error reports a broken scenario; failed checks are recorded
// in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is like Run but logs check progress to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	s, err := compiler.CompileString(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	c, err := codec.NewFactory().Codec(s)
	if err != nil {
		return nil, fmt.Errorf("failed to build codec: %w", err)
	}
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint schema: %w", err)
	}

	h := &Harness{schema: s, codec: c, logger: logger}
	for i, text := range scenario.Values {
		v, err := schema.UnmarshalValue([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		enc, err := c.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %s: %w", i, text, err)
		}
		h.values = append(h.values, v)
		h.encodings = append(h.encodings, enc)
	}

	rejects := make([]value.Value, len(scenario.Rejects))
	for i, text := range scenario.Rejects {
		if rejects[i], err = schema.UnmarshalValue([]byte(text)); err != nil {
			return nil, fmt.Errorf("rejects[%d]: %w", i, err)
		}
	}

	result := NewResult()
	result.Schema = schema.Format(s)
	result.Fingerprint = fp
	for i, enc := range h.encodings {
		result.Encodings = append(result.Encodings, Encoding{
			Index: i,
			Value: jsonText(h.values[i]),
			Hex:   hex.EncodeToString(enc),
		})
	}
	result.Order = h.order()

	ctx := context.Background()
	for _, check := range AllChecks {
		if !scenario.enabled(check) {
			continue
		}
		var errs []error
		switch check {
		case CheckRoundTrip:
			errs = h.checkRoundTrip()
		case CheckRejects:
			errs = h.checkRejects(rejects)
		case CheckOrder:
			errs = h.checkOrder(scenario.Order)
		case CheckStore:
			errs = h.checkStore(ctx, scenario.Order)
		case CheckSpill:
			errs = h.checkSpill(scenario.Order)
		}
		for _, err := range errs {
			result.AddError(err.Error())
		}
		logger.Info("check completed", "scenario", scenario.Name, "check", check, "failures", len(errs))
	}

	return result, nil
}

// order returns value indices sorted by the codec comparator, stable.
func (h *Harness) order() []int {
	idx := make([]int, len(h.values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		r, err := h.codec.CompareBytes(h.encodings[a], h.encodings[b])
		if err != nil {
			return 0
		}
		return r
	})
	return idx
}
