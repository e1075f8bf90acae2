// Package harness runs codec conformance scenarios.
//
// A scenario is a YAML file naming a schema (CUE or JSON source), values
// that match it, values it must reject and, optionally, the expected
// ascending order of the values:
//
//	name: optional-record
//	description: Optional fields and trailing-field ordering
//	schema: |
//	  type: {a: int, b?: string}
//	values:
//	  - '{"a": 1}'
//	  - '{"a": 1, "b": "x"}'
//	rejects:
//	  - '{"b": "x"}'
//	order: [0, 1]
//
// Run executes the checks:
//
//   - round_trip: decode(encode(v)) equals v and skip consumes the encoding
//   - rejects: rejected values do not match and fail to encode with a mismatch
//   - order: the byte comparator agrees with value.Compare on every pair
//   - store: the SQLite spill store scans the values in codec order
//   - spill: the pebble sorter yields the values in codec order
//
// RunWithGolden additionally snapshots the encodings as hex, with the codec
// order, under testdata/golden. Encodings are not versioned, so a golden
// diff means the wire format changed.
package harness
