// Package spill sorts values in codec order without holding them in memory.
//
// A Sorter encodes each added value with the codec of its schema and stores
// it as a key in a pebble LSM whose comparer is the codec's byte comparator.
// Pebble flushes and compacts sorted runs to disk as needed; iterating the
// database yields the values in ascending codec order. Identical encodings
// come out in insertion order.
//
// # Key layout
//
//	uvarint len(enc) | enc | 8-byte big-endian insertion sequence
//
// The comparer orders keys by enc under the codec, then by the raw key bytes,
// so distinct keys never compare equal.
//
// Pebble calls the comparer from its own goroutines. Codecs are not safe for
// concurrent use, so the comparer draws them from a pool.
package spill
