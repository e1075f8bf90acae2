// Package codec implements the schema-specialized binary encoding of values.
//
// A Codec is built from a schema (New, or Factory.Codec to share sub-codecs)
// and writes, reads, skips and compares encoded values. Compare works on the
// bytes of two encodings and agrees with value.Compare on the decoded values.
//
// # Wire format
//
// Integers are varints: unsigned (uvarint) for lengths and counts, zig-zag for
// signed values. The encoding per schema kind:
//
//	constant schema        nothing
//	boolean                one byte, 0 or 1
//	long, date             zig-zag varint; uvarint of v-min when min is declared
//	decimal                zig-zag exponent, sign byte, len-prefixed big-endian coefficient
//	double                 eight bytes, big-endian IEEE 754
//	string, binary         uvarint of len-minLength (omitted when the length is fixed), bytes
//	array                  head values, uvarint of count-minRest (omitted when fixed), rest values
//	record                 [uvarint count, (len-prefixed name, value)...] only with a rest schema,
//	                       presence bitset of the optional fields, present field values
//	generic                len-prefixed type (omitted when the schema names one), len-prefixed payload
//	schema value           len-prefixed schema document
//
// Unions carry a uvarint tag. Tags below 16 hold an untyped value whose tag is
// its value.Kind; branch i of the compacted union is tagged 16+i.
//
// The format is not versioned. Producer and consumer must build their codecs
// from the same schema; schema.Fingerprint identifies it.
//
// # Errors
//
// Write fails with a mismatch (IsMismatch) when the value does not satisfy the
// schema, and rolls its output back. Read, Skip and Compare fail with
// IsMalformed errors on corrupt or truncated input, after which the input
// position is meaningless.
//
// # Concurrency
//
// Codecs own scratch buffers. Use one Codec (and one Factory) per goroutine.
package codec
