// Package schema provides the structural type system over values.
//
// A Schema is a closed sum type: one struct per variant (Any, Null, Boolean,
// Long, Decimal, Double, String, Binary, Date, Array, Record, Or, Generic,
// SchemaType). Every question asked of a schema is an exhaustive type switch:
// Matches, Kinds, IsConstant, IsNullable, Validate and the document form.
//
// # Lifecycle
//
// Schemas are immutable once constructed and may be shared freely, including
// across goroutines. Constructors (NewLong, NewRecord, NewOr, ...) validate their
// input and return *Error on malformed ranges, duplicate fields or empty unions.
// Trees assembled from struct literals must be checked with Validate before use;
// the codec factory does this itself.
//
// # Documents
//
// Every schema has a canonical JSON document (MarshalDoc) from which it can be
// rebuilt (ParseDoc). A node is either a kind name:
//
//	"long"
//
// or an object with exactly one kind key:
//
//	{"record": {"fields": [{"name": "id", "schema": {"long": {"min": 0}}},
//	                       {"name": "note", "schema": "string", "optional": true}]}}
//
// Fingerprint hashes the canonical document, so two processes that build the
// same schema derive byte-identical codecs.
//
// # Lengths
//
// String and binary lengths are byte lengths (UTF-8 for strings).
package schema
