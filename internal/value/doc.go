// Package value provides the JSON-like value model shared by schemas and codecs.
//
// This package contains value types, their total order and their JSON forms.
// It imports nothing internal; schema and codec build on top of it.
//
// Key design constraints:
//   - Value is sealed: only the variants declared here (and schema values,
//     which embed SchemaMarker) implement it
//   - Record keys are ordered by UTF-16 code units (RFC 8785), never by Go's
//     UTF-8 string order
//   - Dates are milliseconds since the Unix epoch in UTC
//   - Decimals are finite and use a decimal128 context
package value
