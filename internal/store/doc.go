// Package store provides a SQLite-backed sorted spill store.
//
// A store holds runs of (key, payload) entries. Keys are values of the
// store's schema and come back from Scan in ascending codec order, which
// SQLite produces itself through a "jcodec" collation: every connection
// gets its own codec, installed by the driver's connect hook, and the
// collation compares keys with codec.Codec.CompareBytes.
//
// # Tables
//
//   - schemas: the schema document and its fingerprint. A database is bound
//     to one schema; opening it with another fails with ErrSchemaMismatch.
//   - runs: one row per run, identified by a UUIDv7.
//   - entries: (run, key, payload) with an autoincrement id. Equal keys scan
//     in insertion order.
//
// Keys are stored as hex TEXT because SQLite ignores collations on BLOBs.
// Payloads are opaque bytes, optionally zstd-compressed (see Options).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
