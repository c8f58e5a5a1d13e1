// Package store provides SQLite-backed build history for compiled documents.
//
// Every successful compile that is given a history database appends one
// build record: a UUIDv7 id, the logical sequence number, the compiled
// document id, the source PFS ids, the content hash and the requirement
// count. Records are never updated.
//
// # Ordering
//
//   - All ordering uses seq INTEGER (logical clock), never timestamps.
//   - All queries include ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content hashes come from ir.DocumentHash (canonical JSON and SHA-256 with
// domain separation), so rebuilding unchanged sources yields the same hash.
package store
