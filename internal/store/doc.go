// Package store provides a SQLite-backed ledger of labelling runs.
//
// Each run records the profile it used and one row per scene: accepted
// scenes carry their encoded label, content-addressed record id and split,
// skipped scenes carry the skip reason.
//
// # Ordering
//
// Runs and records are ordered by seq INTEGER (a logical clock), never by
// timestamps. Queries use ORDER BY seq ASC so results are identical across
// reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Record ids are computed by internal/ir using canonical JSON and SHA-256
// with domain separation.
package store
