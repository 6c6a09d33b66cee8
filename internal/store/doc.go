// Package store provides SQLite-backed storage for collections of JSON
// records.
//
// Each record is stored once per collection as canonical JSON, keyed by a
// content digest, so re-importing the same file is a no-op. Records keep
// the order they were inserted in: every read orders by seq ASC.
//
// Queries run two ways:
//   - Find loads the collection and runs the in-memory engine (reference
//     semantics)
//   - FindPushdown compiles the query to SQL with querysql and falls back
//     to Find when the query cannot be expressed exactly
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
