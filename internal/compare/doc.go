// Package compare normalizes heterogeneous record values and orders them.
//
// Normalization rules:
//   - strings are NFC normalized and lower-cased unless case sensitive
//   - time.Time becomes epoch milliseconds and orders as a number
//   - every Go integer and float kind (and json.Number) is a number
//   - booleans order false < true
//   - null and Absent are distinct kinds
//
// Ordering is total within a kind. Across kinds, Compare falls back to
// comparing string representations (see compareByString). That fallback is
// best effort: it is deterministic and never panics, but it is not a
// principled total order and callers must not rely on its results.
package compare
