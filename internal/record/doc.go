// Package record provides the record model shared by every sieve package.
//
// A record is an opaque, JSON-shaped key/value map. Records are read-only
// from the engine's point of view: nothing in this module mutates a record
// it did not create.
//
// Key design constraints:
//   - A key that is present with a nil value is null; a key that is missing
//     (or unreachable through a nil intermediate) is Absent. The two are
//     never conflated by the resolver.
//   - JSON numbers decode to int64 when integral, float64 otherwise.
//   - Canonical JSON (sorted keys, NFC strings) is the only serialization
//     used for digests, so identical results always hash identically.
package record
