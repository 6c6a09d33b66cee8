// Package querysql compiles queries to parameterized SQLite over the record
// store's records table.
//
// Conditions compile to the sieve_match SQL function and sort keys to the
// sieve_ci / sieve_cs collations. Both are registered on every connection
// opened with DriverName and call back into the in-memory engine, so SQL
// results match query.Run on the same records. The boolean structure of the
// filter, null checks, ordering and paging stay in SQL.
//
// Rules every compiled statement follows:
//   - values and JSON paths are always bound parameters, never interpolated
//   - ORDER BY always ends with seq ASC, so ties keep insertion order
//
// Filters the compiler cannot express exactly return ErrUnsupported; callers
// fall back to in-memory evaluation.
package querysql
