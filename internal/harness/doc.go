// Package harness runs conformance scenarios against the query pipeline.
//
// A scenario pairs a record set with a query document and the page it must
// produce. Scenarios double as executable documentation of the filter
// semantics and as regression tests through golden snapshots.
//
// # Scenario Format
//
//	name: adults_by_age
//	description: "Adults ordered oldest first"
//	records_file: people.json   # or inline: records: [{id: 1, ...}]
//	id_field: id                # defaults to "id"
//	pushdown: true              # also run through SQLite and compare
//	query:
//	  filter: {field: age, operator: gte, value: 18}
//	  sort: [{field: age, order: desc}]
//	  limit: 2
//	expect:
//	  ids: [5, 1]
//	  total: 3
//	  total_pages: 2
//	  has_next: true
//
// A scenario that expects the query to be rejected sets expect.error to a
// substring of the error message instead of ids.
//
// # Deterministic Testing
//
// Pushdown scenarios load their records into a fresh in-memory store with a
// deterministic clock and sequential ids (testutil), so reruns are
// byte-identical and snapshots can be compared with golden files.
package harness
