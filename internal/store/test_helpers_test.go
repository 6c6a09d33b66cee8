package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/record"
	"github.com/roach88/sieve/internal/testutil"
)

const peopleJSON = `[
	{"id": 1, "name": "alice", "age": 30, "city": "London", "tags": ["admin", "ops"]},
	{"id": 2, "name": "Bob", "age": null, "city": "Paris", "tags": []},
	{"id": 3, "name": "carol", "age": 17, "city": "london", "tags": ["ops"], "scores": [3, 9]},
	{"id": 4, "name": "Dave", "age": 45, "tags": ["dev"], "scores": [7]},
	{"id": 5, "name": "Eve", "age": 30, "city": "Berlin"}
]`

// createTestStore creates a new store in a temp dir with deterministic ids
// and timestamps.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.NewSequentialIDs("rec")),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func loadPeople(t *testing.T, s *Store) []record.Record {
	t.Helper()
	recs, err := record.DecodeRecords([]byte(peopleJSON))
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), "people", recs)
	require.NoError(t, err)
	return recs
}

func ids(recs []record.Record) []any {
	out := []any{}
	for _, r := range recs {
		out = append(out, r["id"])
	}
	return out
}
