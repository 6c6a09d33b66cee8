package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/sieve/internal/record"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Collection summarizes one stored collection.
type Collection struct {
	Name      string    `json:"name"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"createdAt"`
}

// All returns every record of collection in insertion order.
// Returns an empty slice (not nil) for an unknown collection.
func (s *Store) All(ctx context.Context, collection string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data
		FROM records
		WHERE collection = ?
		ORDER BY seq ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// Get returns the record stored under id.
func (s *Store) Get(ctx context.Context, id string) (record.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", id, err)
	}
	return decodeRecord(data)
}

// Count returns the number of records in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Collections lists every collection ordered by name.
func (s *Store) Collections(ctx context.Context) ([]Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.created_at, COUNT(r.seq)
		FROM collections c
		LEFT JOIN records r ON r.collection = c.name
		GROUP BY c.name
		ORDER BY c.name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	out := []Collection{}
	for rows.Next() {
		var c Collection
		var created string
		if err := rows.Scan(&c.Name, &created, &c.Records); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("collection %q: created_at: %w", c.Name, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return out, nil
}

// scanRecords decodes a single data column per row and closes rows.
func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	defer rows.Close()

	out := []record.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func decodeRecord(data string) (record.Record, error) {
	v, err := record.DecodeJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode stored record: %w", err)
	}
	rec, ok := v.(record.Record)
	if !ok {
		return nil, fmt.Errorf("decode stored record: expected object, got %T", v)
	}
	return rec, nil
}
