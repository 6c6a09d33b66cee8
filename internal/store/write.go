package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/sieve/internal/record"
)

// ErrEmptyCollection is returned for an empty collection name.
var ErrEmptyCollection = errors.New("collection name is required")

// InsertResult reports how many records an Insert wrote.
type InsertResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Insert appends records to collection, creating the collection if needed.
//
// Records are stored as canonical JSON and deduplicated by content digest
// within the collection: a record already present is skipped, so importing
// the same data twice is idempotent. All records are written in one
// transaction; an unserializable record aborts the whole insert.
func (s *Store) Insert(ctx context.Context, collection string, records []record.Record) (InsertResult, error) {
	var res InsertResult
	if collection == "" {
		return res, fmt.Errorf("insert: %w", ErrEmptyCollection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("insert: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO collections (name, created_at)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, collection, s.now()); err != nil {
		return res, fmt.Errorf("insert: create collection %q: %w", collection, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, collection, digest, data, inserted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, digest) DO NOTHING
	`)
	if err != nil {
		return res, fmt.Errorf("insert: prepare: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		data, err := record.MarshalCanonical(rec)
		if err != nil {
			return InsertResult{}, fmt.Errorf("insert: record %d: %w", i, err)
		}
		digest, err := record.Digest(record.DomainRecord, rec)
		if err != nil {
			return InsertResult{}, fmt.Errorf("insert: record %d: %w", i, err)
		}

		result, err := stmt.ExecContext(ctx, s.ids.Generate(), collection, digest, string(data), s.now())
		if err != nil {
			return InsertResult{}, fmt.Errorf("insert: record %d: %w", i, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return InsertResult{}, fmt.Errorf("insert: record %d: rows affected: %w", i, err)
		}
		if n == 0 {
			res.Skipped++
		} else {
			res.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return InsertResult{}, fmt.Errorf("insert: commit: %w", err)
	}

	s.logger.Debug("inserted records",
		"collection", collection,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
	)
	return res, nil
}

// DropCollection deletes collection and all of its records. Dropping a
// collection that does not exist is not an error.
func (s *Store) DropCollection(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, collection); err != nil {
		return fmt.Errorf("drop collection %q: %w", collection, err)
	}
	return nil
}
