package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/sieve/internal/listing"
	"github.com/roach88/sieve/internal/query"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/record"
)

// Find runs q over collection with the in-memory engine.
func (s *Store) Find(ctx context.Context, collection string, q query.Query, opts query.Options) (listing.Page[record.Record], error) {
	records, err := s.All(ctx, collection)
	if err != nil {
		return listing.Page[record.Record]{}, err
	}
	page, err := query.RunWith(records, q, opts)
	if err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("find in %q: %w", collection, err)
	}
	return page, nil
}

// FindPushdown runs q inside SQLite and returns the same page Find would.
// Queries the compiler cannot express exactly fall back to Find.
func (s *Store) FindPushdown(ctx context.Context, collection string, q query.Query, opts query.Options) (listing.Page[record.Record], error) {
	selectSQL, selectParams, err := s.compiler.Compile(collection, q, opts)
	if errors.Is(err, querysql.ErrUnsupported) {
		s.logger.Debug("query not expressible in SQL, running in memory",
			"collection", collection,
			"reason", err,
		)
		return s.Find(ctx, collection, q, opts)
	}
	if err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("find in %q: %w", collection, err)
	}

	countSQL, countParams, err := s.compiler.CompileCount(collection, q.Filter)
	if err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("find in %q: %w", collection, err)
	}

	// Count and page must see the same snapshot.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("find in %q: begin tx: %w", collection, err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, countSQL, countParams...).Scan(&total); err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("find in %q: count: %w", collection, err)
	}

	rows, err := tx.QueryContext(ctx, selectSQL, selectParams...)
	if err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("find in %q: select: %w", collection, err)
	}
	data, err := scanRecords(rows)
	if err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("find in %q: %w", collection, err)
	}

	s.logger.Debug("query pushed down",
		"collection", collection,
		"total", total,
		"returned", len(data),
	)

	page, limit := q.Window(opts)
	return listing.PageOf(data, total, page, limit), nil
}

// Explain returns the SQL FindPushdown would run for q. It reports
// querysql.ErrUnsupported when q would run in memory.
func (s *Store) Explain(collection string, q query.Query, opts query.Options) (string, []any, error) {
	return s.compiler.Compile(collection, q, opts)
}
