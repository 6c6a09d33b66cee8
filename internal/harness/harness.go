package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/listing"
	"github.com/roach88/sieve/internal/query"
	"github.com/roach88/sieve/internal/record"
	"github.com/roach88/sieve/internal/store"
	"github.com/roach88/sieve/internal/testutil"
)

// Options configure scenario execution.
type Options struct {
	// Query bounds the page window. Zero means query.DefaultOptions().
	Query query.Options

	// Logger receives per-scenario debug output. Nil discards.
	Logger *slog.Logger
}

// Run executes a scenario with default options.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(context.Background(), scenario, Options{})
}

// RunWithOptions executes a scenario and returns the result.
//
// The returned error reports problems running the scenario at all (an
// unreadable records file, a store failure). A rejected query or a page
// that differs from the expectation is reported in Result instead.
func RunWithOptions(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	if opts.Query == (query.Options{}) {
		opts.Query = query.DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("scenario", scenario.Name)

	records, err := loadRecords(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult(scenario.Name)

	q, err := query.Decode(scenario.Query)
	if err == nil {
		var page listing.Page[record.Record]
		page, err = query.RunWith(records, q, opts.Query)
		if err == nil {
			if err := result.fill(page, idField(scenario)); err != nil {
				return nil, err
			}
			logger.Debug("scenario ran", "total", page.Total, "returned", len(page.Data))

			if scenario.Pushdown {
				if err := checkPushdown(ctx, records, q, opts.Query, result, logger); err != nil {
					return nil, err
				}
			}
		}
	}
	if err != nil {
		result.QueryError = err.Error()
		logger.Debug("query rejected", "error", err)
	}

	checkExpect(scenario.Expect, result)
	return result, nil
}

func (r *Result) fill(page listing.Page[record.Record], field string) error {
	for _, rec := range page.Data {
		id := record.GetFieldValue(rec, field)
		if record.IsAbsent(id) {
			id = nil
		}
		r.IDs = append(r.IDs, id)
	}
	r.Total = page.Total
	r.Page = page.Page
	r.Limit = page.Limit
	r.TotalPages = page.TotalPages
	r.HasNext = page.HasNext
	r.HasPrev = page.HasPrev

	digest, err := query.PageDigest(page)
	if err != nil {
		return fmt.Errorf("digest page: %w", err)
	}
	r.Digest = digest
	return nil
}

// checkPushdown runs q through a scratch SQLite store and requires the
// page to match the in-memory digest.
func checkPushdown(ctx context.Context, records []record.Record, q query.Query, opts query.Options, result *Result, logger *slog.Logger) error {
	st, err := store.Open(":memory:",
		store.WithClock(testutil.NewDeterministicClock()),
		store.WithIDGenerator(testutil.NewSequentialIDs("")),
		store.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	const collection = "scenario"
	inserted, err := st.Insert(ctx, collection, records)
	if err != nil {
		return fmt.Errorf("load records into store: %w", err)
	}
	if inserted.Skipped > 0 {
		result.AddError("pushdown: %d duplicate records cannot be stored", inserted.Skipped)
		return nil
	}

	page, err := st.FindPushdown(ctx, collection, q, opts)
	if err != nil {
		result.AddError("pushdown: %v", err)
		return nil
	}
	digest, err := query.PageDigest(page)
	if err != nil {
		return fmt.Errorf("digest pushdown page: %w", err)
	}
	if digest != result.Digest {
		result.AddError("pushdown: page differs from in-memory page (total %d, %d records)", page.Total, len(page.Data))
	}
	return nil
}

func checkExpect(exp Expect, r *Result) {
	if exp.Error != "" {
		if r.QueryError == "" {
			r.AddError("expected error containing %q, query succeeded", exp.Error)
		} else if !strings.Contains(r.QueryError, exp.Error) {
			r.AddError("expected error containing %q, got %q", exp.Error, r.QueryError)
		}
		return
	}
	if r.QueryError != "" {
		r.AddError("query failed: %s", r.QueryError)
		return
	}

	if !sameIDs(exp.IDs, r.IDs) {
		r.AddError("ids: expected %v, got %v", exp.IDs, r.IDs)
	}
	if exp.Total != nil && *exp.Total != r.Total {
		r.AddError("total: expected %d, got %d", *exp.Total, r.Total)
	}
	if exp.TotalPages != nil && *exp.TotalPages != r.TotalPages {
		r.AddError("total_pages: expected %d, got %d", *exp.TotalPages, r.TotalPages)
	}
	if exp.HasNext != nil && *exp.HasNext != r.HasNext {
		r.AddError("has_next: expected %t, got %t", *exp.HasNext, r.HasNext)
	}
	if exp.HasPrev != nil && *exp.HasPrev != r.HasPrev {
		r.AddError("has_prev: expected %t, got %t", *exp.HasPrev, r.HasPrev)
	}
}

// sameIDs compares ids with the engine's equality, so 1 in YAML matches an
// int64 1 decoded from JSON.
func sameIDs(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if !compare.Equal(want[i], got[i], true) {
			return false
		}
	}
	return true
}

func idField(s *Scenario) string {
	if s.IDField == "" {
		return "id"
	}
	return s.IDField
}

func loadRecords(s *Scenario) ([]record.Record, error) {
	if s.RecordsFile != "" {
		data, err := os.ReadFile(s.RecordsFile)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		records, err := record.DecodeRecords(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.RecordsFile, err)
		}
		return records, nil
	}

	records := make([]record.Record, len(s.Records))
	for i, raw := range s.Records {
		v, err := record.FromValue(raw)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		rec, ok := v.(record.Record)
		if !ok {
			return nil, fmt.Errorf("records[%d]: expected an object, got %T", i, v)
		}
		records[i] = rec
	}
	return records, nil
}
