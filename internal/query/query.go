// Package query runs the filter, sort and paginate pipeline and reads query
// documents from YAML or JSON.
package query

import (
	"fmt"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/listing"
	"github.com/roach88/sieve/internal/record"
)

// Query describes one list request.
//
// Zero Page and Limit mean "use the default" (page 1, Options.DefaultLimit).
type Query struct {
	Filter filter.Filter
	Sort   []listing.SortSpec
	Page   int
	Limit  int
}

// Options bound the page window.
type Options struct {
	// DefaultLimit applies when Query.Limit is zero.
	DefaultLimit int

	// MaxLimit caps Query.Limit. Zero disables the cap.
	MaxLimit int
}

// DefaultOptions returns the built-in page window bounds.
func DefaultOptions() Options {
	return Options{DefaultLimit: 20, MaxLimit: 1000}
}

// Window resolves the page and limit a query will actually use.
func (q Query) Window(opts Options) (page, limit int) {
	page, limit = q.Page, q.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		limit = opts.MaxLimit
	}
	return page, limit
}

// Run applies q to records with DefaultOptions.
func Run(records []record.Record, q Query) (listing.Page[record.Record], error) {
	return RunWith(records, q, DefaultOptions())
}

// RunWith filters, sorts and pages records. records is not modified.
func RunWith(records []record.Record, q Query, opts Options) (listing.Page[record.Record], error) {
	matched, err := filter.Apply(records, q.Filter)
	if err != nil {
		return listing.Page[record.Record]{}, fmt.Errorf("filter: %w", err)
	}

	sorted := listing.Sort(matched, q.Sort)
	page, limit := q.Window(opts)
	return listing.Paginate(sorted, page, limit), nil
}

// Document renders q in the document shape ParseDocument accepts.
func (q Query) Document() (map[string]any, error) {
	doc := map[string]any{}
	if q.Filter != nil {
		f, err := filter.Encode(q.Filter)
		if err != nil {
			return nil, err
		}
		doc["filter"] = f
	}
	if len(q.Sort) > 0 {
		specs := make([]any, len(q.Sort))
		for i, s := range q.Sort {
			spec := map[string]any{"field": s.Field}
			if s.Order != "" {
				spec["order"] = string(s.Order)
			}
			if s.Nulls != listing.NullsDefault {
				spec["nulls"] = string(s.Nulls)
			}
			if s.CaseSensitive {
				spec["caseSensitive"] = true
			}
			specs[i] = spec
		}
		doc["sort"] = specs
	}
	if q.Page != 0 {
		doc["page"] = q.Page
	}
	if q.Limit != 0 {
		doc["limit"] = q.Limit
	}
	return doc, nil
}

// Digest identifies q. Equal queries share a digest, so it can key cached
// results together with the digest of the record set.
func (q Query) Digest() (string, error) {
	doc, err := q.Document()
	if err != nil {
		return "", err
	}
	return record.Digest(record.DomainQuery, doc)
}

// PageDocument renders a result page using the JSON field names of
// listing.Page, ready for record.MarshalCanonical.
func PageDocument(p listing.Page[record.Record]) map[string]any {
	data := make([]any, len(p.Data))
	for i, r := range p.Data {
		data[i] = r
	}
	return map[string]any{
		"data":       data,
		"total":      p.Total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": p.TotalPages,
		"hasNext":    p.HasNext,
		"hasPrev":    p.HasPrev,
	}
}

// PageDigest identifies a result page. Identical inputs always produce the
// same page and therefore the same digest.
func PageDigest(p listing.Page[record.Record]) (string, error) {
	return record.Digest(record.DomainPage, PageDocument(p))
}
