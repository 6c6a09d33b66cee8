package query

import (
	"fmt"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/listing"
)

// Validation codes (Q100-Q199)
const (
	CodeFilterNeverMatches = "Q101" // a condition that can never be true
	CodeSortFieldEmpty     = "Q102" // sort key without a field
	CodeSortOrder          = "Q103" // order other than asc/desc
	CodeSortNulls          = "Q104" // nulls other than first/last
	CodeWindow             = "Q105" // negative page or limit
	CodeLimitCapped        = "Q106" // limit above the configured maximum
	CodeSortDuplicate      = "Q107" // same field sorted twice
)

// ValidationError is one problem found in a query.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate reports every problem in q (it does not stop at the first).
// None of them prevent Run from executing; they flag queries that will not
// do what their author likely meant.
func Validate(q Query, opts Options) []ValidationError {
	var errs []ValidationError

	if q.Filter != nil {
		for _, w := range filter.Validate(q.Filter).Warnings {
			field := "filter"
			if w.Path != "" {
				field += "." + w.Path
			}
			errs = append(errs, ValidationError{
				Field:   field,
				Message: w.Message,
				Code:    CodeFilterNeverMatches,
			})
		}
	}

	seen := map[string]bool{}
	for i, s := range q.Sort {
		field := fmt.Sprintf("sort[%d]", i)
		if s.Field == "" {
			errs = append(errs, ValidationError{Field: field, Message: "field is required", Code: CodeSortFieldEmpty})
		} else if seen[s.Field] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is already sorted by an earlier key", s.Field),
				Code:    CodeSortDuplicate,
			})
		}
		seen[s.Field] = true

		switch s.Order {
		case "", listing.Asc, listing.Desc:
		default:
			errs = append(errs, ValidationError{
				Field:   field + ".order",
				Message: fmt.Sprintf("order must be asc or desc, got %q", s.Order),
				Code:    CodeSortOrder,
			})
		}
		switch s.Nulls {
		case listing.NullsDefault, listing.NullsFirst, listing.NullsLast:
		default:
			errs = append(errs, ValidationError{
				Field:   field + ".nulls",
				Message: fmt.Sprintf("nulls must be first or last, got %q", s.Nulls),
				Code:    CodeSortNulls,
			})
		}
	}

	if q.Page < 0 {
		errs = append(errs, ValidationError{Field: "page", Message: "page must be at least 1", Code: CodeWindow})
	}
	if q.Limit < 0 {
		errs = append(errs, ValidationError{Field: "limit", Message: "limit must be at least 1", Code: CodeWindow})
	}
	if opts.MaxLimit > 0 && q.Limit > opts.MaxLimit {
		errs = append(errs, ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit %d exceeds the maximum %d and will be capped", q.Limit, opts.MaxLimit),
			Code:    CodeLimitCapped,
		})
	}

	return errs
}
