// Package listing orders and pages result sets.
package listing

import (
	"slices"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/record"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Nulls places null and absent values within one sort key.
type Nulls string

const (
	// NullsDefault sorts null and absent as the smallest value: first in
	// ascending order, last in descending order.
	NullsDefault Nulls = ""
	NullsFirst   Nulls = "first"
	NullsLast    Nulls = "last"
)

// SortSpec is one sort key. Earlier keys in a list take precedence.
//
// String values compare case-insensitively unless CaseSensitive is set.
// An empty Order means Asc.
type SortSpec struct {
	Field         string `json:"field" yaml:"field"`
	Order         Order  `json:"order,omitempty" yaml:"order,omitempty"`
	Nulls         Nulls  `json:"nulls,omitempty" yaml:"nulls,omitempty"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
}

// Sort returns a new slice with records ordered by specs. The sort is stable:
// records that tie on every key keep their input order. The input slice is
// not modified. With no specs, Sort returns a copy in input order.
func Sort[R any](records []R, specs []SortSpec) []R {
	out := slices.Clone(records)
	if len(specs) == 0 || len(out) < 2 {
		return out
	}

	// Resolve and normalize every key once up front.
	keys := make([][]compare.Value, len(records))
	idx := make([]int, len(records))
	for i, rec := range records {
		idx[i] = i
		row := make([]compare.Value, len(specs))
		for k, spec := range specs {
			row[k] = compare.Normalize(record.GetFieldValue(rec, spec.Field), spec.CaseSensitive)
		}
		keys[i] = row
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		for k, spec := range specs {
			if c := compareKey(keys[a][k], keys[b][k], spec); c != 0 {
				return c
			}
		}
		return 0
	})

	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

func compareKey(a, b compare.Value, spec SortSpec) int {
	desc := spec.Order == Desc

	an, bn := a.IsNullish(), b.IsNullish()
	if an || bn {
		if an && bn {
			return 0
		}
		// -1 when a goes first.
		first := 1
		if an {
			first = -1
		}
		switch spec.Nulls {
		case NullsFirst:
			return first
		case NullsLast:
			return -first
		}
		if desc {
			return -first
		}
		return first
	}

	c := compare.CompareValues(a, b)
	if desc {
		return -c
	}
	return c
}
