package filter

import (
	"strings"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/pattern"
)

// apply evaluates the operator for a resolved field value fv and a filter
// value v. The caller has already checked o.Valid.
func (o Operator) apply(fv, v any, caseSensitive bool) bool {
	switch o {
	case OpEq:
		return compare.Equal(fv, v, caseSensitive)
	case OpNeq:
		return !compare.Equal(fv, v, caseSensitive)
	case OpIsNull:
		return isNullish(fv)
	case OpIsNotNull:
		return !isNullish(fv)
	}

	if isNullish(v) {
		return false
	}

	switch o {
	case OpGt:
		return ordered(fv, v, caseSensitive, func(c int) bool { return c > 0 })
	case OpGte:
		return ordered(fv, v, caseSensitive, func(c int) bool { return c >= 0 })
	case OpLt:
		return ordered(fv, v, caseSensitive, func(c int) bool { return c < 0 })
	case OpLte:
		return ordered(fv, v, caseSensitive, func(c int) bool { return c <= 0 })
	case OpContains:
		return substring(fv, v, caseSensitive, strings.Contains)
	case OpStartsWith:
		return substring(fv, v, caseSensitive, strings.HasPrefix)
	case OpEndsWith:
		return substring(fv, v, caseSensitive, strings.HasSuffix)
	case OpLike:
		return like(fv, v, caseSensitive)
	case OpIlike:
		return like(fv, v, false)
	case OpIn:
		list, ok := compare.AsList(v)
		return ok && containsEqual(list, fv, caseSensitive)
	case OpNotIn:
		// A non-array value makes notIn unsatisfiable, the same as in.
		list, ok := compare.AsList(v)
		return ok && !containsEqual(list, fv, caseSensitive)
	case OpBetween:
		return between(fv, v, caseSensitive)
	case OpArrayContains:
		list, ok := compare.AsList(fv)
		return ok && containsEqual(list, v, caseSensitive)
	case OpArrayContainsAny:
		return arrayContainsAny(fv, v, caseSensitive)
	case OpFullText:
		return fullText(fv, v)
	}
	return false
}

func isNullish(v any) bool {
	return compare.Normalize(v, true).IsNullish()
}

// ordered never matches a null or absent field value.
func ordered(fv, v any, caseSensitive bool, accept func(int) bool) bool {
	if isNullish(fv) {
		return false
	}
	return accept(compare.Compare(fv, v, caseSensitive))
}

func substring(fv, v any, caseSensitive bool, test func(s, sub string) bool) bool {
	s, ok := compare.StringForm(fv)
	if !ok {
		return false
	}
	sub, ok := compare.StringForm(v)
	if !ok {
		return false
	}
	return test(compare.Fold(s, caseSensitive), compare.Fold(sub, caseSensitive))
}

func like(fv, v any, caseSensitive bool) bool {
	s, ok := compare.StringForm(fv)
	if !ok {
		return false
	}
	p, ok := compare.StringForm(v)
	if !ok {
		return false
	}
	return pattern.Match(s, p, caseSensitive)
}

func containsEqual(list []any, target any, caseSensitive bool) bool {
	t := compare.Normalize(target, caseSensitive)
	for _, elem := range list {
		if compare.EqualValues(compare.Normalize(elem, caseSensitive), t) {
			return true
		}
	}
	return false
}

func between(fv, v any, caseSensitive bool) bool {
	lo, hi, ok := bounds(v)
	if !ok || isNullish(fv) || isNullish(lo) || isNullish(hi) {
		return false
	}
	return compare.Compare(fv, lo, caseSensitive) >= 0 &&
		compare.Compare(fv, hi, caseSensitive) <= 0
}

// bounds extracts min and max from a Range or a {min, max} map.
func bounds(v any) (lo, hi any, ok bool) {
	switch r := v.(type) {
	case Range:
		return r.Min, r.Max, true
	case *Range:
		if r == nil {
			return nil, nil, false
		}
		return r.Min, r.Max, true
	}
	m, isMap := compare.AsObject(v)
	if !isMap {
		return nil, nil, false
	}
	lo, hasMin := m["min"]
	hi, hasMax := m["max"]
	return lo, hi, hasMin && hasMax
}

func arrayContainsAny(fv, v any, caseSensitive bool) bool {
	have, ok := compare.AsList(fv)
	if !ok {
		return false
	}
	want, ok := compare.AsList(v)
	if !ok || len(want) == 0 {
		return false
	}
	for _, w := range want {
		if containsEqual(have, w, caseSensitive) {
			return true
		}
	}
	return false
}

// fullText matches when every whitespace-delimited term of v occurs in fv,
// ignoring case. A query with no terms matches every record, including ones
// where the field is missing.
func fullText(fv, v any) bool {
	q, ok := compare.StringForm(v)
	if !ok {
		return false
	}
	terms := strings.Fields(compare.Fold(q, false))
	if len(terms) == 0 {
		return true
	}

	s, ok := compare.StringForm(fv)
	if !ok {
		return false
	}
	s = compare.Fold(s, false)
	for _, term := range terms {
		if !strings.Contains(s, term) {
			return false
		}
	}
	return true
}
