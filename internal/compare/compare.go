package compare

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Compare orders a and b after normalizing both with the same case rule.
// It returns a negative number, zero or a positive number.
func Compare(a, b any, caseSensitive bool) int {
	return CompareValues(Normalize(a, caseSensitive), Normalize(b, caseSensitive))
}

// CompareValues orders two normalized values.
//
// Numbers (and dates) compare numerically, strings by code point and
// booleans false < true. Null and Absent are equal to themselves. Every other
// pairing goes through compareByString.
func CompareValues(a, b Value) int {
	switch {
	case a.Kind == KindNumber && b.Kind == KindNumber:
		return compareNumbers(a, b)
	case a.Kind == KindString && b.Kind == KindString:
		// UTF-8 byte order is code point order.
		return strings.Compare(a.Str, b.Str)
	case a.Kind == KindBool && b.Kind == KindBool:
		return compareBools(a.Bool, b.Bool)
	case a.Kind == b.Kind && (a.Kind == KindNull || a.Kind == KindAbsent):
		return 0
	}
	return compareByString(a, b)
}

func compareNumbers(a, b Value) int {
	if a.Exact && b.Exact {
		return cmp.Compare(a.Int, b.Int)
	}
	// cmp.Compare orders NaN before every other number, which keeps the
	// result antisymmetric.
	return cmp.Compare(a.Float, b.Float)
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareByString is the cross-type fallback: both values are rendered to
// strings and compared by code point. It is deterministic and never panics,
// but the order it produces between unrelated kinds is arbitrary.
func compareByString(a, b Value) int {
	return strings.Compare(representation(a), representation(b))
}

// representation renders a normalized value for the cross-type fallback.
func representation(v Value) string {
	switch v.Kind {
	case KindAbsent:
		return "undefined"
	case KindNull:
		return "null"
	case KindString:
		return v.Str
	case KindNumber:
		if v.Exact {
			return formatInt(v.Int)
		}
		return formatFloat(v.Float)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	}
	if s, ok := StringForm(v.Raw); ok {
		return s
	}
	return fmt.Sprint(v.Raw)
}

// Equal reports whether a and b are equal after normalization.
func Equal(a, b any, caseSensitive bool) bool {
	return EqualValues(Normalize(a, caseSensitive), Normalize(b, caseSensitive))
}

// EqualValues reports strict equality of two normalized values. Values of
// different kinds are never equal, so null never equals Absent and the
// string "1" never equals the number 1. Lists and objects compare element by
// element using the case rule of a.
func EqualValues(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindAbsent, KindNull:
		return true
	case KindNumber:
		if a.Exact && b.Exact {
			return a.Int == b.Int
		}
		return a.Float == b.Float && !math.IsNaN(a.Float)
	case KindString:
		return a.Str == b.Str
	case KindBool:
		return a.Bool == b.Bool
	case KindList:
		return equalLists(a, b)
	case KindObject:
		return equalObjects(a, b)
	default:
		return reflect.DeepEqual(a.Raw, b.Raw)
	}
}

func equalLists(a, b Value) bool {
	la, _ := AsList(a.Raw)
	lb, _ := AsList(b.Raw)
	if len(la) != len(lb) {
		return false
	}
	for i := range la {
		if !Equal(la[i], lb[i], a.caseSensitive) {
			return false
		}
	}
	return true
}

func equalObjects(a, b Value) bool {
	ma, okA := AsObject(a.Raw)
	mb, okB := AsObject(b.Raw)
	if !okA || !okB || len(ma) != len(mb) {
		return false
	}
	for k, va := range ma {
		vb, ok := mb[k]
		if !ok || !Equal(va, vb, a.caseSensitive) {
			return false
		}
	}
	return true
}
