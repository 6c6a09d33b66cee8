package record

import (
	"reflect"
	"strconv"
	"strings"
)

// Record is a single structured record: a JSON-shaped object.
type Record map[string]any

// AbsentValue is the type of Absent.
type AbsentValue struct{}

// String implements fmt.Stringer.
func (AbsentValue) String() string { return "<absent>" }

// Absent is returned by GetFieldValue when a path does not resolve.
// It is distinct from nil, which represents an explicit null.
var Absent = AbsentValue{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(AbsentValue)
	return ok
}

// IsNullish reports whether v is null or Absent.
func IsNullish(v any) bool {
	return v == nil || IsAbsent(v)
}

// Get resolves a dotted path against the record.
// See GetFieldValue.
func (r Record) Get(path string) any {
	return GetFieldValue(r, path)
}

// GetFieldValue resolves a dotted path (e.g. "user.profile.name") against
// a record.
//
// Each segment indexes into a string-keyed map, or into a slice when the
// segment is a non-negative integer. Resolution short-circuits to Absent
// on a null intermediate, a missing key, an out-of-range index or a scalar
// intermediate. It never panics.
func GetFieldValue(rec any, path string) any {
	if rec == nil {
		return Absent
	}

	var current any = rec
	for _, segment := range strings.Split(path, ".") {
		if current == nil {
			return Absent
		}
		next, ok := step(current, segment)
		if !ok {
			return Absent
		}
		current = next
	}
	return current
}

// step resolves a single path segment.
func step(current any, segment string) (any, bool) {
	switch node := current.(type) {
	case Record:
		v, ok := node[segment]
		return v, ok
	case map[string]any:
		v, ok := node[segment]
		return v, ok
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(node) {
			return nil, false
		}
		return node[idx], true
	case AbsentValue:
		return nil, false
	}

	// Other map and slice types (map[string]string, []Record, ...).
	rv := reflect.ValueOf(current)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	default:
		return nil, false
	}
}
