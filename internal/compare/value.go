package compare

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/roach88/sieve/internal/record"
)

// Kind classifies a normalized value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
	KindOther
)

var kindNames = [...]string{"absent", "null", "bool", "number", "string", "list", "object", "other"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a normalized value ready for comparison.
type Value struct {
	Kind Kind

	// Number fields. Exact is set when the value is an integer that fits
	// in int64, in which case Int is authoritative.
	Float float64
	Int   int64
	Exact bool

	Str  string
	Bool bool

	// Raw is the original, un-normalized value.
	Raw any

	caseSensitive bool
}

// IsNullish reports whether the value is null or absent.
func (v Value) IsNullish() bool {
	return v.Kind == KindNull || v.Kind == KindAbsent
}

// Normalize converts v into its comparable form.
// Strings are folded to lower case unless caseSensitive is set.
func Normalize(v any, caseSensitive bool) Value {
	out := Value{Raw: v, caseSensitive: caseSensitive}

	switch val := v.(type) {
	case nil:
		out.Kind = KindNull
	case record.AbsentValue:
		out.Kind = KindAbsent
	case string:
		out.Kind = KindString
		out.Str = Fold(val, caseSensitive)
	case bool:
		out.Kind = KindBool
		out.Bool = val
	case int64:
		setInt(&out, val)
	case int:
		setInt(&out, int64(val))
	case float64:
		setFloat(&out, val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			setInt(&out, i)
		} else if f, err := val.Float64(); err == nil {
			setFloat(&out, f)
		} else {
			out.Kind = KindString
			out.Str = val.String()
		}
	case time.Time:
		setInt(&out, val.UnixMilli())
	case *time.Time:
		if val == nil {
			out.Kind = KindNull
		} else {
			setInt(&out, val.UnixMilli())
		}
	default:
		normalizeReflect(&out, v)
	}
	return out
}

// normalizeReflect handles named types and the remaining numeric kinds.
func normalizeReflect(out *Value, v any) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		out.Kind = KindString
		out.Str = Fold(rv.String(), out.caseSensitive)
	case reflect.Bool:
		out.Kind = KindBool
		out.Bool = rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		setInt(out, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			setInt(out, int64(u))
		} else {
			setFloat(out, float64(u))
		}
	case reflect.Float32, reflect.Float64:
		setFloat(out, rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			out.Kind = KindNull
			return
		}
		out.Kind = KindList
	case reflect.Map:
		if rv.IsNil() {
			out.Kind = KindNull
			return
		}
		out.Kind = KindObject
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			out.Kind = KindNull
			return
		}
		*out = Normalize(rv.Elem().Interface(), out.caseSensitive)
	default:
		out.Kind = KindOther
	}
}

func setInt(out *Value, i int64) {
	out.Kind = KindNumber
	out.Int = i
	out.Float = float64(i)
	out.Exact = true
}

func setFloat(out *Value, f float64) {
	out.Kind = KindNumber
	out.Float = f
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		out.Int = int64(f)
		out.Exact = true
	}
}
