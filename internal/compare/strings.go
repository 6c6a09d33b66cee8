package compare

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sieve/internal/record"
)

// Fold returns s in NFC, lower-cased unless caseSensitive is set.
func Fold(s string, caseSensitive bool) string {
	s = norm.NFC.String(s)
	if caseSensitive {
		return s
	}
	c := lowerPool.Get().(*cases.Caser)
	defer lowerPool.Put(c)
	return c.String(s)
}

// lowerPool holds lower-casing Casers. A Caser keeps state and must not be
// used by two goroutines at once; String resets it before use.
var lowerPool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

// StringForm returns the string representation of a scalar value. Null,
// Absent, lists and objects have no string form.
func StringForm(v any) (string, bool) {
	switch val := v.(type) {
	case nil, record.AbsentValue:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano), true
	case float64:
		return formatFloat(val), true
	case float32:
		return formatFloat(float64(val)), true
	case *time.Time:
		if val == nil {
			return "", false
		}
		return val.UTC().Format(time.RFC3339Nano), true
	}

	n := Normalize(v, true)
	switch n.Kind {
	case KindString:
		return reflect.ValueOf(n.Raw).String(), true
	case KindBool:
		return strconv.FormatBool(n.Bool), true
	case KindNumber:
		if s, err := cast.ToStringE(n.Raw); err == nil {
			return s, true
		}
		if n.Exact {
			return formatInt(n.Int), true
		}
		return formatFloat(n.Float), true
	}
	return "", false
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
