package querysql

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/record"
)

// encodeValue renders a filter value as canonical JSON for sieve_match.
// Only values that decode back to an equivalent value are accepted: a
// time.Time, for example, would come back as a string and compare
// differently.
func encodeValue(v any) (string, error) {
	plain, err := jsonValue(v)
	if err != nil {
		return "", err
	}
	data, err := record.MarshalCanonical(plain)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, ErrUnsupported)
	}
	return string(data), nil
}

// jsonValue converts v into the types record.MarshalCanonical writes.
func jsonValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, int64, json.Number:
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite number: %w", ErrUnsupported)
		}
		return val, nil
	case filter.Range:
		return jsonValue(map[string]any{"min": val.Min, "max": val.Max})
	case *filter.Range:
		if val == nil {
			return nil, nil
		}
		return jsonValue(*val)
	case record.AbsentValue:
		return nil, fmt.Errorf("absent value: %w", ErrUnsupported)
	}

	if list, ok := compare.AsList(v); ok {
		out := make([]any, len(list))
		for i, elem := range list {
			c, err := jsonValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}
	if m, ok := compare.AsObject(v); ok {
		out := make(map[string]any, len(m))
		for k, elem := range m {
			c, err := jsonValue(elem)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range: %w", rv.Uint(), ErrUnsupported)
		}
		return int64(rv.Uint()), nil
	case reflect.Float32:
		return jsonValue(rv.Float())
	case reflect.String:
		return rv.String(), nil
	}
	return nil, fmt.Errorf("value of type %T: %w", v, ErrUnsupported)
}
