package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeJSON decodes a single JSON value.
//
// Objects decode to Record, arrays to []any, integral numbers to int64,
// all other numbers to float64, and null to nil.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode json: unexpected trailing data")
	}

	return convert(raw)
}

// DecodeRecords decodes a JSON array of objects into records.
func DecodeRecords(data []byte) ([]Record, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("decode records: top-level value must be an array, got %T", v)
	}

	records := make([]Record, len(list))
	for i, elem := range list {
		rec, ok := elem.(Record)
		if !ok {
			return nil, fmt.Errorf("decode records: element %d must be an object, got %T", i, elem)
		}
		records[i] = rec
	}
	return records, nil
}

// FromValue converts a generic decoded value (e.g. from yaml.v3) into the
// record value model: string-keyed maps become Record, nested values are
// converted recursively and integer kinds widen to int64.
func FromValue(v any) (any, error) {
	return convert(v)
}

// convert recursively normalizes a decoded value.
func convert(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, int64, float64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint64:
		return float64(val), nil
	case float32:
		return float64(val), nil
	case json.Number:
		return convertNumber(val)
	case Record:
		return convertMap(val)
	case map[string]any:
		return convertMap(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v: keys must be strings", k)
			}
			m[key] = elem
		}
		return convertMap(m)
	case []any:
		arr := make([]any, len(val))
		for i, elem := range val {
			c, err := convert(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = c
		}
		return arr, nil
	default:
		// time.Time and other opaque scalars are kept as-is.
		return val, nil
	}
}

func convertMap(m map[string]any) (Record, error) {
	out := make(Record, len(m))
	for k, elem := range m {
		c, err := convert(elem)
		if err != nil {
			return nil, fmt.Errorf("[%q]: %w", k, err)
		}
		out[k] = c
	}
	return out, nil
}

// convertNumber keeps integral numbers exact and falls back to float64.
func convertNumber(n json.Number) (any, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}
