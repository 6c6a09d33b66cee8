package query

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/ast"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/listing"
	"github.com/roach88/sieve/internal/record"
)

// Format is a query document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks a format from a file extension. Anything that is not
// .json is read as YAML, which also accepts most JSON.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadDocument reads and parses a query document from disk.
func LoadDocument(path string) (Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Query{}, fmt.Errorf("read query: %w", err)
	}
	return ParseDocument(data, FormatForPath(path), path)
}

// ParseDocument validates data against the #Query schema and decodes it.
// name labels positions in schema errors. An empty document is the empty
// query, which returns the first page of every record.
func ParseDocument(data []byte, format Format, name string) (Query, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Query{}, nil
	}

	schema, err := defaultSchema()
	if err != nil {
		return Query{}, err
	}

	file, err := extract(data, format, name)
	if err != nil {
		return Query{}, err
	}
	if err := schema.ValidateFile(file); err != nil {
		return Query{}, err
	}

	doc, err := decodeRaw(data, format)
	if err != nil {
		return Query{}, err
	}
	return FromMap(doc)
}

// extract parses data into a CUE syntax tree, keeping source positions.
func extract(data []byte, format Format, name string) (*ast.File, error) {
	switch format {
	case FormatJSON:
		expr, err := cuejson.Extract(name, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.File{Filename: name, Decls: []ast.Decl{&ast.EmbedDecl{Expr: expr}}}, nil
	case FormatYAML:
		f, err := cueyaml.Extract(name, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

func decodeRaw(data []byte, format Format) (record.Record, error) {
	var raw any
	switch format {
	case FormatJSON:
		v, err := record.DecodeJSON(data)
		if err != nil {
			return nil, err
		}
		raw = v
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	v, err := record.FromValue(raw)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return record.Record{}, nil
	}
	doc, ok := v.(record.Record)
	if !ok {
		return nil, fmt.Errorf("query document must be an object, got %T", v)
	}
	return doc, nil
}

// FromMap builds a Query from a decoded document. It enforces the same
// shape as the schema without needing CUE, for callers that embed queries
// inside other documents.
func FromMap(doc map[string]any) (Query, error) {
	var q Query
	for key := range doc {
		switch key {
		case "filter", "sort", "page", "limit":
		default:
			return q, fmt.Errorf("unknown query key %q", key)
		}
	}

	if raw, ok := doc["filter"]; ok && raw != nil {
		f, err := filter.Decode(raw)
		if err != nil {
			return q, fmt.Errorf("filter: %w", err)
		}
		q.Filter = f
	}

	if raw, ok := doc["sort"]; ok && raw != nil {
		specs, err := decodeSort(raw)
		if err != nil {
			return q, err
		}
		q.Sort = specs
	}

	var err error
	if q.Page, err = positiveInt(doc, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = positiveInt(doc, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func decodeSort(raw any) ([]listing.SortSpec, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("sort must be an array, got %T", raw)
	}
	specs := make([]listing.SortSpec, len(list))
	for i, elem := range list {
		m, ok := elem.(record.Record)
		if !ok {
			if plain, isMap := elem.(map[string]any); isMap {
				m = plain
			} else {
				return nil, fmt.Errorf("sort[%d] must be an object, got %T", i, elem)
			}
		}
		spec, err := decodeSortSpec(m)
		if err != nil {
			return nil, fmt.Errorf("sort[%d]: %w", i, err)
		}
		specs[i] = spec
	}
	return specs, nil
}

func decodeSortSpec(m map[string]any) (listing.SortSpec, error) {
	var s listing.SortSpec
	for key, val := range m {
		switch key {
		case "field":
			field, ok := val.(string)
			if !ok || field == "" {
				return s, fmt.Errorf("field must be a non-empty string")
			}
			s.Field = field
		case "order":
			order, _ := val.(string)
			switch listing.Order(order) {
			case listing.Asc, listing.Desc:
				s.Order = listing.Order(order)
			default:
				return s, fmt.Errorf("order must be asc or desc, got %v", val)
			}
		case "nulls":
			nulls, _ := val.(string)
			switch listing.Nulls(nulls) {
			case listing.NullsFirst, listing.NullsLast:
				s.Nulls = listing.Nulls(nulls)
			default:
				return s, fmt.Errorf("nulls must be first or last, got %v", val)
			}
		case "caseSensitive":
			cs, ok := val.(bool)
			if !ok {
				return s, fmt.Errorf("caseSensitive must be a boolean")
			}
			s.CaseSensitive = cs
		default:
			return s, fmt.Errorf("unknown sort key %q", key)
		}
	}
	if s.Field == "" {
		return s, fmt.Errorf("field is required")
	}
	return s, nil
}

func positiveInt(doc map[string]any, key string) (int, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return 0, nil
	}
	var n int64
	switch v := raw.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		n = int64(v)
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", key, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", key, n)
	}
	return int(n), nil
}

// Decode validates an already decoded document against #Query and builds
// a Query. Scenario files embed queries this way. A nil document is the
// empty query.
func Decode(doc any) (Query, error) {
	if doc == nil {
		return Query{}, nil
	}
	v, err := record.FromValue(doc)
	if err != nil {
		return Query{}, fmt.Errorf("query: %w", err)
	}
	m, ok := v.(record.Record)
	if !ok {
		return Query{}, fmt.Errorf("query: expected a mapping, got %T", doc)
	}

	schema, err := defaultSchema()
	if err != nil {
		return Query{}, err
	}
	if err := schema.ValidateValue(map[string]any(m)); err != nil {
		return Query{}, err
	}
	return FromMap(m)
}
