package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/listing"
	"github.com/roach88/sieve/internal/record"
)

func loadPeople(t *testing.T) []record.Record {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "people.json"))
	require.NoError(t, err)
	recs, err := record.DecodeRecords(data)
	require.NoError(t, err)
	return recs
}

func TestRun_Golden(t *testing.T) {
	people := loadPeople(t)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, name := range []string{"adults.yaml", "london.json", "nulls.yaml"} {
		t.Run(name, func(t *testing.T) {
			q, err := LoadDocument(filepath.Join("testdata", "queries", name))
			require.NoError(t, err)

			page, err := Run(people, q)
			require.NoError(t, err)

			out, err := record.MarshalCanonical(PageDocument(page))
			require.NoError(t, err)
			g.Assert(t, name[:len(name)-len(filepath.Ext(name))], out)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	people := loadPeople(t)
	q, err := LoadDocument(filepath.Join("testdata", "queries", "nulls.yaml"))
	require.NoError(t, err)

	first, err := Run(people, q)
	require.NoError(t, err)
	want, err := PageDigest(first)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		page, err := Run(people, q)
		require.NoError(t, err)
		got, err := PageDigest(page)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	people := loadPeople(t)
	before := record.MustDigest(record.DomainRecord, people)

	_, err := Run(people, Query{
		Filter: filter.Where("age", filter.OpGt, 0),
		Sort:   []listing.SortSpec{{Field: "age", Order: listing.Desc}},
	})
	require.NoError(t, err)
	assert.Equal(t, before, record.MustDigest(record.DomainRecord, people))
}

func TestRun_FilterError(t *testing.T) {
	_, err := Run(loadPeople(t), Query{Filter: filter.Compound{Operator: "xor"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, filter.ErrUnknownLogicalOperator)
}

func TestRun_NoFilterPagesEverything(t *testing.T) {
	page, err := RunWith(loadPeople(t), Query{Page: 2}, Options{DefaultLimit: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(5), page.Data[0]["id"])
}

func TestWindow(t *testing.T) {
	opts := Options{DefaultLimit: 20, MaxLimit: 50}

	page, limit := Query{}.Window(opts)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	page, limit = Query{Page: 3, Limit: 500}.Window(opts)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)

	_, limit = Query{Limit: 500}.Window(Options{DefaultLimit: 20})
	assert.Equal(t, 500, limit, "no cap when MaxLimit is zero")
}

func TestDocument_RoundTrip(t *testing.T) {
	q := Query{
		Filter: filter.AllOf(
			filter.Where("age", filter.OpBetween, filter.Range{Min: int64(18), Max: int64(65)}),
			filter.Where("name", filter.OpIsNotNull, record.Absent),
		),
		Sort:  []listing.SortSpec{{Field: "age", Order: listing.Desc, Nulls: listing.NullsFirst, CaseSensitive: true}},
		Page:  2,
		Limit: 5,
	}

	doc, err := q.Document()
	require.NoError(t, err)

	back, err := FromMap(doc)
	require.NoError(t, err)
	assert.Equal(t, q.Sort, back.Sort)
	assert.Equal(t, 2, back.Page)
	assert.Equal(t, 5, back.Limit)

	d1, err := q.Digest()
	require.NoError(t, err)
	d2, err := back.Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestDigest_DiffersByQuery(t *testing.T) {
	a, err := Query{Limit: 5}.Digest()
	require.NoError(t, err)
	b, err := Query{Limit: 6}.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseDocument_Empty(t *testing.T) {
	q, err := ParseDocument([]byte("  \n"), FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, Query{}, q)
}

func TestParseDocument_SchemaErrors(t *testing.T) {
	for _, name := range []string{"bad_operator.yaml", "bad_sort.yaml", "unknown_key.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadDocument(filepath.Join("testdata", "queries", name))
			require.Error(t, err)

			var se *SchemaError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestParseDocument_SchemaErrorInline(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
	}{
		{"page zero", `page: 0`, FormatYAML},
		{"limit string", `{"limit": "ten"}`, FormatJSON},
		{"empty field", `filter: {field: "", operator: eq, value: 1}`, FormatYAML},
		{"logical op on condition", `filter: {field: a, operator: and}`, FormatYAML},
		{"nulls value", `sort: [{field: a, nulls: middle}]`, FormatYAML},
		{"top-level list", `[1, 2]`, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.src), tt.format, "inline")
			require.Error(t, err)
		})
	}
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	_, err := ParseDocument([]byte(`{"limit": `), FormatJSON, "broken.json")
	require.Error(t, err)
}

func TestParseDocument_ValueForms(t *testing.T) {
	src := `
filter:
  operator: and
  conditions:
    - {field: deleted_at, operator: eq, value: null}
    - {field: name, operator: like, value: "A%", caseSensitive: true}
    - {field: tags, operator: in, value: [a, b]}
    - {field: score, operator: between, value: {min: 1.5, max: 10}}
`
	q, err := ParseDocument([]byte(src), FormatYAML, "forms.yaml")
	require.NoError(t, err)

	want := filter.AllOf(
		filter.Where("deleted_at", filter.OpEq, nil),
		filter.Condition{Field: "name", Operator: filter.OpLike, Value: "A%", CaseSensitive: true},
		filter.Where("tags", filter.OpIn, []any{"a", "b"}),
		filter.Where("score", filter.OpBetween, record.Record{"min": 1.5, "max": int64(10)}),
	)
	assert.Equal(t, want, q.Filter)
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"unknown key", map[string]any{"offset": 1}},
		{"bad filter", map[string]any{"filter": map[string]any{"x": 1}}},
		{"sort not list", map[string]any{"sort": "name"}},
		{"sort element", map[string]any{"sort": []any{"name"}}},
		{"sort no field", map[string]any{"sort": []any{map[string]any{"order": "asc"}}}},
		{"sort unknown key", map[string]any{"sort": []any{map[string]any{"field": "a", "dir": "asc"}}}},
		{"page float", map[string]any{"page": 1.5}},
		{"page zero", map[string]any{"page": 0}},
		{"limit string", map[string]any{"limit": "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("q.JSON"))
	assert.Equal(t, FormatYAML, FormatForPath("q.yml"))
	assert.Equal(t, FormatYAML, FormatForPath("q"))
}

func TestSchemaError_Format(t *testing.T) {
	err := &SchemaError{Field: "sort.0.order", Message: "conflicting values"}
	assert.Equal(t, "sort.0.order: conflicting values", err.Error())
}

func TestDecode(t *testing.T) {
	doc := map[string]any{
		"filter": map[string]any{"field": "age", "operator": "gte", "value": 18},
		"sort":   []any{map[string]any{"field": "name", "order": "desc"}},
		"limit":  5,
	}
	q, err := Decode(doc)
	require.NoError(t, err)

	assert.Equal(t, filter.Condition{Field: "age", Operator: filter.OpGte, Value: int64(18)}, q.Filter)
	assert.Equal(t, []listing.SortSpec{{Field: "name", Order: listing.Desc}}, q.Sort)
	assert.Equal(t, 5, q.Limit)
}

func TestDecode_Nil(t *testing.T) {
	q, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Query{}, q)
}

func TestDecode_SchemaViolation(t *testing.T) {
	_, err := Decode(map[string]any{"limit": 0})
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	_, err = Decode([]any{1})
	assert.Error(t, err)
}
