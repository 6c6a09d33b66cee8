package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/record"
)

func eval(t *testing.T, f Filter, rec record.Record) bool {
	t.Helper()
	ok, err := Evaluate(f, rec)
	require.NoError(t, err)
	return ok
}

func TestEvaluateCondition_Between(t *testing.T) {
	c := Where("age", OpBetween, Range{Min: 18, Max: 65})

	for age, want := range map[int]bool{18: true, 65: true, 17: false, 66: false, 40: true} {
		ok, err := EvaluateCondition(c, record.Record{"age": age})
		require.NoError(t, err)
		assert.Equal(t, want, ok, "age %d", age)
	}
}

func TestEvaluateCondition_BetweenShapes(t *testing.T) {
	rec := record.Record{"age": int64(30)}

	assert.True(t, eval(t, Where("age", OpBetween, map[string]any{"min": 18, "max": 65}), rec))
	assert.True(t, eval(t, Where("age", OpBetween, &Range{Min: 30, Max: 30}), rec))
	assert.False(t, eval(t, Where("age", OpBetween, []any{18, 65}), rec), "array is not a range")
	assert.False(t, eval(t, Where("age", OpBetween, map[string]any{"min": 18}), rec), "missing max")
	assert.False(t, eval(t, Where("age", OpBetween, Range{Min: nil, Max: 65}), rec), "null bound")
	assert.False(t, eval(t, Where("missing", OpBetween, Range{Min: 0, Max: 65}), rec), "absent field")
}

func TestEvaluateCondition_Like(t *testing.T) {
	c := Where("name", OpLike, "J_hn")
	assert.True(t, eval(t, c, record.Record{"name": "John"}))
	assert.False(t, eval(t, c, record.Record{"name": "Johnn"}))
	assert.True(t, eval(t, c, record.Record{"name": "john"}), "like folds case by default")

	c.CaseSensitive = true
	assert.False(t, eval(t, c, record.Record{"name": "john"}))
}

func TestEvaluateCondition_IlikeIgnoresCaseSensitive(t *testing.T) {
	c := Condition{Field: "name", Operator: OpIlike, Value: "JO%", CaseSensitive: true}
	assert.True(t, eval(t, c, record.Record{"name": "john"}))
}

func TestEvaluateCondition_InAndNotIn(t *testing.T) {
	rec := record.Record{"x": "anything"}

	assert.False(t, eval(t, Where("x", OpIn, []any{}), rec))
	assert.True(t, eval(t, Where("x", OpNotIn, []any{}), rec))

	assert.True(t, eval(t, Where("x", OpIn, []string{"other", "ANYTHING"}), rec))
	assert.False(t, eval(t, Where("x", OpNotIn, []any{"anything"}), rec))

	// Non-array values never match either operator.
	assert.False(t, eval(t, Where("x", OpIn, "anything"), rec))
	assert.False(t, eval(t, Where("x", OpNotIn, "anything"), rec))
}

func TestEvaluateCondition_InNumbers(t *testing.T) {
	rec := record.Record{"n": int64(2)}
	assert.True(t, eval(t, Where("n", OpIn, []int{1, 2, 3}), rec))
	assert.True(t, eval(t, Where("n", OpIn, []any{2.0}), rec))
	assert.False(t, eval(t, Where("n", OpIn, []any{"2"}), rec))
}

func TestEvaluateCondition_EqNullVsAbsent(t *testing.T) {
	withNull := record.Record{"deleted_at": nil}
	without := record.Record{}

	isNil := Where("deleted_at", OpEq, nil)
	assert.True(t, eval(t, isNil, withNull))
	assert.False(t, eval(t, isNil, without))

	isAbsent := Where("deleted_at", OpEq, record.Absent)
	assert.False(t, eval(t, isAbsent, withNull))
	assert.True(t, eval(t, isAbsent, without))

	assert.True(t, eval(t, Where("deleted_at", OpNeq, nil), without))
}

func TestEvaluateCondition_EqCaseRule(t *testing.T) {
	rec := record.Record{"role": "Admin"}
	assert.True(t, eval(t, Where("role", OpEq, "admin"), rec))
	assert.False(t, eval(t, Condition{Field: "role", Operator: OpEq, Value: "admin", CaseSensitive: true}, rec))
	assert.True(t, eval(t, Where("role", OpNeq, "user"), rec))
	assert.False(t, eval(t, Where("role", OpEq, 1), rec))
}

func TestEvaluateCondition_IsNull(t *testing.T) {
	var nilPtr *string
	tests := []struct {
		name string
		rec  record.Record
		want bool
	}{
		{"null", record.Record{"v": nil}, true},
		{"absent", record.Record{}, true},
		{"nil pointer", record.Record{"v": nilPtr}, true},
		{"zero", record.Record{"v": 0}, false},
		{"empty string", record.Record{"v": ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, Where("v", OpIsNull, nil), tt.rec))
			assert.Equal(t, !tt.want, eval(t, Where("v", OpIsNotNull, nil), tt.rec))
		})
	}
}

func TestEvaluateCondition_Ordered(t *testing.T) {
	rec := record.Record{"age": int64(30), "name": "Mia", "score": 9.5}

	tests := []struct {
		cond Condition
		want bool
	}{
		{Where("age", OpGt, 29), true},
		{Where("age", OpGt, 30), false},
		{Where("age", OpGte, 30), true},
		{Where("age", OpLt, 30.5), true},
		{Where("age", OpLte, 29.9), false},
		{Where("score", OpGt, int64(9)), true},
		{Where("name", OpGt, "alex"), true},
		{Where("name", OpLt, "ZED"), true},
		{Where("age", OpGt, nil), false},
		{Where("age", OpLt, record.Absent), false},
		{Where("missing", OpLt, 100), false},
		{Where("missing", OpGt, -100), false},
	}
	for _, tt := range tests {
		t.Run(String(tt.cond), func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.cond, rec))
		})
	}
}

// A null or missing field never satisfies an ordered operator, even though
// the cross-type fallback of compare.Compare would rank "null" above "18".
func TestEvaluateCondition_OrderedNullishField(t *testing.T) {
	records := []record.Record{
		{"age": nil},
		{},
		{"age": record.Absent},
	}
	conds := []Condition{
		Where("age", OpGt, 18),
		Where("age", OpGte, 18),
		Where("age", OpLt, 18),
		Where("age", OpLte, 18),
		Where("age", OpGt, "a"),
		Where("age", OpLt, "zzz"),
		Where("age", OpBetween, Range{Min: 0, Max: 200}),
		Where("age", OpBetween, Range{Min: "a", Max: "z"}),
	}
	for _, rec := range records {
		for _, c := range conds {
			assert.False(t, eval(t, c, rec), "%s on %v", String(c), rec)
		}
	}

	assert.Positive(t, compare.Compare(nil, 18, false), "fallback orders by string form")

	// The negation is how callers select records without a comparable value.
	assert.True(t, eval(t, NoneOf(Where("age", OpGte, 18)), record.Record{"age": nil}))
}

func TestEvaluateCondition_Dates(t *testing.T) {
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := record.Record{"created": created}

	assert.True(t, eval(t, Where("created", OpGt, created.Add(-time.Hour)), rec))
	assert.True(t, eval(t, Where("created", OpEq, created), rec))
	assert.True(t, eval(t, Where("created", OpBetween, Range{
		Min: created.AddDate(0, -1, 0),
		Max: created.AddDate(0, 1, 0),
	}), rec))
}

func TestEvaluateCondition_Substrings(t *testing.T) {
	rec := record.Record{"title": "Hello World", "n": int64(12345), "nil": nil}

	assert.True(t, eval(t, Where("title", OpContains, "lo wo"), rec))
	assert.True(t, eval(t, Where("title", OpStartsWith, "HELLO"), rec))
	assert.True(t, eval(t, Where("title", OpEndsWith, "world"), rec))
	assert.False(t, eval(t, Condition{Field: "title", Operator: OpContains, Value: "world", CaseSensitive: true}, rec))

	assert.True(t, eval(t, Where("n", OpStartsWith, "123"), rec), "numbers have a string form")
	assert.True(t, eval(t, Where("n", OpContains, 34), rec))
	assert.False(t, eval(t, Where("nil", OpContains, ""), rec))
	assert.False(t, eval(t, Where("missing", OpContains, ""), rec))
	assert.False(t, eval(t, Where("title", OpContains, nil), rec))
	assert.False(t, eval(t, Where("title", OpContains, []any{"Hello"}), rec))
}

func TestEvaluateCondition_ArrayContains(t *testing.T) {
	rec := record.Record{"tags": []any{"Go", "Rust"}, "nums": []int{1, 2}, "name": "go"}

	assert.True(t, eval(t, Where("tags", OpArrayContains, "go"), rec))
	assert.False(t, eval(t, Where("tags", OpArrayContains, "zig"), rec))
	assert.True(t, eval(t, Where("nums", OpArrayContains, 2.0), rec))
	assert.False(t, eval(t, Where("name", OpArrayContains, "go"), rec), "field is not an array")
	assert.False(t, eval(t, Where("tags", OpArrayContains, nil), rec))
}

func TestEvaluateCondition_ArrayContainsAny(t *testing.T) {
	rec := record.Record{"tags": []any{"go", "rust"}, "name": "go"}

	assert.True(t, eval(t, Where("tags", OpArrayContainsAny, []any{"zig", "RUST"}), rec))
	assert.False(t, eval(t, Where("tags", OpArrayContainsAny, []any{"zig"}), rec))
	assert.False(t, eval(t, Where("tags", OpArrayContainsAny, []any{}), rec), "empty value")
	assert.False(t, eval(t, Where("tags", OpArrayContainsAny, "go"), rec), "value is not an array")
	assert.False(t, eval(t, Where("name", OpArrayContainsAny, []any{"go"}), rec), "field is not an array")
}

func TestEvaluateCondition_FullText(t *testing.T) {
	rec := record.Record{"body": "The Quick brown fox", "n": nil}

	assert.True(t, eval(t, Where("body", OpFullText, "quick FOX"), rec))
	assert.False(t, eval(t, Where("body", OpFullText, "quick dog"), rec))
	assert.True(t, eval(t, Condition{Field: "body", Operator: OpFullText, Value: "QUICK", CaseSensitive: true}, rec))

	// Zero terms: every term trivially matches.
	assert.True(t, eval(t, Where("body", OpFullText, ""), rec))
	assert.True(t, eval(t, Where("body", OpFullText, "  \t "), rec))
	assert.True(t, eval(t, Where("missing", OpFullText, ""), rec))

	assert.False(t, eval(t, Where("n", OpFullText, "fox"), rec))
	assert.False(t, eval(t, Where("body", OpFullText, nil), rec))
}

func TestEvaluateCondition_NestedPaths(t *testing.T) {
	rec := record.Record{"user": record.Record{"profile": map[string]any{"name": "Ada"}}}
	assert.True(t, eval(t, Where("user.profile.name", OpEq, "ada"), rec))
	assert.True(t, eval(t, Where("user.profile.age", OpIsNull, nil), rec))
	assert.False(t, eval(t, Where("user.settings.theme", OpEq, "dark"), rec))
}

func TestEvaluateCondition_UnknownOperator(t *testing.T) {
	_, err := EvaluateCondition(Where("x", Operator("regex"), ".*"), record.Record{"x": "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownOperator)
	assert.True(t, IsUnknownOperator(err))
	assert.Contains(t, err.Error(), "regex")
}

func TestEvaluateCompound_NotIsNegatedConjunction(t *testing.T) {
	f := NoneOf(
		Where("role", OpEq, "admin"),
		Where("active", OpEq, true),
	)

	ok, err := EvaluateCompound(f, record.Record{"role": "admin", "active": true})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = EvaluateCompound(f, record.Record{"role": "admin", "active": false})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateCompound(f, record.Record{"role": "user", "active": false})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateCompound_Vacuous(t *testing.T) {
	rec := record.Record{}
	assert.True(t, eval(t, AllOf(), rec))
	assert.False(t, eval(t, AnyOf(), rec))
	assert.False(t, eval(t, NoneOf(), rec))
}

func TestEvaluateCompound_AndOr(t *testing.T) {
	rec := record.Record{"a": 1, "b": 2}
	yes := Where("a", OpEq, 1)
	no := Where("b", OpEq, 3)

	assert.True(t, eval(t, AllOf(yes, yes), rec))
	assert.False(t, eval(t, AllOf(yes, no), rec))
	assert.True(t, eval(t, AnyOf(no, yes), rec))
	assert.False(t, eval(t, AnyOf(no, no), rec))
	assert.True(t, eval(t, NoneOf(no), rec))
	assert.False(t, eval(t, NoneOf(yes), rec))
}

func TestEvaluateCompound_DeepNesting(t *testing.T) {
	var f Filter = Where("x", OpEq, 1)
	for i := 0; i < 200; i++ {
		f = &Compound{Operator: And, Conditions: []Filter{f}}
	}
	assert.True(t, eval(t, f, record.Record{"x": 1}))
}

func TestEvaluateCompound_UnknownLogicalOperator(t *testing.T) {
	f := AllOf(Compound{Operator: "xor", Conditions: nil})

	_, err := Evaluate(f, record.Record{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownLogicalOperator)
	assert.Contains(t, err.Error(), `"xor"`)
	assert.Contains(t, err.Error(), "conditions[0]")
}

func TestEvaluate_Malformed(t *testing.T) {
	var nilCond *Condition
	var nilComp *Compound

	for name, f := range map[string]Filter{"nil": nil, "nil condition": nilCond, "nil compound": nilComp} {
		t.Run(name, func(t *testing.T) {
			_, err := Evaluate(f, record.Record{})
			assert.ErrorIs(t, err, ErrMalformedFilter)
			assert.True(t, IsMalformed(err))
		})
	}

	_, err := Evaluate(AnyOf(nil), record.Record{})
	assert.ErrorIs(t, err, ErrMalformedFilter)
}

func TestEvaluate_PointerVariants(t *testing.T) {
	rec := record.Record{"a": 1}
	assert.True(t, eval(t, &Condition{Field: "a", Operator: OpEq, Value: 1}, rec))
	assert.True(t, eval(t, &Compound{Operator: Or, Conditions: []Filter{Where("a", OpEq, 1)}}, rec))
}

func TestError_IsMatchesCodeOnly(t *testing.T) {
	err := unknownOperator("bogus", "conditions[2]")
	assert.ErrorIs(t, err, ErrUnknownOperator)
	assert.NotErrorIs(t, err, ErrMalformedFilter)
	assert.Equal(t, `UNKNOWN_OPERATOR: unknown operator "bogus" at conditions[2]`, err.Error())
}

func people() []record.Record {
	return []record.Record{
		{"id": 1, "name": "Ada", "age": int64(36), "role": "admin"},
		{"id": 2, "name": "Bob", "age": int64(17), "role": "user"},
		{"id": 3, "name": "Cy", "age": nil, "role": "user"},
		{"id": 4, "name": "Di", "role": "ADMIN"},
		{"id": 5, "name": "Ed", "age": int64(65), "role": "user"},
	}
}

func ids(recs []record.Record) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r["id"]
	}
	return out
}

func TestApply(t *testing.T) {
	got, err := Apply(people(), AnyOf(
		Where("role", OpEq, "admin"),
		Where("age", OpGte, 60),
	))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 4, 5}, ids(got))
}

func TestApply_NilFilterKeepsAll(t *testing.T) {
	in := people()
	got, err := Apply(in, nil)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	got[0] = nil
	assert.NotNil(t, in[0], "result must not alias the input slice")
}

func TestApply_Idempotent(t *testing.T) {
	f := AllOf(Where("role", OpEq, "user"), Where("age", OpIsNotNull, nil))
	once, err := Apply(people(), f)
	require.NoError(t, err)
	twice, err := Apply(once, f)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Equal(t, []any{2, 5}, ids(once))
}

func TestApply_DoesNotMutateRecords(t *testing.T) {
	in := people()
	before := record.MustDigest(record.DomainRecord, in)
	_, err := Apply(in, AllOf(Where("name", OpLike, "%a%"), Where("age", OpBetween, Range{Min: 1, Max: 99})))
	require.NoError(t, err)
	assert.Equal(t, before, record.MustDigest(record.DomainRecord, in))
}

func TestApply_ErrorNamesRecord(t *testing.T) {
	_, err := Apply(people(), Where("x", "nope", 1))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "record 0: "))
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestApply_GenericMaps(t *testing.T) {
	in := []map[string]any{{"k": "a"}, {"k": "b"}}
	got, err := Apply(in, Where("k", OpEq, "B"))
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"k": "b"}}, got)
}

func TestMatch(t *testing.T) {
	ok, err := Match(OpGte, int64(5), 5, false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match(OpEq, record.Absent, nil, false)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Match("bogus", 1, 1, false)
	assert.ErrorIs(t, err, ErrUnknownOperator)
}
