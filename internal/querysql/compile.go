package querysql

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/listing"
	"github.com/roach88/sieve/internal/query"
	"github.com/roach88/sieve/internal/record"
)

// ErrUnsupported marks a query the compiler cannot translate exactly.
var ErrUnsupported = errors.New("not expressible in SQL")

// DefaultTable is the records table created by the store schema.
const DefaultTable = "records"

// SQLCompiler compiles queries to parameterized SQL for SQLite.
type SQLCompiler struct {
	// Table holds (seq, collection, data) rows with data as JSON text.
	Table string
}

// NewSQLCompiler creates a compiler for DefaultTable.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Table: DefaultTable}
}

// Compile returns the SELECT for one page of q over collection. The
// statement yields a single data column.
func (c *SQLCompiler) Compile(collection string, q query.Query, opts query.Options) (string, []any, error) {
	where, params, err := c.whereClause(collection, q.Filter)
	if err != nil {
		return "", nil, err
	}

	orderBy, orderParams, err := c.compileOrderBy(q.Sort)
	if err != nil {
		return "", nil, fmt.Errorf("compile sort: %w", err)
	}
	params = append(params, orderParams...)

	limit, offset := window(q, opts)
	params = append(params, limit, offset)

	sql := fmt.Sprintf("SELECT data FROM %s WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		c.Table, where, orderBy)
	return sql, params, nil
}

// CompileCount returns a statement counting the rows of collection that
// match f. A nil filter counts the whole collection.
func (c *SQLCompiler) CompileCount(collection string, f filter.Filter) (string, []any, error) {
	where, params, err := c.whereClause(collection, f)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", c.Table, where), params, nil
}

// CompileFilter compiles f to a WHERE fragment.
func (c *SQLCompiler) CompileFilter(f filter.Filter) (string, []any, error) {
	return c.compileFilter(f)
}

func (c *SQLCompiler) whereClause(collection string, f filter.Filter) (string, []any, error) {
	where := "collection = ?"
	params := []any{collection}
	if f == nil {
		return where, params, nil
	}

	filterSQL, filterParams, err := c.compileFilter(f)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return where + " AND (" + filterSQL + ")", append(params, filterParams...), nil
}

// window converts the query window to LIMIT and OFFSET. Pages the paginator
// would leave empty select nothing.
func window(q query.Query, opts query.Options) (limit, offset int64) {
	page, size := q.Window(opts)
	if page < 1 || size < 1 {
		return 0, 0
	}
	if int64(page-1) > math.MaxInt64/int64(size) {
		return 0, 0
	}
	return int64(size), int64(listing.Offset(page, size))
}

func (c *SQLCompiler) compileFilter(f filter.Filter) (string, []any, error) {
	switch node := f.(type) {
	case filter.Condition:
		return c.compileCondition(node)
	case *filter.Condition:
		if node == nil {
			return "", nil, fmt.Errorf("nil condition: %w", filter.ErrMalformedFilter)
		}
		return c.compileCondition(*node)
	case filter.Compound:
		return c.compileCompound(node)
	case *filter.Compound:
		if node == nil {
			return "", nil, fmt.Errorf("nil compound: %w", filter.ErrMalformedFilter)
		}
		return c.compileCompound(*node)
	default:
		return "", nil, fmt.Errorf("filter type %T: %w", f, filter.ErrMalformedFilter)
	}
}

// compileCompound mirrors filter.EvaluateCompound: an empty and is true, an
// empty or is false and not negates the conjunction.
func (c *SQLCompiler) compileCompound(comp filter.Compound) (string, []any, error) {
	if !comp.Operator.Valid() {
		return "", nil, fmt.Errorf("%q: %w", comp.Operator, filter.ErrUnknownLogicalOperator)
	}

	var parts []string
	var params []any
	for _, child := range comp.Conditions {
		sql, childParams, err := c.compileFilter(child)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		params = append(params, childParams...)
	}

	switch comp.Operator {
	case filter.Or:
		if len(parts) == 0 {
			return "1 = 0", nil, nil
		}
		return strings.Join(parts, " OR "), params, nil
	case filter.Not:
		if len(parts) == 0 {
			return "1 = 0", nil, nil
		}
		return "NOT (" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		if len(parts) == 0 {
			return "1 = 1", nil, nil
		}
		return strings.Join(parts, " AND "), params, nil
	}
}

// compileCondition compiles one condition. Null checks are native SQL over
// the JSON text of the field: data -> path is SQL NULL when the field is
// absent and 'null' when it holds JSON null. Every fragment is two-valued
// (IS, not =) so that NOT never meets an SQL NULL.
func (c *SQLCompiler) compileCondition(cond filter.Condition) (string, []any, error) {
	if !cond.Operator.Valid() {
		return "", nil, fmt.Errorf("%q: %w", cond.Operator, filter.ErrUnknownOperator)
	}
	path, err := jsonPath(cond.Field)
	if err != nil {
		return "", nil, err
	}

	switch cond.Operator {
	case filter.OpIsNull:
		return "(data -> ?) IS NULL OR (data -> ?) IS 'null'", []any{path, path}, nil
	case filter.OpIsNotNull:
		return "(data -> ?) IS NOT NULL AND (data -> ?) IS NOT 'null'", []any{path, path}, nil
	}

	if record.IsAbsent(cond.Value) {
		switch cond.Operator {
		case filter.OpEq:
			return "(data -> ?) IS NULL", []any{path}, nil
		case filter.OpNeq:
			return "(data -> ?) IS NOT NULL", []any{path}, nil
		default:
			return "1 = 0", nil, nil
		}
	}
	if cond.Value == nil {
		switch cond.Operator {
		case filter.OpEq:
			return "(data -> ?) IS 'null'", []any{path}, nil
		case filter.OpNeq:
			return "(data -> ?) IS NOT 'null'", []any{path}, nil
		default:
			return "1 = 0", nil, nil
		}
	}

	value, err := encodeValue(cond.Value)
	if err != nil {
		return "", nil, fmt.Errorf("field %q: %w", cond.Field, err)
	}
	return FuncMatch + "(data -> ?, ?, ?, ?)",
		[]any{path, string(cond.Operator), value, cond.CaseSensitive}, nil
}

// compileOrderBy maps sort keys onto the engine collations. JSON null is
// folded into SQL NULL so that null and absent tie, as they do in memory.
// SQLite orders NULL first ascending and last descending, which is the
// default placement of listing.Sort.
func (c *SQLCompiler) compileOrderBy(specs []listing.SortSpec) (string, []any, error) {
	var terms []string
	var params []any
	for _, s := range specs {
		path, err := jsonPath(s.Field)
		if err != nil {
			return "", nil, err
		}

		collation := CollationFolded
		if s.CaseSensitive {
			collation = CollationExact
		}
		term := "NULLIF(data -> ?, 'null') COLLATE " + collation
		if s.Order == listing.Desc {
			term += " DESC"
		}
		switch s.Nulls {
		case listing.NullsFirst:
			term += " NULLS FIRST"
		case listing.NullsLast:
			term += " NULLS LAST"
		}
		terms = append(terms, term)
		params = append(params, path)
	}
	terms = append(terms, "seq ASC")
	return strings.Join(terms, ", "), params, nil
}
