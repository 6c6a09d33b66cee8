package querysql

import (
	"database/sql"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/record"
)

// DriverName is the database/sql driver that registers the engine
// functions on every new connection.
const DriverName = "sqlite3_sieve"

// SQL names of the registered functions and collations.
const (
	FuncMatch       = "sieve_match"
	CollationFolded = "sieve_ci"
	CollationExact  = "sieve_cs"
)

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: RegisterFunctions,
	})
}

// RegisterFunctions installs sieve_match and the sort collations on conn.
func RegisterFunctions(conn *sqlite3.SQLiteConn) error {
	if err := conn.RegisterFunc(FuncMatch, matchJSON, true); err != nil {
		return fmt.Errorf("register %s: %w", FuncMatch, err)
	}
	if err := conn.RegisterCollation(CollationFolded, collate(false)); err != nil {
		return fmt.Errorf("register %s: %w", CollationFolded, err)
	}
	if err := conn.RegisterCollation(CollationExact, collate(true)); err != nil {
		return fmt.Errorf("register %s: %w", CollationExact, err)
	}
	return nil
}

// matchJSON implements sieve_match(field, operator, value, caseSensitive).
// field is the JSON text of the record field, or NULL when it is absent.
func matchJSON(field any, op string, value string, caseSensitive bool) (bool, error) {
	fv, err := decodeArg(field)
	if err != nil {
		return false, fmt.Errorf("%s field: %w", FuncMatch, err)
	}
	v, err := record.DecodeJSON([]byte(value))
	if err != nil {
		return false, fmt.Errorf("%s value: %w", FuncMatch, err)
	}
	return filter.Match(filter.Operator(op), fv, v, caseSensitive)
}

// decodeArg decodes a JSON text argument. go-sqlite3 hands SQL NULL to an
// interface{} parameter as a nil []byte, and NULL is what `->` yields for
// a missing path.
func decodeArg(arg any) (any, error) {
	switch val := arg.(type) {
	case nil:
		return record.Absent, nil
	case string:
		return record.DecodeJSON([]byte(val))
	case []byte:
		if len(val) == 0 {
			return record.Absent, nil
		}
		return record.DecodeJSON(val)
	default:
		return nil, fmt.Errorf("unexpected SQL value of type %T", arg)
	}
}

// collate orders two JSON texts with the engine comparator. SQLite never
// passes NULL to a collation, so both sides hold present values.
func collate(caseSensitive bool) func(string, string) int {
	return func(a, b string) int {
		av, aerr := record.DecodeJSON([]byte(a))
		bv, berr := record.DecodeJSON([]byte(b))
		if aerr != nil || berr != nil {
			return strings.Compare(a, b)
		}
		return compare.Compare(av, bv, caseSensitive)
	}
}
