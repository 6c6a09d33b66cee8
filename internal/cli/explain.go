package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/querysql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	Collection string
}

// ExplainResult is the compiled form of a query.
type ExplainResult struct {
	Pushdown bool   `json:"pushdown"`
	SQL      string `json:"sql,omitempty"`
	Params   []any  `json:"params,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{}

	cmd := &cobra.Command{
		Use:   "explain [query-file]",
		Short: "Show the SQL a query compiles to",
		Long: `Compile a query document to the parameterized SQLite statement the store
runs for it. Queries that cannot be expressed in SQL are reported with the
reason; the store evaluates those in memory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runExplain(cmd, rootOpts, opts, path)
		},
	}

	cmd.Flags().StringVarP(&opts.Collection, "collection", "c", "", "collection name (default from config)")

	return cmd
}

func runExplain(cmd *cobra.Command, rootOpts *RootOptions, opts *ExplainOptions, path string) error {
	f := rootOpts.formatter(cmd)
	cfg := rootOpts.config()

	q, err := loadQuery(path)
	if err != nil {
		return queryFailure(f, path, err)
	}
	collection := opts.Collection
	if collection == "" {
		collection = cfg.Collection
	}

	var result ExplainResult
	sql, params, err := querysql.NewSQLCompiler().Compile(collection, q, cfg.QueryOptions())
	switch {
	case errors.Is(err, querysql.ErrUnsupported):
		result.Reason = err.Error()
	case err != nil:
		return fail(f, ExitFailure, ErrCodeQuery, "query rejected", err)
	default:
		result = ExplainResult{Pushdown: true, SQL: sql, Params: params}
	}

	return f.Success(result)
}

// WriteText prints the statement with numbered parameters.
func (r ExplainResult) WriteText(w io.Writer) error {
	if !r.Pushdown {
		_, err := fmt.Fprintf(w, "runs in memory: %s\n", r.Reason)
		return err
	}
	fmt.Fprintln(w, r.SQL)
	for i, p := range r.Params {
		fmt.Fprintf(w, "  ?%d = %#v\n", i+1, p)
	}
	return nil
}
