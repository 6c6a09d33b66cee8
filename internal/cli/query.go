package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/listing"
	"github.com/roach88/sieve/internal/query"
	"github.com/roach88/sieve/internal/record"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	RecordsPath string
	DBPath      string
	Collection  string
	Pushdown    bool
	NoPushdown  bool
	Page        int
	Limit       int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [query-file]",
		Short: "Filter, sort and paginate records",
		Long: `Run a query document against a JSON records file (--records) or a
collection in the store (--db, --collection). Without a query file every
record is returned, one page at a time.

Text output prints each record as a line of canonical JSON followed by a
page summary.`,
		Example: `  sieve query adults.yaml --records people.json
  sieve query adults.yaml --collection people --page 2
  sieve query --records people.json --limit 5 --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runQuery(cmd, rootOpts, opts, path)
		},
	}

	cmd.Flags().StringVar(&opts.RecordsPath, "records", "", "JSON array of records to query instead of the store")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "store database (default from config)")
	cmd.Flags().StringVarP(&opts.Collection, "collection", "c", "", "store collection (default from config)")
	cmd.Flags().BoolVar(&opts.Pushdown, "pushdown", false, "compile the query to SQL even if disabled in config")
	cmd.Flags().BoolVar(&opts.NoPushdown, "no-pushdown", false, "evaluate the query in memory")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "override the page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "override the page size")
	cmd.MarkFlagsMutuallyExclusive("pushdown", "no-pushdown")
	cmd.MarkFlagsMutuallyExclusive("records", "db")
	cmd.MarkFlagsMutuallyExclusive("records", "collection")

	return cmd
}

func runQuery(cmd *cobra.Command, rootOpts *RootOptions, opts *QueryOptions, path string) error {
	f := rootOpts.formatter(cmd)
	cfg := rootOpts.config()
	logger := rootOpts.logger()

	q, err := loadQuery(path)
	if err != nil {
		return queryFailure(f, path, err)
	}
	if opts.Page != 0 {
		q.Page = opts.Page
	}
	if opts.Limit != 0 {
		q.Limit = opts.Limit
	}
	qopts := cfg.QueryOptions()

	var page listing.Page[record.Record]
	if opts.RecordsPath != "" {
		records, err := loadRecordsFile(opts.RecordsPath)
		if err != nil {
			return recordsFailure(f, opts.RecordsPath, err)
		}
		logger.Debug("running query in memory", "records", len(records))
		page, err = query.RunWith(records, q, qopts)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeQuery, "query rejected", err)
		}
	} else {
		collection := opts.Collection
		if collection == "" {
			collection = cfg.Collection
		}
		pushdown := cfg.Query.Pushdown
		if opts.Pushdown {
			pushdown = true
		}
		if opts.NoPushdown {
			pushdown = false
		}

		st, err := rootOpts.openStore(opts.DBPath)
		if err != nil {
			return fail(f, ExitCommandError, ErrCodeStore, "failed to open store", err)
		}
		defer st.Close()

		logger.Debug("running query against store", "collection", collection, "pushdown", pushdown)
		if pushdown {
			page, err = st.FindPushdown(cmd.Context(), collection, q, qopts)
		} else {
			page, err = st.Find(cmd.Context(), collection, q, qopts)
		}
		if err != nil {
			return fail(f, ExitFailure, ErrCodeQuery, "query failed", err)
		}
	}

	return f.Success(PageResult{Result: page})
}

// PageResult is one page of query output.
type PageResult struct {
	Result listing.Page[record.Record]
}

// MarshalJSON uses the page document field names.
func (r PageResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(query.PageDocument(r.Result))
}

// WriteText prints each record as a line of canonical JSON, then a page
// summary.
func (r PageResult) WriteText(w io.Writer) error {
	for _, rec := range r.Result.Data {
		if err := writeCanonicalLine(w, rec); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	_, err := fmt.Fprintf(w, "page %d/%d (%d total)\n", r.Result.Page, r.Result.TotalPages, r.Result.Total)
	return err
}
