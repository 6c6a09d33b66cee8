package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	DBPath     string
	Collection string
	Replace    bool
}

// ImportResult reports an import.
type ImportResult struct {
	Collection string `json:"collection"`
	store.InsertResult
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <records.json>",
		Short: "Load a JSON array of records into a collection",
		Long: `Insert every object of a JSON array into a store collection, creating
the collection if needed. Records identical to one already in the
collection are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "store database (default from config)")
	cmd.Flags().StringVarP(&opts.Collection, "collection", "c", "", "collection name (default from config)")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "drop the collection before importing")

	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *ImportOptions, path string) error {
	f := rootOpts.formatter(cmd)
	collection := opts.Collection
	if collection == "" {
		collection = rootOpts.config().Collection
	}

	records, err := loadRecordsFile(path)
	if err != nil {
		return recordsFailure(f, path, err)
	}

	st, err := rootOpts.openStore(opts.DBPath)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeStore, "failed to open store", err)
	}
	defer st.Close()

	if opts.Replace {
		if err := st.DropCollection(cmd.Context(), collection); err != nil {
			return fail(f, ExitFailure, ErrCodeStore, "failed to drop collection", err)
		}
		f.VerboseLog("dropped collection %s", collection)
	}

	res, err := st.Insert(cmd.Context(), collection, records)
	if err != nil {
		return fail(f, ExitFailure, ErrCodeStore, "import failed", err)
	}

	return f.Success(ImportResult{Collection: collection, InsertResult: res})
}

// WriteText prints a one-line summary.
func (r ImportResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "imported %d records into %s (%d skipped)\n", r.Inserted, r.Collection, r.Skipped)
	return err
}
