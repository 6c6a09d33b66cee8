package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/store"
)

// CollectionsOptions holds flags for the collections command.
type CollectionsOptions struct {
	DBPath string
}

// NewCollectionsCommand creates the collections command.
func NewCollectionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CollectionsOptions{}

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the collections in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			st, err := rootOpts.openStore(opts.DBPath)
			if err != nil {
				return fail(f, ExitCommandError, ErrCodeStore, "failed to open store", err)
			}
			defer st.Close()

			cols, err := st.Collections(cmd.Context())
			if err != nil {
				return fail(f, ExitFailure, ErrCodeStore, "failed to list collections", err)
			}

			return f.Success(CollectionList(cols))
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "store database (default from config)")

	return cmd
}

// CollectionList renders store collections as a table.
type CollectionList []store.Collection

// WriteText prints one row per collection.
func (l CollectionList) WriteText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "no collections")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRECORDS\tCREATED")
	for _, c := range l {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Records, c.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
