package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/query"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Strict bool
}

// DocumentReport is the validation outcome for one query document.
type DocumentReport struct {
	File     string                  `json:"file"`
	Valid    bool                    `json:"valid"`
	Error    string                  `json:"error,omitempty"`
	Problems []query.ValidationError `json:"problems,omitempty"`
}

// ValidateReport summarizes a validate run.
type ValidateReport struct {
	Documents []DocumentReport `json:"documents"`
	Invalid   int              `json:"invalid"`
	Problems  int              `json:"problems"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <query-file>...",
		Short: "Check query documents against the schema",
		Long: `Validate query documents against the #Query schema and report shapes
that can never match (an "in" without an array, "between" without bounds,
duplicate sort keys, a limit above the configured maximum).

Schema violations fail the command. Problems are reported but only fail
the command with --strict.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat problems as failures")

	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, opts *ValidateOptions, paths []string) error {
	f := rootOpts.formatter(cmd)
	qopts := rootOpts.config().QueryOptions()

	report := ValidateReport{Documents: make([]DocumentReport, 0, len(paths))}
	for _, path := range paths {
		doc := DocumentReport{File: path, Valid: true}

		q, err := query.LoadDocument(path)
		if err != nil {
			doc.Valid = false
			doc.Error = err.Error()
		} else {
			doc.Problems = query.Validate(q, qopts)
			if opts.Strict && len(doc.Problems) > 0 {
				doc.Valid = false
			}
		}

		if !doc.Valid {
			report.Invalid++
		}
		report.Problems += len(doc.Problems)
		report.Documents = append(report.Documents, doc)
	}

	if report.Invalid > 0 {
		msg := fmt.Sprintf("%d of %d documents invalid", report.Invalid, len(paths))
		if err := f.Error(ErrCodeValidation, msg, report); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(report)
}

// WriteText lists each document with its problems, then a summary.
func (r ValidateReport) WriteText(w io.Writer) error {
	for _, doc := range r.Documents {
		mark := "\u2713"
		if !doc.Valid {
			mark = "\u2717"
		}
		fmt.Fprintf(w, "%s %s\n", mark, doc.File)
		if doc.Error != "" {
			fmt.Fprintf(w, "    %s\n", doc.Error)
		}
		for _, p := range doc.Problems {
			fmt.Fprintf(w, "    %s\n", p.Error())
		}
	}
	_, err := fmt.Fprintf(w, "\n%d documents, %d invalid, %d problems\n", len(r.Documents), r.Invalid, r.Problems)
	return err
}
