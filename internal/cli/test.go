package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	GoldenDir string
	Update    bool
	Filter    string
}

// TestResult is the JSON output structure for test results.
type TestResult struct {
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// ScenarioResult represents the outcome of a single scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Passed bool     `json:"passed"`
	IDs    []any    `json:"ids"`
	Errors []string `json:"errors,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{}

	cmd := &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios from a directory or a single file.

Each scenario applies its query to its records and checks the returned ids
and page metadata. With --golden every result is also compared with
<golden>/<scenario>.golden; --update rewrites those files instead.`,
		Example: `  sieve test testdata/scenarios
  sieve test testdata/scenarios --golden testdata/golden --update
  sieve test testdata/scenarios --filter null`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "directory of golden snapshots to compare against")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden snapshots")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name contains this string")

	return cmd
}

func runTest(cmd *cobra.Command, rootOpts *RootOptions, opts *TestOptions, path string) error {
	f := rootOpts.formatter(cmd)
	if opts.Update && opts.GoldenDir == "" {
		return fail(f, ExitCommandError, ErrCodeGeneric, "--update requires --golden", nil)
	}

	scenarios, err := loadScenarios(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios not found: %s", path), err)
		}
		return fail(f, ExitCommandError, ErrCodeGeneric, "failed to load scenarios", err)
	}

	hopts := harness.Options{Query: rootOpts.config().QueryOptions(), Logger: rootOpts.logger()}
	results := TestResult{Scenarios: []ScenarioResult{}}

	for _, s := range scenarios {
		if opts.Filter != "" && !strings.Contains(s.Name, opts.Filter) {
			continue
		}
		f.VerboseLog("running %s", s.Name)

		sr := ScenarioResult{Name: s.Name, IDs: []any{}}
		res, err := harness.RunWithOptions(cmd.Context(), s, hopts)
		if err != nil {
			sr.Errors = []string{err.Error()}
		} else {
			sr.IDs = res.IDs
			sr.Errors = res.Errors
			sr.Passed = res.Pass
			if opts.GoldenDir != "" {
				if err := harness.CheckSnapshot(opts.GoldenDir, res, opts.Update); err != nil {
					sr.Passed = false
					sr.Errors = append(sr.Errors, err.Error())
				}
			}
		}

		if sr.Passed {
			results.Passed++
		} else {
			results.Failed++
		}
		results.Scenarios = append(results.Scenarios, sr)
	}
	results.Total = len(results.Scenarios)

	if results.Failed > 0 {
		msg := fmt.Sprintf("%d of %d scenarios failed", results.Failed, results.Total)
		if err := f.Error(ErrCodeTestFailed, msg, results); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(results)
}

// loadScenarios loads a single scenario file or every scenario in a
// directory.
func loadScenarios(path string) ([]*harness.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return harness.LoadDir(path)
	}
	s, err := harness.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return []*harness.Scenario{s}, nil
}

// WriteText lists each scenario, then the summary line.
func (r TestResult) WriteText(w io.Writer) error {
	for _, sr := range r.Scenarios {
		if sr.Passed {
			fmt.Fprintf(w, "\u2713 %s\n", sr.Name)
			continue
		}
		fmt.Fprintf(w, "\u2717 %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	_, err := fmt.Fprintf(w, "\nTest Summary: %d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	return err
}
