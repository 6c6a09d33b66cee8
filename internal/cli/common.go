package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/query"
	"github.com/roach88/sieve/internal/record"
	"github.com/roach88/sieve/internal/store"
)

// formatter builds the OutputFormatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// fail reports err in JSON mode and returns the matching ExitError. Text
// mode leaves printing to main.
func fail(f *OutputFormatter, exit int, code, message string, err error) error {
	if f.Format == "json" {
		msg := message
		if err != nil {
			msg = fmt.Sprintf("%s: %v", message, err)
		}
		_ = f.Error(code, msg, nil)
	}
	if err == nil {
		return NewExitError(exit, message)
	}
	return WrapExitError(exit, message, err)
}

// loadQuery reads a query document. An empty path is the empty query.
func loadQuery(path string) (query.Query, error) {
	if path == "" {
		return query.Query{}, nil
	}
	return query.LoadDocument(path)
}

// queryFailure maps a query document error to an exit code: a missing
// file is a command error, anything else is a rejected document.
func queryFailure(f *OutputFormatter, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("query file not found: %s", path), err)
	}
	return fail(f, ExitFailure, ErrCodeSchema, fmt.Sprintf("invalid query %s", path), err)
}

// recordsFailure maps a records file error like queryFailure.
func recordsFailure(f *OutputFormatter, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("records file not found: %s", path), err)
	}
	return fail(f, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to load records %s", path), err)
}

// loadRecordsFile reads a JSON array of records.
func loadRecordsFile(path string) ([]record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return record.DecodeRecords(data)
}

// openStore opens the database named by the flag, or the configured one.
func (o *RootOptions) openStore(dbPath string) (*store.Store, error) {
	if dbPath == "" {
		dbPath = o.config().Database
	}
	return store.Open(dbPath, store.WithLogger(o.logger()))
}

// writeCanonicalLine prints v as one line of canonical JSON.
func writeCanonicalLine(w io.Writer, v any) error {
	data, err := record.MarshalCanonical(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
