package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sieve/internal/record"
)

// ErrGoldenMismatch is returned by CheckSnapshot when a snapshot differs
// from its golden file.
var ErrGoldenMismatch = errors.New("snapshot differs from golden file")

// Snapshot is the golden representation of a Result. It leaves out the
// pass flag, expectation errors and error wording so that a snapshot only
// changes when the engine's output does.
func Snapshot(r *Result) ([]byte, error) {
	doc := map[string]any{
		"scenario":    r.Scenario,
		"ids":         r.IDs,
		"total":       r.Total,
		"page":        r.Page,
		"limit":       r.Limit,
		"total_pages": r.TotalPages,
		"has_next":    r.HasNext,
		"has_prev":    r.HasPrev,
	}
	if r.QueryError != "" {
		doc["rejected"] = true
	}
	return record.MarshalCanonical(doc)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden. Expectation failures are
// reported through t.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}

// CheckSnapshot compares result with dir/{name}.golden outside of go test,
// for the CLI. With update set it writes the golden file instead. A
// missing golden file is reported with os.ErrNotExist.
func CheckSnapshot(dir string, result *Result, update bool) error {
	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, result.Scenario+".golden")

	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create golden dir: %w", err)
		}
		if err := os.WriteFile(path, snapshot, 0o644); err != nil {
			return fmt.Errorf("write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, snapshot) {
		return fmt.Errorf("%s: %w", path, ErrGoldenMismatch)
	}
	return nil
}
