package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Records is an inline record set. Exclusive with RecordsFile.
	Records []map[string]any `yaml:"records,omitempty"`

	// RecordsFile is a JSON array of records, relative to the scenario file.
	RecordsFile string `yaml:"records_file,omitempty"`

	// IDField is the dotted path reported for each returned record.
	// Defaults to "id".
	IDField string `yaml:"id_field,omitempty"`

	// Query is a query document with the same shape as a query file.
	Query map[string]any `yaml:"query,omitempty"`

	// Pushdown additionally runs the query inside SQLite and requires the
	// same page as the in-memory run. Records must be pairwise distinct,
	// since the store keeps one copy of identical records.
	Pushdown bool `yaml:"pushdown,omitempty"`

	// Expect is the page the query must produce.
	Expect Expect `yaml:"expect"`
}

// Expect specifies the expected outcome. Nil fields are not checked.
type Expect struct {
	// IDs are the values of IDField on the returned page, in order.
	IDs []any `yaml:"ids"`

	Total      *int  `yaml:"total,omitempty"`
	TotalPages *int  `yaml:"total_pages,omitempty"`
	HasNext    *bool `yaml:"has_next,omitempty"`
	HasPrev    *bool `yaml:"has_prev,omitempty"`

	// Error is a substring of the expected query error. When set, the
	// query must fail and IDs must be empty.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. A relative
// records_file is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving records_file relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.RecordsFile != "" && !filepath.IsAbs(scenario.RecordsFile) && basePath != "" {
		scenario.RecordsFile = filepath.Join(basePath, scenario.RecordsFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file
// name. Scenario names must be unique.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Records != nil && s.RecordsFile != "" {
		return fmt.Errorf("records and records_file are mutually exclusive")
	}

	if s.RecordsFile != "" {
		if _, err := os.Stat(s.RecordsFile); os.IsNotExist(err) {
			return fmt.Errorf("records file not found: %s", s.RecordsFile)
		}
	}

	if s.Expect.Error == "" && s.Expect.IDs == nil {
		return fmt.Errorf("expect: ids or error is required")
	}

	if s.Expect.Error != "" && len(s.Expect.IDs) > 0 {
		return fmt.Errorf("expect: ids must be empty when error is set")
	}

	for name, n := range map[string]*int{"total": s.Expect.Total, "total_pages": s.Expect.TotalPages} {
		if n != nil && *n < 0 {
			return fmt.Errorf("expect.%s must be non-negative", name)
		}
	}

	return nil
}
