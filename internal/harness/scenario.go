package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend names where a scenario's query runs.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBoth   = "both"
)

// Scenario defines a criteria scenario: records, a query over them and
// assertions on the result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path of the CUE file describing the records.
	// Relative paths are resolved against the scenario file location.
	Schema string `yaml:"schema"`

	// Definition names the CUE definition within Schema, e.g. "Person".
	Definition string `yaml:"definition"`

	// Query is the raw query string holding filter and sort parameters.
	Query string `yaml:"query"`

	// Backend is one of memory, sqlite or both. Empty means both.
	Backend string `yaml:"backend,omitempty"`

	// Records are the input records, in order.
	Records []map[string]any `yaml:"records"`

	// Assertions validate the result.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion type names.
const (
	AssertCount    = "count"
	AssertOrder    = "order"
	AssertContains = "contains"
	AssertExcludes = "excludes"
)

// Assertion validates the records a query returned.
type Assertion struct {
	// Type is one of count, order, contains or excludes.
	Type string `yaml:"type"`

	// Count is the expected number of records (count).
	Count int `yaml:"count,omitempty"`

	// Field and Values give the expected sequence of one field (order).
	Field  string `yaml:"field,omitempty"`
	Values []any  `yaml:"values,omitempty"`

	// Where is a subset of fields a record must match (contains, excludes).
	Where map[string]any `yaml:"where,omitempty"`
}

// LoadScenario loads a scenario from a YAML file, resolving the schema
// path relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath loads a scenario from a YAML file,
// resolving the schema path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos)
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) && basePath != "" {
		scenario.Schema = filepath.Join(basePath, scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", s.Schema)
	}

	if s.Definition == "" {
		return fmt.Errorf("definition is required")
	}

	switch s.Backend {
	case "", BackendMemory, BackendSQLite, BackendBoth:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertOrder:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for order", index)
		}
	case AssertContains, AssertExcludes:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// backend returns the effective backend.
func (s *Scenario) backend() string {
	if s.Backend == "" {
		return BackendBoth
	}
	return s.Backend
}
