package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sieve/internal/ir"
)

// Snapshot captures what a scenario's query parsed to and returned.
// It serializes as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Query        string
	Filter       string
	Sort         string
	Records      []any
}

// NewSnapshot builds the snapshot of a finished scenario.
func NewSnapshot(scenario *Scenario, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: scenario.Name,
		Query:        scenario.Query,
		Filter:       result.Filter,
		Sort:         result.Sort,
		Records:      result.Records,
	}
}

// MarshalCanonical encodes the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	records, err := toValue(s.Records)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(ir.Object{
		"scenario_name": ir.String(s.ScenarioName),
		"query":         ir.String(s.Query),
		"filter":        ir.String(s.Filter),
		"sort":          ir.String(s.Sort),
		"records":       records,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenario, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
