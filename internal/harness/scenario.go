package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/ir"
)

// Scenario is one factory layout plus the assertions it must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Reference is the path to the reference data document.
	// Relative paths are resolved against the scenario file.
	Reference string `yaml:"reference"`

	// RunID is the fixed compute-run id. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Graph is the layout to compute.
	Graph graph.Document `yaml:"graph"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one aspect of a computed scenario. Which fields are
// read depends on Type.
type Assertion struct {
	Type string `yaml:"type"`

	Node   string      `yaml:"node,omitempty"`
	Handle ir.HandleID `yaml:"handle,omitempty"`
	Item   string      `yaml:"item,omitempty"`

	// Rate is the expected thou rate (flow).
	Rate *int64 `yaml:"rate,omitempty"`

	Edge  string       `yaml:"edge,omitempty"`
	State ir.EdgeState `yaml:"state,omitempty"`
	Label string       `yaml:"label,omitempty"`

	Code ir.ErrorCode `yaml:"code,omitempty"`

	// Count is the exact number of matching diagnostics. Zero means at
	// least one.
	Count int `yaml:"count,omitempty"`

	Efficiency *float64 `yaml:"efficiency,omitempty"`
}

// Assertion type constants.
const (
	AssertFlow             = "flow"
	AssertEdge             = "edge"
	AssertDiagnostic       = "diagnostic"
	AssertNoDiagnostics    = "no_diagnostics"
	AssertEfficiency       = "efficiency"
	AssertStoredAnnotation = "stored_annotation"
)

// LoadScenario reads and parses a scenario YAML file. The reference path
// is resolved relative to the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative reference path against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Reference != "" && !filepath.IsAbs(scenario.Reference) && basePath != "" {
		scenario.Reference = filepath.Join(basePath, scenario.Reference)
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
	if s.Reference == "" {
		return fmt.Errorf("reference is required")
	}
	if _, err := os.Stat(s.Reference); os.IsNotExist(err) {
		return fmt.Errorf("reference file not found: %s", s.Reference)
	}
	if len(s.Graph.Nodes) == 0 {
		return fmt.Errorf("graph must have at least one node")
	}
	for i, e := range s.Graph.Edges {
		if e.ID == "" {
			return fmt.Errorf("graph.edges[%d]: id is required", i)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFlow:
		if a.Node == "" || a.Handle == "" || a.Item == "" || a.Rate == nil {
			return fmt.Errorf("assertions[%d]: node, handle, item and rate are required for flow", index)
		}
	case AssertEdge, AssertStoredAnnotation:
		if a.Edge == "" {
			return fmt.Errorf("assertions[%d]: edge is required for %s", index, a.Type)
		}
		if a.State == ir.EdgeStateNone && a.Label == "" {
			return fmt.Errorf("assertions[%d]: state or label is required for %s", index, a.Type)
		}
	case AssertDiagnostic:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for diagnostic", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for diagnostic", index)
		}
	case AssertNoDiagnostics:
	case AssertEfficiency:
		if a.Node == "" || a.Efficiency == nil {
			return fmt.Errorf("assertions[%d]: node and efficiency are required for efficiency", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
