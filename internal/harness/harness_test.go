package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/ir"
)

func graphDoc(nodes ...ir.Node) graph.Document {
	return graph.Document{Nodes: nodes}
}

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_TestdataScenariosPass(t *testing.T) {
	for _, name := range []string{
		"splitter_balanced",
		"edge_imbalance",
		"splitter_pro_routing",
		"feedback_loop",
		"underfed_sink",
		"unknown_item",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_FixedRunID(t *testing.T) {
	result, err := Run(loadTestScenario(t, "splitter_balanced"))
	require.NoError(t, err)
	assert.Equal(t, "run-splitter", result.RunID)

	result, err = Run(loadTestScenario(t, "underfed_sink"))
	require.NoError(t, err)
	assert.Equal(t, "test-run-default", result.RunID)
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s := loadTestScenario(t, "edge_imbalance")
	s.Assertions = []Assertion{
		{Type: AssertEdge, Edge: "e1", State: ir.EdgeStateOK},
		{Type: AssertDiagnostic, Code: ir.ErrCodeCircularDependency},
		{Type: AssertNoDiagnostics},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "assertion 0 (edge)")
	assert.Contains(t, result.Errors[0], "warning")
	assert.Contains(t, result.Errors[1], "CIRCULAR_DEPENDENCY")
}

func TestRun_ScenariosAreIsolated(t *testing.T) {
	first, err := Run(loadTestScenario(t, "splitter_balanced"))
	require.NoError(t, err)
	second, err := Run(loadTestScenario(t, "edge_imbalance"))
	require.NoError(t, err)

	assert.Len(t, first.Edges, 3)
	assert.Len(t, second.Edges, 1)
	assert.NotContains(t, second.Results, "split")
}

func TestRun_InvalidGraph(t *testing.T) {
	s := loadTestScenario(t, "edge_imbalance")
	s.Graph.Edges[0].Target = "missing"

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid graph")
}

func TestRun_BadReference(t *testing.T) {
	s := loadTestScenario(t, "edge_imbalance")
	s.Reference = filepath.Join(t.TempDir(), "missing.json")

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load reference data")
}
