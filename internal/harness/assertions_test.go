package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beltline/internal/engine"
	"github.com/roach88/beltline/internal/ir"
	"github.com/roach88/beltline/internal/store"
)

const ingot = "Desc_IronIngot_C"

func sampleResult() *Result {
	r := NewResult()
	r.RunID = "run-1"
	r.Results["split"] = &ir.Result{
		NodeID: "split",
		Kind:   ir.KindLogistic,
		Expected: ir.HandleFlows{
			"top-solid-out-0": ir.Unconstrained(),
		},
		Actual: ir.HandleFlows{
			"top-solid-out-0": ir.PerItem(ir.Rates{ingot: 15000}),
		},
	}
	r.Edges["e1"] = &ir.EdgeAnnotation{State: ir.EdgeStateOK, Label: "Iron Ingot 15/min"}
	r.Diagnostics = []ir.Diagnostic{
		{Severity: ir.SeverityWarning, Code: ir.ErrCodeCircularDependency, NodeID: "m", Message: "loop"},
		{Severity: ir.SeverityWarning, Code: ir.ErrCodeCircularDependency, NodeID: "s", Message: "loop"},
	}
	r.Efficiency = []engine.Efficiency{
		{NodeID: "dst", ItemKey: ingot, Expected: 27000, Available: 30000, Speed: 27000, Efficiency: 0.9},
	}
	return r
}

func rate(v int64) *int64 { return &v }

func ratio(v float64) *float64 { return &v }

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertFlow, Node: "split", Handle: "top-solid-out-0", Item: ingot, Rate: rate(15000)},
		{Type: AssertEdge, Edge: "e1", State: ir.EdgeStateOK, Label: "Iron Ingot 15/min"},
		{Type: AssertDiagnostic, Code: ir.ErrCodeCircularDependency, Count: 2},
		{Type: AssertDiagnostic, Code: ir.ErrCodeCircularDependency, Node: "m"},
		{Type: AssertNoDiagnostics, Code: ir.ErrCodeMalformedHandle},
		{Type: AssertEfficiency, Node: "dst", Efficiency: ratio(0.9)},
	}, nil)
	assert.Empty(t, errs)
}

func TestAssertFlow_ActualWinsOverExpected(t *testing.T) {
	err := assertFlow(sampleResult(), Assertion{
		Node: "split", Handle: "top-solid-out-0", Item: ingot, Rate: rate(30000),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Actual: 15000")
}

func TestAssertFlow_MissingNodeAndHandle(t *testing.T) {
	err := assertFlow(sampleResult(), Assertion{Node: "nope", Handle: "x", Item: ingot, Rate: rate(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `a result for node "nope"`)

	err = assertFlow(sampleResult(), Assertion{Node: "split", Handle: "left-solid-in-0", Item: ingot, Rate: rate(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handle left-solid-in-0")
}

func TestAssertEdge(t *testing.T) {
	r := sampleResult()
	assert.Error(t, assertEdge(r, Assertion{Edge: "e1", State: ir.EdgeStateWarning}))
	assert.Error(t, assertEdge(r, Assertion{Edge: "e1", Label: "Iron Ingot 30/min"}))
	assert.Error(t, assertEdge(r, Assertion{Edge: "e9", State: ir.EdgeStateOK}))
	assert.NoError(t, assertEdge(r, Assertion{Edge: "e1", Label: "Iron Ingot 15/min"}))
}

func TestAssertDiagnostic_Counts(t *testing.T) {
	r := sampleResult()
	assert.Error(t, assertDiagnostic(r, Assertion{Code: ir.ErrCodeCircularDependency, Count: 1}))
	assert.Error(t, assertDiagnostic(r, Assertion{Code: ir.ErrCodeMalformedHandle}))
	assert.Error(t, assertDiagnostic(r, Assertion{Code: ir.ErrCodeCircularDependency, Node: "x"}))
	assert.NoError(t, assertDiagnostic(r, Assertion{Code: ir.ErrCodeCircularDependency, Node: "s", Count: 1}))
}

func TestAssertNoDiagnostics(t *testing.T) {
	r := sampleResult()
	err := assertNoDiagnostics(r, Assertion{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 emitted")

	assert.NoError(t, assertNoDiagnostics(NewResult(), Assertion{}))
	assert.NoError(t, assertNoDiagnostics(r, Assertion{Code: ir.ErrCodeCircularDependency, Node: "z"}))
}

func TestAssertEfficiency(t *testing.T) {
	r := sampleResult()
	assert.NoError(t, assertEfficiency(r, Assertion{Node: "dst", Item: ingot, Efficiency: ratio(0.9000001)}))
	assert.Error(t, assertEfficiency(r, Assertion{Node: "dst", Efficiency: ratio(1)}))
	assert.Error(t, assertEfficiency(r, Assertion{Node: "dst", Item: "Desc_IronRod_C", Efficiency: ratio(0.9)}))
}

func TestEvaluateAssertions_StoredAnnotationNeedsStore(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertStoredAnnotation, Edge: "e1", State: ir.EdgeStateOK},
	}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a store")
}

func TestEvaluateAssertions_StoredAnnotation(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	s := loadTestScenario(t, "edge_imbalance")
	require.NoError(t, st.SaveGraph(ctx, s.Graph))
	require.NoError(t, st.SaveAnnotations(ctx, "run-old", map[string]*ir.EdgeAnnotation{
		"e1": {State: ir.EdgeStateWarning, Label: "Iron Ingot +15/min over"},
	}))

	actx := &AssertionContext{Store: st, Ctx: ctx}
	r := NewResult()
	r.RunID = "run-old"
	assert.Empty(t, EvaluateAssertions(r, []Assertion{
		{Type: AssertStoredAnnotation, Edge: "e1", State: ir.EdgeStateWarning},
	}, actx))

	r.RunID = "run-new"
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertStoredAnnotation, Edge: "e1", State: ir.EdgeStateWarning},
	}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "stored by run run-new")
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertEdge,
		Expected: "state ok",
		Actual:   "warning",
		Diagnostics: []ir.Diagnostic{
			{Severity: ir.SeverityError, Code: ir.ErrCodeReferencedItemNotFound, Message: "gone"},
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: edge")
	assert.Contains(t, msg, "Expected: state ok")
	assert.Contains(t, msg, "Actual: warning")
	assert.Contains(t, msg, "[1] error REFERENCED_ITEM_NOT_FOUND gone")
}
