package harness

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/beltline/internal/ir"
	"github.com/roach88/beltline/internal/store"
)

// efficiencyTolerance bounds float comparison of efficiency ratios.
const efficiencyTolerance = 1e-6

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string

	// Diagnostics gives context when a run emitted anything.
	Diagnostics []ir.Diagnostic
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Diagnostics) > 0 {
		fmt.Fprintf(&buf, "\nDiagnostics:\n")
		for i, d := range e.Diagnostics {
			fmt.Fprintf(&buf, "  [%d] %s %s %s\n", i+1, d.Severity, d.Code, d.Message)
		}
	}
	return buf.String()
}

// AssertionContext provides access to the store for stored_annotation
// assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions runs every assertion and returns the failure
// messages. An empty slice means all passed.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFlow:
			err = assertFlow(result, a)
		case AssertEdge:
			err = assertEdge(result, a)
		case AssertDiagnostic:
			err = assertDiagnostic(result, a)
		case AssertNoDiagnostics:
			err = assertNoDiagnostics(result, a)
		case AssertEfficiency:
			err = assertEfficiency(result, a)
		case AssertStoredAnnotation:
			err = assertStoredAnnotation(result, a, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func assertFlow(result *Result, a Assertion) error {
	res, ok := result.Results[a.Node]
	if !ok || res == nil {
		return &AssertionError{
			Type:        AssertFlow,
			Expected:    fmt.Sprintf("a result for node %q", a.Node),
			Actual:      "no result",
			Diagnostics: result.Diagnostics,
		}
	}
	flow, ok := res.FlowAt(a.Handle)
	if !ok {
		return &AssertionError{
			Type:     AssertFlow,
			Expected: fmt.Sprintf("handle %s on node %q", a.Handle, a.Node),
			Actual:   fmt.Sprintf("handles %v", res.Expected.Handles()),
		}
	}
	if got := flow.Rate(a.Item); got != *a.Rate {
		return &AssertionError{
			Type:        AssertFlow,
			Expected:    fmt.Sprintf("%s at %s/%s = %d", a.Item, a.Node, a.Handle, *a.Rate),
			Actual:      fmt.Sprintf("%d", got),
			Diagnostics: result.Diagnostics,
		}
	}
	return nil
}

func assertEdge(result *Result, a Assertion) error {
	return compareAnnotation(AssertEdge, a, result.Edges[a.Edge])
}

func compareAnnotation(kind string, a Assertion, ann *ir.EdgeAnnotation) error {
	if ann == nil {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("an annotation on edge %q", a.Edge),
			Actual:   "none",
		}
	}
	if a.State != ir.EdgeStateNone && ann.State != a.State {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("edge %q state %s", a.Edge, a.State),
			Actual:   fmt.Sprintf("%s (%s)", ann.State, ann.Message),
		}
	}
	if a.Label != "" && ann.Label != a.Label {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("edge %q label %q", a.Edge, a.Label),
			Actual:   fmt.Sprintf("%q", ann.Label),
		}
	}
	return nil
}

func assertDiagnostic(result *Result, a Assertion) error {
	n := countMatching(result.Diagnostics, a)
	if a.Count > 0 && n != a.Count {
		return &AssertionError{
			Type:        AssertDiagnostic,
			Expected:    fmt.Sprintf("%d x %s%s", a.Count, a.Code, onNode(a.Node)),
			Actual:      fmt.Sprintf("%d", n),
			Diagnostics: result.Diagnostics,
		}
	}
	if a.Count == 0 && n == 0 {
		return &AssertionError{
			Type:        AssertDiagnostic,
			Expected:    fmt.Sprintf("%s%s", a.Code, onNode(a.Node)),
			Actual:      "not emitted",
			Diagnostics: result.Diagnostics,
		}
	}
	return nil
}

func assertNoDiagnostics(result *Result, a Assertion) error {
	n := len(result.Diagnostics)
	if a.Code != "" {
		n = countMatching(result.Diagnostics, a)
	}
	if n == 0 {
		return nil
	}
	expected := "no diagnostics"
	if a.Code != "" {
		expected = fmt.Sprintf("no %s%s", a.Code, onNode(a.Node))
	}
	return &AssertionError{
		Type:        AssertNoDiagnostics,
		Expected:    expected,
		Actual:      fmt.Sprintf("%d emitted", n),
		Diagnostics: result.Diagnostics,
	}
}

func assertEfficiency(result *Result, a Assertion) error {
	for _, e := range result.Efficiency {
		if e.NodeID != a.Node || (a.Item != "" && e.ItemKey != a.Item) {
			continue
		}
		if math.Abs(e.Efficiency-*a.Efficiency) > efficiencyTolerance {
			return &AssertionError{
				Type:     AssertEfficiency,
				Expected: fmt.Sprintf("node %q efficiency %g", a.Node, *a.Efficiency),
				Actual:   fmt.Sprintf("%g (speed %d of %d)", e.Efficiency, e.Speed, e.Available),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertEfficiency,
		Expected: fmt.Sprintf("an efficiency entry for node %q", a.Node),
		Actual:   "none",
	}
}

func assertStoredAnnotation(result *Result, a Assertion, actx *AssertionContext) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("stored_annotation requires a store")
	}
	stored, err := actx.Store.Annotations(actx.Ctx)
	if err != nil {
		return fmt.Errorf("read annotations: %w", err)
	}
	ann, ok := stored[a.Edge]
	if !ok {
		return compareAnnotation(AssertStoredAnnotation, a, nil)
	}
	if ann.RunID() != result.RunID {
		return &AssertionError{
			Type:     AssertStoredAnnotation,
			Expected: fmt.Sprintf("edge %q stored by run %s", a.Edge, result.RunID),
			Actual:   ann.RunID(),
		}
	}
	return compareAnnotation(AssertStoredAnnotation, a, &ann.EdgeAnnotation)
}

func countMatching(diags []ir.Diagnostic, a Assertion) int {
	n := 0
	for _, d := range diags {
		if d.Code == a.Code && (a.Node == "" || d.NodeID == a.Node) {
			n++
		}
	}
	return n
}

func onNode(node string) string {
	if node == "" {
		return ""
	}
	return fmt.Sprintf(" on node %q", node)
}
