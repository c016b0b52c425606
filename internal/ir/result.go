package ir

import "slices"

// Result is the computed flow of one node.
//
// Expected carries the declared rate of every handle. Actual is only set
// for logistic nodes and carries the rate after distribution. BasedOn is
// the snapshot of the resolved configuration the result was computed
// from. IgnoredHandles marks a partial result computed without querying
// the neighbours behind those handles.
type Result struct {
	NodeID         string      `json:"nodeId"`
	Kind           NodeKind    `json:"kind"`
	Expected       HandleFlows `json:"-"`
	Actual         HandleFlows `json:"-"`
	BasedOn        string      `json:"basedOn"`
	IgnoredHandles []HandleID  `json:"ignoredHandleIds,omitempty"`
}

// FlowAt returns the actual flow at h if present, else the expected flow.
func (r *Result) FlowAt(h HandleID) (Flow, bool) {
	if r == nil {
		return Flow{}, false
	}
	if f, ok := r.Actual[h]; ok {
		return f, true
	}
	f, ok := r.Expected[h]
	return f, ok
}

// Partial reports whether r was computed with ignored handles.
func (r *Result) Partial() bool {
	return r != nil && len(r.IgnoredHandles) > 0
}

// Ignores reports whether h was ignored when computing r.
func (r *Result) Ignores(h HandleID) bool {
	return r != nil && slices.Contains(r.IgnoredHandles, h)
}

// NodeFlows is the persisted view of a Result's flows.
type NodeFlows struct {
	Expected PersistedFlows `json:"expected"`
	Actual   PersistedFlows `json:"actual,omitempty"`
}

// Flows returns the persisted form of r's expected and actual flows.
func (r *Result) Flows() NodeFlows {
	if r == nil {
		return NodeFlows{}
	}
	return NodeFlows{Expected: r.Expected.Persisted(), Actual: r.Actual.Persisted()}
}
