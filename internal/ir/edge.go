package ir

// Edge connects an out handle of one node to an in handle of another.
//
// The connection layer guarantees SourceHandle is an out port, TargetHandle
// is an in port and both share a form; the engine assumes it.
type Edge struct {
	ID           string          `json:"id" yaml:"id"`
	Source       string          `json:"source" yaml:"source"`
	SourceHandle HandleID        `json:"sourceHandle" yaml:"sourceHandle"`
	Target       string          `json:"target" yaml:"target"`
	TargetHandle HandleID        `json:"targetHandle" yaml:"targetHandle"`
	Annotation   *EdgeAnnotation `json:"annotation,omitempty" yaml:"-"`
}

// Opposite returns the node and handle on the other side of the edge from
// nodeID, and false if nodeID is not an endpoint.
func (e *Edge) Opposite(nodeID string, h HandleID) (string, HandleID, bool) {
	switch {
	case e.Source == nodeID && e.SourceHandle == h:
		return e.Target, e.TargetHandle, true
	case e.Target == nodeID && e.TargetHandle == h:
		return e.Source, e.SourceHandle, true
	}
	return "", "", false
}

// EdgeState is the diagnostic colour state of an edge.
type EdgeState string

const (
	EdgeStateNone    EdgeState = ""
	EdgeStateOK      EdgeState = "ok"
	EdgeStateWarning EdgeState = "warning"
	EdgeStateError   EdgeState = "error"
)

// BalanceStatus describes one item on an edge.
type BalanceStatus string

const (
	BalanceBalanced       BalanceStatus = "balanced"
	BalanceOverproducing  BalanceStatus = "overproducing"
	BalanceUnderproducing BalanceStatus = "underproducing"
)

// ItemBalance is the balance of one item across an edge.
// Rate is the flow for balanced items and the absolute mismatch otherwise.
type ItemBalance struct {
	ItemKey string        `json:"itemKey"`
	Status  BalanceStatus `json:"status"`
	Rate    int64         `json:"rate"`
}

// EdgeAnnotation is the display-only diagnostic attached to an edge after
// a compute pass.
type EdgeAnnotation struct {
	State   EdgeState     `json:"state"`
	Label   string        `json:"label,omitempty"`
	Message string        `json:"message,omitempty"`
	Items   []ItemBalance `json:"items,omitempty"`
}

// Balanced reports whether every item on the edge nets to zero.
func (a *EdgeAnnotation) Balanced() bool {
	return a != nil && a.State == EdgeStateOK
}
