package engine

import (
	"slices"

	"github.com/roach88/beltline/internal/ir"
)

// memoEntry is the cached computation of one node.
type memoEntry struct {
	basedOn string
	result  *ir.Result // nil when the node is unconfigured or failed
	pass    int64
	kind    ir.NodeKind
}

// Memo is the result table shared by every compute pass of a Context,
// keyed by node id.
//
// An entry is reused while the node's configuration snapshot matches
// basedOn. Logistic entries additionally expire with the pass that
// produced them, since their flows depend on neighbours whose
// configuration is not part of their own snapshot.
//
// Memo also remembers which diagnostics each node has emitted for its
// current snapshot so that a recomputation does not repeat them.
type Memo struct {
	entries map[string]memoEntry
	emitted map[string]emittedSet
}

type emittedSet struct {
	basedOn string
	seen    map[ir.Diagnostic]struct{}
}

// NewMemo creates an empty table.
func NewMemo() *Memo {
	return &Memo{
		entries: make(map[string]memoEntry),
		emitted: make(map[string]emittedSet),
	}
}

// Result returns the cached result of a node, if any.
func (m *Memo) Result(nodeID string) (*ir.Result, bool) {
	e, ok := m.entries[nodeID]
	if !ok || e.result == nil {
		return nil, false
	}
	return e.result, true
}

// Len returns the number of cached entries, including nil results.
func (m *Memo) Len() int {
	return len(m.entries)
}

// Forget drops everything cached for a node.
func (m *Memo) Forget(nodeID string) {
	delete(m.entries, nodeID)
	delete(m.emitted, nodeID)
}

// Prune drops entries of nodes for which live returns false.
func (m *Memo) Prune(live func(nodeID string) bool) int {
	dropped := 0
	for id := range m.entries {
		if !live(id) {
			m.Forget(id)
			dropped++
		}
	}
	for id := range m.emitted {
		if !live(id) {
			delete(m.emitted, id)
		}
	}
	return dropped
}

// lookup returns a reusable entry for the request.
//
// A cached result computed with ignored handles is only reused for
// exactly the same ignore set; a complete result serves any request.
func (m *Memo) lookup(nodeID, basedOn string, ignore []ir.HandleID, pass int64) (*ir.Result, bool) {
	e, ok := m.entries[nodeID]
	if !ok || e.basedOn != basedOn {
		return nil, false
	}
	if e.kind == ir.KindLogistic && e.pass != pass {
		return nil, false
	}
	if e.result == nil || len(e.result.IgnoredHandles) == 0 {
		return e.result, true
	}
	return e.result, sameHandleSet(e.result.IgnoredHandles, ignore)
}

func (m *Memo) store(nodeID string, kind ir.NodeKind, basedOn string, res *ir.Result, pass int64) {
	m.entries[nodeID] = memoEntry{basedOn: basedOn, result: res, pass: pass, kind: kind}
}

// begin prepares the emission record of a node about to be computed
// from the configuration identified by basedOn.
func (m *Memo) begin(nodeID, basedOn string) {
	if set, ok := m.emitted[nodeID]; ok && set.basedOn == basedOn {
		return
	}
	m.emitted[nodeID] = emittedSet{basedOn: basedOn, seen: make(map[ir.Diagnostic]struct{})}
}

// markEmitted records d for a node and reports whether it is new.
func (m *Memo) markEmitted(nodeID string, d ir.Diagnostic) bool {
	set, ok := m.emitted[nodeID]
	if !ok {
		set = emittedSet{seen: make(map[ir.Diagnostic]struct{})}
		m.emitted[nodeID] = set
	}
	if _, dup := set.seen[d]; dup {
		return false
	}
	set.seen[d] = struct{}{}
	return true
}

func sameHandleSet(a, b []ir.HandleID) bool {
	if len(a) != len(b) {
		return false
	}
	for _, h := range b {
		if !slices.Contains(a, h) {
			return false
		}
	}
	return true
}
