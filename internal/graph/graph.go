// Package graph holds the editable factory graph: nodes, edges and the
// per-node handle adjacency the engine walks.
//
// A Graph is not safe for concurrent use. Callers serialize edits and
// compute passes, the same single-writer rule the engine relies on.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/beltline/internal/ir"
)

// Connection errors returned by Connect and AddNode.
var (
	ErrDuplicateID    = errors.New("duplicate id")
	ErrUnknownNode    = errors.New("unknown node")
	ErrPortMismatch   = errors.New("edge must run from an out handle to an in handle")
	ErrFormMismatch   = errors.New("edge endpoints carry different forms")
	ErrHandleOccupied = errors.New("handle already connected")
)

// Graph is an in-memory node/edge collection with handle adjacency.
type Graph struct {
	nodes     map[string]*ir.Node
	edges     map[string]*ir.Edge
	adjacency map[string]map[ir.HandleID]string // node id -> handle -> edge id
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*ir.Node),
		edges:     make(map[string]*ir.Edge),
		adjacency: make(map[string]map[ir.HandleID]string),
	}
}

// NewEdgeID returns a fresh random edge id.
func NewEdgeID() string {
	return "e-" + uuid.NewString()
}

// AddNode inserts n. The id must be non-empty and unused.
func (g *Graph) AddNode(n ir.Node) error {
	if n.ID == "" {
		return fmt.Errorf("add node: empty id")
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("add node %s: %w", n.ID, ErrDuplicateID)
	}
	g.nodes[n.ID] = &n
	return nil
}

// UpdateNode replaces the configuration of an existing node.
// Edges stay attached; the engine notices the change through basedOn.
func (g *Graph) UpdateNode(n ir.Node) error {
	if _, ok := g.nodes[n.ID]; !ok {
		return fmt.Errorf("update node %s: %w", n.ID, ErrUnknownNode)
	}
	g.nodes[n.ID] = &n
	return nil
}

// RemoveNode deletes a node together with every edge attached to it.
func (g *Graph) RemoveNode(id string) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	for _, edgeID := range g.adjacency[id] {
		g.Disconnect(edgeID)
	}
	delete(g.adjacency, id)
	delete(g.nodes, id)
	return true
}

// Connect validates and inserts e, generating an id when it has none.
//
// The source handle must be an out port, the target handle an in port,
// both must carry the same form, and neither may already hold an edge.
// Handles are decoded strictly; a malformed id yields an ir.FlowError
// with ErrCodeMalformedHandle.
func (g *Graph) Connect(e ir.Edge) (ir.Edge, error) {
	if e.ID == "" {
		e.ID = NewEdgeID()
	}
	if _, exists := g.edges[e.ID]; exists {
		return ir.Edge{}, fmt.Errorf("connect %s: %w", e.ID, ErrDuplicateID)
	}
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := g.nodes[id]; !ok {
			return ir.Edge{}, fmt.Errorf("connect %s: node %q: %w", e.ID, id, ErrUnknownNode)
		}
	}

	src, err := ir.DecodeHandle(e.SourceHandle, true)
	if err != nil {
		return ir.Edge{}, fmt.Errorf("connect %s: %w", e.ID, err)
	}
	dst, err := ir.DecodeHandle(e.TargetHandle, true)
	if err != nil {
		return ir.Edge{}, fmt.Errorf("connect %s: %w", e.ID, err)
	}
	if src.PortType != ir.PortOut || dst.PortType != ir.PortIn {
		return ir.Edge{}, fmt.Errorf("connect %s: %w", e.ID, ErrPortMismatch)
	}
	if src.Form != dst.Form {
		return ir.Edge{}, fmt.Errorf("connect %s: %s vs %s: %w", e.ID, src.Form, dst.Form, ErrFormMismatch)
	}
	if other, ok := g.adjacency[e.Source][e.SourceHandle]; ok {
		return ir.Edge{}, fmt.Errorf("connect %s: %s/%s holds %s: %w", e.ID, e.Source, e.SourceHandle, other, ErrHandleOccupied)
	}
	if other, ok := g.adjacency[e.Target][e.TargetHandle]; ok {
		return ir.Edge{}, fmt.Errorf("connect %s: %s/%s holds %s: %w", e.ID, e.Target, e.TargetHandle, other, ErrHandleOccupied)
	}

	e.Annotation = nil
	g.edges[e.ID] = &e
	g.attach(e.Source, e.SourceHandle, e.ID)
	g.attach(e.Target, e.TargetHandle, e.ID)
	return e, nil
}

func (g *Graph) attach(nodeID string, h ir.HandleID, edgeID string) {
	adj, ok := g.adjacency[nodeID]
	if !ok {
		adj = make(map[ir.HandleID]string)
		g.adjacency[nodeID] = adj
	}
	adj[h] = edgeID
}

// Disconnect removes an edge and frees both of its handles.
func (g *Graph) Disconnect(edgeID string) bool {
	e, ok := g.edges[edgeID]
	if !ok {
		return false
	}
	delete(g.adjacency[e.Source], e.SourceHandle)
	delete(g.adjacency[e.Target], e.TargetHandle)
	delete(g.edges, edgeID)
	return true
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*ir.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given id. The engine writes the
// annotation of the returned edge in place.
func (g *Graph) Edge(id string) (*ir.Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Adjacency returns the handle -> edge id map of a node. The map is owned
// by the graph and must not be modified.
func (g *Graph) Adjacency(nodeID string) map[ir.HandleID]string {
	return g.adjacency[nodeID]
}

// NodeIDs returns every node id in sorted order.
func (g *Graph) NodeIDs() []string {
	return sortedKeys(g.nodes)
}

// NodeIDsOfKind returns the sorted ids of nodes of one kind.
func (g *Graph) NodeIDsOfKind(kind ir.NodeKind) []string {
	var ids []string
	for _, id := range g.NodeIDs() {
		if g.nodes[id].Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// EdgeIDs returns every edge id in sorted order.
func (g *Graph) EdgeIDs() []string {
	return sortedKeys(g.edges)
}

// Len returns the number of nodes and edges.
func (g *Graph) Len() (nodes, edges int) {
	return len(g.nodes), len(g.edges)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
