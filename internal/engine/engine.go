package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/beltline/internal/calc"
	"github.com/roach88/beltline/internal/ir"
)

// RunIDGenerator generates compute-run ids for log correlation.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// Graph is the read access the engine needs to the node/edge state.
// *graph.Graph implements it. The engine writes edge annotations through
// the pointers returned by Edge.
type Graph interface {
	Node(id string) (*ir.Node, bool)
	Edge(id string) (*ir.Edge, bool)
	Adjacency(nodeID string) map[ir.HandleID]string
	NodeIDsOfKind(kind ir.NodeKind) []string
	EdgeIDs() []string
}

// passOrder is the order of the full-graph passes. Logistic nodes pull
// their neighbours, so producers and consumers go first.
var passOrder = []ir.NodeKind{ir.KindItem, ir.KindRecipe, ir.KindLogistic}

// Context carries everything one compute pass reads or writes: the
// graph, the reference catalog, the diagnostic sink and the memo table.
//
// A Context is not safe for concurrent use. Callers serialize edits and
// computations on the same graph.
type Context struct {
	graph   Graph
	catalog calc.Reference
	sink    calc.Sink
	memo    *Memo
	runIDs  RunIDGenerator
	clock   *Clock
	runID   string
}

// Option configures a Context.
type Option func(*Context)

// WithSink sets the diagnostic sink. Default: a LogSink on slog.Default().
func WithSink(s calc.Sink) Option {
	return func(c *Context) {
		c.sink = s
	}
}

// WithMemo shares a memo table, e.g. across contexts built for
// successive edits of the same graph.
func WithMemo(m *Memo) Option {
	return func(c *Context) {
		c.memo = m
	}
}

// WithRunIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(c *Context) {
		c.runIDs = g
	}
}

// New creates a compute context over g and catalog.
func New(g Graph, catalog calc.Reference, opts ...Option) *Context {
	c := &Context{
		graph:   g,
		catalog: catalog,
		clock:   NewClock(),
		runIDs:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = NewLogSink(nil, nil)
	}
	if c.memo == nil {
		c.memo = NewMemo()
	}
	return c
}

// Memo returns the context's result table.
func (c *Context) Memo() *Memo {
	return c.memo
}

// RunID returns the id of the most recent compute pass.
func (c *Context) RunID() string {
	return c.runID
}

// Report summarizes a full compute pass.
type Report struct {
	RunID   string
	Results map[string]*ir.Result         // computed nodes; unconfigured ones are absent
	Edges   map[string]*ir.EdgeAnnotation // every edge, by id
}

// ComputeNode computes one node and everything it needs, starting a new
// pass. It returns nil without error for unconfigured nodes and nodes
// whose reference data is missing; the reason is sent to the sink.
func (c *Context) ComputeNode(nodeID string) (*ir.Result, error) {
	c.startPass()
	return c.computeNode(nodeID, nil, nil)
}

// ComputeGraph recomputes every node, items first, then recipes, then
// logistics, and finally annotates every edge with its balance.
func (c *Context) ComputeGraph() *Report {
	c.startPass()
	c.memo.Prune(func(id string) bool {
		_, ok := c.graph.Node(id)
		return ok
	})

	rep := &Report{
		RunID:   c.runID,
		Results: make(map[string]*ir.Result),
		Edges:   make(map[string]*ir.EdgeAnnotation),
	}
	for _, kind := range passOrder {
		for _, id := range c.graph.NodeIDsOfKind(kind) {
			res, err := c.computeNode(id, nil, nil)
			if err != nil {
				slog.Error("node computation failed", "run", c.runID, "node_id", id, "error", err)
				continue
			}
			if res != nil {
				rep.Results[id] = res
			}
		}
	}
	for _, id := range c.graph.EdgeIDs() {
		e, _ := c.graph.Edge(id)
		e.Annotation = c.annotate(e)
		rep.Edges[id] = e.Annotation
	}

	slog.Info("compute pass finished",
		"run", c.runID,
		"results", len(rep.Results),
		"edges", len(rep.Edges),
	)
	return rep
}

func (c *Context) startPass() {
	pass := c.clock.Next()
	c.runID = c.runIDs.Generate()
	slog.Debug("compute pass starting", "run", c.runID, "pass", pass)
}

// computeNode dispatches by node kind. visited is the path of nodes whose
// computation is in progress; revisiting one is a cycle.
func (c *Context) computeNode(nodeID string, ignore []ir.HandleID, visited []string) (*ir.Result, error) {
	if slices.Contains(visited, nodeID) {
		return nil, ir.NewCycleError(nodeID, append(slices.Clone(visited), nodeID))
	}
	node, ok := c.graph.Node(nodeID)
	if !ok {
		return nil, &ir.FlowError{
			Code:    ir.ErrCodeMissingNeighborResult,
			Message: "node does not exist",
			NodeID:  nodeID,
		}
	}

	switch node.Kind {
	case ir.KindItem:
		cfg := calc.ResolveItem(node.Item)
		basedOn, err := ir.ItemSnapshot(cfg)
		if err != nil {
			return nil, err
		}
		return c.memoized(node, basedOn, ignore, func(sink calc.Sink) *ir.Result {
			return calc.Item(nodeID, cfg, c.catalog, sink)
		}), nil

	case ir.KindRecipe:
		cfg := calc.ResolveRecipe(node.Recipe)
		basedOn, err := ir.RecipeSnapshot(cfg)
		if err != nil {
			return nil, err
		}
		return c.memoized(node, basedOn, ignore, func(sink calc.Sink) *ir.Result {
			return calc.Recipe(nodeID, cfg, c.catalog, sink)
		}), nil

	case ir.KindLogistic:
		cfg := calc.ResolveLogistic(node.Logistic)
		adj := c.graph.Adjacency(nodeID)
		basedOn, err := ir.LogisticSnapshot(cfg, adj)
		if err != nil {
			return nil, err
		}
		return c.memoized(node, basedOn, ignore, func(sink calc.Sink) *ir.Result {
			neighbor := c.neighborFunc(nodeID, adj, visited, sink)
			return calc.Logistic(nodeID, cfg, adj, ignore, neighbor, sink)
		}), nil
	}

	slog.Debug("node kind not computed", "run", c.runID, "node_id", nodeID, "kind", node.Kind)
	return nil, nil
}

// memoized returns the cached result when reusable, else runs compute and
// caches what it returns.
func (c *Context) memoized(node *ir.Node, basedOn string, ignore []ir.HandleID, compute func(calc.Sink) *ir.Result) *ir.Result {
	if res, ok := c.memo.lookup(node.ID, basedOn, ignore, c.clock.Current()); ok {
		slog.Debug("memo hit", "run", c.runID, "node_id", node.ID)
		return res
	}

	c.memo.begin(node.ID, basedOn)
	res := compute(nodeSink{memo: c.memo, nodeID: node.ID, out: c.sink})
	if res != nil {
		res.BasedOn = basedOn
	}
	c.memo.store(node.ID, node.Kind, basedOn, res, c.clock.Current())
	slog.Debug("node computed",
		"run", c.runID,
		"node_id", node.ID,
		"kind", node.Kind,
		"ignored", len(ignore),
		"configured", res != nil,
	)
	return res
}

// neighborFunc resolves the flow behind each wired handle of nodeID,
// computing the neighbour on demand with the shared handle ignored.
func (c *Context) neighborFunc(nodeID string, adj map[ir.HandleID]string, visited []string, sink calc.Sink) calc.NeighborFunc {
	path := append(slices.Clone(visited), nodeID)

	return func(h ir.HandleID) (ir.Flow, bool) {
		edgeID := adj[h]
		e, ok := c.graph.Edge(edgeID)
		if !ok {
			sink.Emit(missingNeighbor(nodeID, h, fmt.Sprintf("edge %q not found", edgeID)))
			return ir.Flow{}, false
		}
		otherID, otherHandle, ok := e.Opposite(nodeID, h)
		if !ok {
			sink.Emit(missingNeighbor(nodeID, h, fmt.Sprintf("edge %q does not attach here", edgeID)))
			return ir.Flow{}, false
		}

		res, err := c.computeNode(otherID, []ir.HandleID{otherHandle}, path)
		if err != nil {
			if ir.IsCycleError(err) {
				slog.Debug("cycle broken", "run", c.runID, "node_id", nodeID, "handle", h, "error", err)
			}
			var fe *ir.FlowError
			if errors.As(err, &fe) {
				sink.Emit(ir.DiagnosticFromError(ir.SeverityWarning, fe))
			} else {
				sink.Emit(missingNeighbor(nodeID, h, err.Error()))
			}
			return ir.Flow{}, false
		}
		if res == nil {
			return ir.Flow{}, false
		}
		return res.FlowAt(otherHandle)
	}
}

func missingNeighbor(nodeID string, h ir.HandleID, reason string) ir.Diagnostic {
	fe := &ir.FlowError{
		Code:     ir.ErrCodeMissingNeighborResult,
		Message:  reason,
		NodeID:   nodeID,
		HandleID: h,
	}
	return ir.DiagnosticFromError(ir.SeverityWarning, fe)
}
