// Package engine drives flow computation over a whole factory graph.
//
// ARCHITECTURE:
//
// Passes:
// ComputeGraph runs four passes in a fixed order: item nodes, recipe
// nodes, logistic nodes, then edges. Items and recipes depend only on
// their own configuration; logistic nodes pull the flows of their
// neighbours, computing them on demand when the earlier passes have not.
// The edge pass compares both ends of every edge and writes a balance
// annotation.
//
// Memoization:
// Results live in a Memo keyed by node id and tagged with basedOn, the
// snapshot hash of the node's resolved configuration. Unchanged nodes are
// served from the memo. Logistic entries are also tagged with the pass
// number from the Clock and expire with it.
//
// Cycle guard:
// On-demand computation carries the path of nodes in progress. Reaching a
// node already on the path raises ir.ErrCodeCircularDependency, which the
// caller turns into a diagnostic and treats as "no result" for that
// neighbour. The neighbour is asked with the shared handle ignored, so
// two adjacent logistic nodes never wait on each other.
//
// Diagnostics:
// Nothing in a pass aborts the graph. Fail-soft conditions go to the
// sink; a node emits each diagnostic once per configuration snapshot.
//
// A Context is single-threaded. Callers serialize edits and passes.
package engine
