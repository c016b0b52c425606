// Package calc implements the per-node flow calculators.
//
// Every calculator is a pure function of the node's resolved configuration,
// the reference data and, for logistic nodes, the flows its neighbours
// expose. Calculators never recurse into the graph themselves: the engine
// supplies a NeighborFunc that hides memoization and cycle breaking.
//
// SIGN CONVENTION:
//
// Rates are int64 thou (items per minute * 1000). A negative rate on a
// handle is consumed by the node, a positive rate is produced by it. Edge
// balance therefore checks source + target == 0.
//
// A calculator returns nil when the node's selection key (itemKey,
// recipeKey, logistic type) is unset. That is the "not yet configured"
// state, not an error. Reference-data misses are reported to the Sink and
// also yield nil (item/recipe) or skip the affected item only.
package calc
