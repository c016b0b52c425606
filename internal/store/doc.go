// Package store provides SQLite-backed document storage for factory graphs.
//
// The store keeps one graph per database:
//   - Nodes: one row per node, configuration stored as JSON
//   - Edges: one row per edge, each handle held by at most one edge
//   - Settings: free-form key/value pairs (reference document path, ...)
//   - Annotations: the edge balance written by the last compute run
//   - Results: per-handle expected and actual flows of every computed node
//
// Saving a graph replaces the stored document in a single transaction.
// Annotations and results are derived data and cascade away with their
// edge or node.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Queries that return lists order by id so reads are deterministic.
package store
