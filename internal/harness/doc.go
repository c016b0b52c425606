// Package harness runs factory scenarios end to end and checks the
// computed flows, edge annotations and diagnostics against assertions.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: splitter_balanced
//	description: "One ingot source split across two constructors"
//	reference: ../reference.json
//	run_id: run-splitter
//	graph:
//	  nodes:
//	    - id: ingots
//	      kind: item
//	      item: {itemKey: Desc_IronIngot_C, speedThou: 30000, interfaceKind: out}
//	  edges:
//	    - id: e1
//	      source: ingots
//	      sourceHandle: right-solid-out-0
//	      target: split
//	      targetHandle: left-solid-in-0
//	assertions:
//	  - type: edge
//	    edge: e1
//	    state: ok
//	    label: "Iron Ingot 30/min"
//
// The reference path is resolved relative to the scenario file.
//
// # Assertion Types
//
//   - flow: the rate of one item at a node handle
//   - edge: the state and/or label of an edge annotation
//   - diagnostic: a diagnostic code was emitted, optionally on a node and an exact number of times
//   - no_diagnostics: nothing was emitted, or nothing with the given code
//   - efficiency: the delivery efficiency of a consuming item node
//   - stored_annotation: the annotation persisted to the store for an edge
//
// # Determinism
//
// Every scenario runs against a fresh in-memory SQLite store with a fixed
// run id. The graph makes a round trip through the store before it is
// computed, so scenarios also exercise persistence.
package harness
