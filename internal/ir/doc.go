// Package ir provides the foundational data model for beltline.
//
// This package contains the types shared by every other internal package:
// handles and their wire identifiers, nodes and their per-kind
// configuration, edges and their display annotations, per-handle flows,
// computation results, diagnostics and the error taxonomy. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types in rates - every rate is an int64 scaled by 1000 ("thou")
//   - Handle identifiers are canonical strings "{direction}-{form}-{portType}-{slot}"
//   - Node configuration is hashed with canonical JSON to produce the
//     basedOn snapshot used for cache validity
//   - All JSON/YAML tags use camelCase to match persisted graph documents
package ir
