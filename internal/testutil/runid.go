package testutil

// FixedRunID always returns the same compute-run identifier.
//
// Golden snapshots and log assertions need every pass of a test to carry
// a known run id. Unlike engine.FixedGenerator, which hands out ids in
// sequence, this generator never runs out.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator returning id, or "test-run-default"
// when id is empty.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run id.
// Implements engine.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
