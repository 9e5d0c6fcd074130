package testutil

// FixedRunIDGenerator generates the same run ID every time.
//
// Unlike analysis.FixedGenerator, which returns IDs in sequence and panics
// when exhausted, this generator never runs out. Use it when a test runs an
// analysis an unknown number of times and only needs a stable ID.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator that always returns id.
// If id is empty, Generate returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
