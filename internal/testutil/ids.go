// Package testutil provides record id generators: a deterministic sequential
// one for tests and a random UUID one used by default by the seed command.
package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator produces record ids for newly created rows.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random UUID record ids. This is the production
// generator used by the seed command.
type UUIDGenerator struct{}

// Generate returns a new random UUID string.
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// SequentialGenerator generates "prefix-1", "prefix-2", ... record ids.
//
// This enables deterministic test execution: the same seeding run with the
// same SequentialGenerator produces byte-identical rows.
type SequentialGenerator struct {
	prefix string
	n      int
}

// NewSequentialGenerator creates a generator with the given prefix.
// If prefix is empty, "rec" is used.
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	if prefix == "" {
		prefix = "rec"
	}
	return &SequentialGenerator{prefix: prefix}
}

// Generate returns the next id in sequence.
func (g *SequentialGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset, the next Generate returns
// "prefix-1" again.
func (g *SequentialGenerator) Reset() {
	g.n = 0
}
