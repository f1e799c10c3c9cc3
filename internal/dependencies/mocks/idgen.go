package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/scoreboard/internal/dependencies/idgen"
)

// MockIDGenerator is a mock implementation of idgen.Generator for testing
type MockIDGenerator struct {
	mu sync.Mutex

	// Queued is a queue of ids to hand out before falling back to a counter
	Queued []string
	next   int
	count  int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a new MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// NewID returns the next queued id, or "id-N" once the queue is drained
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next < len(g.Queued) {
		id := g.Queued[g.next]
		g.next++
		return id
	}
	g.count++
	return fmt.Sprintf("id-%d", g.count)
}

// Queue adds ids to the queue
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queued = append(g.Queued, ids...)
}
