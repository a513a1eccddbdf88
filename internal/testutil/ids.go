package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator produces "<prefix>-0001", "<prefix>-0002", ...
//
// Journal entries written by a scenario therefore carry the same ids on every
// run, which keeps golden traces byte-identical. Unlike
// circulation.FixedGenerator it never runs out.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix means "entry".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "entry"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next id. Implements circulation.IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
