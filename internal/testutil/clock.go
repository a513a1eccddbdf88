package testutil

import "sync/atomic"

// DeterministicClock hands out journal sequence numbers 1, 2, 3, ... so a
// scenario journals the same seqs on every run. Safe for concurrent use.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next implements circulation.Sequencer.
func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last seq handed out, 0 before the first Next.
func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}
