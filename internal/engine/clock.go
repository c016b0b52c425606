package engine

import "sync/atomic"

// Clock numbers compute passes. Next starts a pass and Current names the
// one in progress; logistic memo entries are stamped with Current and go
// stale once Next moves on.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock at pass 0, before any pass has started.
func NewClock() *Clock {
	return &Clock{}
}

// Next starts and returns a new pass number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the pass in progress.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
