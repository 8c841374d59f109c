package flux

import "sync/atomic"

// Sequencer hands out strictly increasing sequence numbers.
// testutil.DeterministicClock satisfies it for tests.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock used to stamp dispatched actions.
//
// Ordering never depends on wall-clock time. The dispatcher calls Next from
// its serialized delivery loop, so numbers also reflect delivery order.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
