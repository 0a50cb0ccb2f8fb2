package compute

import "sync/atomic"

// Counters is a fixed-length array of uint32 counters mutated with atomic
// adds. It models both group-shared and dispatch-global accumulation
// buffers.
type Counters struct {
	c []atomic.Uint32
}

// NewCounters returns n zeroed counters.
func NewCounters(n int) *Counters {
	return &Counters{c: make([]atomic.Uint32, n)}
}

// Len returns the number of counters.
func (c *Counters) Len() int { return len(c.c) }

// Add atomically adds delta to counter i.
func (c *Counters) Add(i int, delta uint32) {
	c.c[i].Add(delta)
}

// Load atomically reads counter i.
func (c *Counters) Load(i int) uint32 {
	return c.c[i].Load()
}

// Store atomically sets counter i.
func (c *Counters) Store(i int, v uint32) {
	c.c[i].Store(v)
}

// Reset zeroes every counter. It must not race with kernel writes.
func (c *Counters) Reset() {
	for i := range c.c {
		c.c[i].Store(0)
	}
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() []uint32 {
	out := make([]uint32, len(c.c))
	for i := range c.c {
		out[i] = c.c[i].Load()
	}
	return out
}

// Sum returns the total over all counters.
func (c *Counters) Sum() uint64 {
	var s uint64
	for i := range c.c {
		s += uint64(c.c[i].Load())
	}
	return s
}
