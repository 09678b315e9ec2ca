package sched

import "sync/atomic"

// VirtualClock counts logical milliseconds. It never samples the wall clock;
// time passes only when a caller advances it, which is what makes task
// ordering exactly reproducible in tests.
type VirtualClock struct {
	now atomic.Int64
}

// NewVirtualClock creates a clock at virtual time zero.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

// Now returns the current virtual time in milliseconds.
func (c *VirtualClock) Now() int64 {
	return c.now.Load()
}

// Advance moves the clock forward by ms (negative values are ignored) and
// returns the new virtual time.
func (c *VirtualClock) Advance(ms int64) int64 {
	if ms <= 0 {
		return c.now.Load()
	}
	return c.now.Add(ms)
}
