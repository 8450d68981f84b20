package clock

import (
	"sync/atomic"
	"time"
)

// Clock supplies the current time as unix seconds.
type Clock interface {
	Now() int64
}

type SystemClock struct{}

func NewSystemClock() Clock {
	return SystemClock{}
}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// ManualClock only moves when told to. Safe for concurrent use.
type ManualClock struct {
	now atomic.Int64
}

func NewManualClock(start int64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)
	return c
}

func (c *ManualClock) Now() int64 {
	return c.now.Load()
}

// Set jumps to t.
func (c *ManualClock) Set(t int64) {
	c.now.Store(t)
}

// Advance moves the clock forward by d seconds and returns the new reading.
func (c *ManualClock) Advance(d int64) int64 {
	return c.now.Add(d)
}
