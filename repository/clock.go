package repository

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing millisecond timestamps in UTC,
// the precision BSON dates are stored with.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock(now func() time.Time) *Clock {

	if now == nil {
		now = time.Now
	}

	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {

	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}

	c.last = t
	return t
}
