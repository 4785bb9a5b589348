package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type Real struct{}

func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now().UTC()
}

// Stub is a manually driven clock for tests.
type Stub struct {
	now  time.Time
	lock sync.Mutex
}

func NewStub(now time.Time) *Stub {
	return &Stub{now: now.UTC()}
}

func (c *Stub) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *Stub) Set(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = now.UTC()
}

func (c *Stub) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
