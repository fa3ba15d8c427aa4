package simulation

import (
	"sync"
	"time"
)

// VirtualClock is a manually advanced clock. Pass its Now method to
// parking.WithClock so the lot and the simulator share time.
type VirtualClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{t: start}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
