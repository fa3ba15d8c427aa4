package parking

import (
	"math"
	"time"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	// A Monday morning
	return &fakeClock{t: time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestLot(levels, spotsPerLevel int, clock *fakeClock) *ParkingLot {
	pl, err := NewParkingLot(levels, spotsPerLevel, WithClock(clock.Now))
	if err != nil {
		panic(err)
	}
	return pl
}
