package parking

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

type Counts struct {
	Total     int
	Occupied  int
	Available int
}

type Status struct {
	TotalSpots     int
	OccupiedSpots  int
	AvailableSpots int
	OccupancyRate  float64
	ByType         map[SpotType]Counts
	ByLevel        map[int]Counts
	TotalRevenue   float64
	Timestamp      time.Time
}

type Sample struct {
	Time time.Time
	Rate float64
}

// Tracker records an occupancy sample on every snapshot. Samples are never
// trimmed.
type Tracker struct {
	samples []Sample
	now     Clock
}

func NewTracker(now Clock) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

func (t *Tracker) Snapshot(r *Registry, revenue float64) Status {
	status := countSpots(r)
	status.TotalRevenue = revenue
	status.Timestamp = t.now()
	t.samples = append(t.samples, Sample{Time: status.Timestamp, Rate: status.OccupancyRate})
	return status
}

// Forecast extrapolates the occupancy rate hoursAhead from now. The current
// rate comes from a fresh snapshot, the trend from the samples taken before it.
func (t *Tracker) Forecast(r *Registry, revenue float64, hoursAhead float64) float64 {
	history := t.samples[:len(t.samples):len(t.samples)]
	current := t.Snapshot(r, revenue).OccupancyRate
	return Project(history, current, hoursAhead)
}

func (t *Tracker) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Project applies the mean hourly change across consecutive samples to the
// current rate, clamped to [0, 100].
func Project(history []Sample, current, hoursAhead float64) float64 {
	if len(history) < 2 {
		return current
	}
	var perHour []float64
	for i := 1; i < len(history); i++ {
		dt := history[i].Time.Sub(history[i-1].Time).Hours()
		if dt > 0 {
			perHour = append(perHour, (history[i].Rate-history[i-1].Rate)/dt)
		}
	}
	if len(perHour) == 0 {
		return current
	}
	predicted := current + stat.Mean(perHour, nil)*hoursAhead
	return math.Max(0, math.Min(100, predicted))
}

func countSpots(r *Registry) Status {
	status := Status{
		ByType:  make(map[SpotType]Counts, len(SpotTypes)),
		ByLevel: make(map[int]Counts),
	}
	for _, st := range SpotTypes {
		status.ByType[st] = Counts{}
	}
	for _, s := range r.spots {
		occupied := 0
		if s.IsOccupied() {
			occupied = 1
		}
		status.TotalSpots++
		status.OccupiedSpots += occupied

		c := status.ByType[s.Type]
		c.Total++
		c.Occupied += occupied
		c.Available = c.Total - c.Occupied
		status.ByType[s.Type] = c

		lc := status.ByLevel[s.Level]
		lc.Total++
		lc.Occupied += occupied
		lc.Available = lc.Total - lc.Occupied
		status.ByLevel[s.Level] = lc
	}
	status.AvailableSpots = status.TotalSpots - status.OccupiedSpots
	if status.TotalSpots > 0 {
		status.OccupancyRate = float64(status.OccupiedSpots) / float64(status.TotalSpots) * 100
	}
	return status
}
