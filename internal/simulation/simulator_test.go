package simulation

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-engine/internal/parking"
)

var monday = time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)

func newSimulatedLot(t *testing.T, clock *VirtualClock) *parking.InstrumentedParkingLot {
	t.Helper()

	telemetry := parking.NewLocalTelemetryProvider("simulation-test", nil)
	t.Cleanup(func() { telemetry.Shutdown(context.Background()) })

	lot, err := parking.NewParkingLot(2, 40, parking.WithClock(clock.Now))
	require.NoError(t, err)

	ipl, err := parking.NewInstrumentedParkingLot(lot, telemetry, nil)
	require.NoError(t, err)
	return ipl
}

func runSimulation(t *testing.T, seed uint64) (Summary, *parking.InstrumentedParkingLot) {
	t.Helper()

	clock := NewVirtualClock(monday)
	lot := newSimulatedLot(t, clock)

	sim, err := New(lot, clock, Config{Duration: 12 * time.Hour, Interval: 15 * time.Minute, Seed: seed})
	require.NoError(t, err)

	summary, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, monday.Add(12*time.Hour), clock.Now())
	return summary, lot
}

func TestRunKeepsBooks(t *testing.T) {
	summary, lot := runSimulation(t, 7)

	assert.Equal(t, 48, summary.Steps)
	assert.LessOrEqual(t, summary.Entries+summary.Rejected, summary.Steps)
	assert.Equal(t, summary.Entries-summary.Exits, summary.OccupiedSpots)

	status := lot.Status(context.Background())
	assert.Equal(t, status.OccupiedSpots, summary.OccupiedSpots)
	assert.InDelta(t, status.TotalRevenue, summary.Revenue, 1e-9)

	if summary.Exits > 0 {
		assert.Greater(t, summary.Revenue, 0.0)
	}
}

func TestRunIsRepeatableWithSeed(t *testing.T) {
	first, _ := runSimulation(t, 42)
	second, _ := runSimulation(t, 42)

	assert.Equal(t, first, second)
}

func TestRunStopsOnCancel(t *testing.T) {
	clock := NewVirtualClock(monday)
	lot := newSimulatedLot(t, clock)

	sim, err := New(lot, clock, Config{Duration: 24 * time.Hour, Interval: time.Minute, Pace: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	summary, err := sim.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, summary.Steps)
}

func TestNewRejectsBadInterval(t *testing.T) {
	clock := NewVirtualClock(monday)

	_, err := New(nil, clock, Config{Duration: time.Hour})
	assert.Error(t, err)

	_, err = New(nil, clock, Config{Duration: -time.Hour, Interval: time.Minute})
	assert.Error(t, err)
}

func TestRandomPlate(t *testing.T) {
	rng := newRand(1)
	pattern := regexp.MustCompile(`^[A-HJ-NP-Z]{3}-[0-9]{3}$`)

	for i := 0; i < 200; i++ {
		plate := RandomPlate(rng)
		assert.Regexp(t, pattern, plate)
	}
}

func TestChance(t *testing.T) {
	rng := newRand(1)

	assert.False(t, Chance(rng, 0))
	assert.False(t, Chance(rng, -1))
	assert.True(t, Chance(rng, 1))

	hits := 0
	for i := 0; i < 10000; i++ {
		if Chance(rng, 0.3) {
			hits++
		}
	}
	assert.InDelta(t, 3000, hits, 300)
}

func TestVirtualClock(t *testing.T) {
	clock := NewVirtualClock(monday)
	clock.Advance(90 * time.Minute)

	assert.Equal(t, monday.Add(90*time.Minute), clock.Now())
}
