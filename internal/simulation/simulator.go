package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"parking-engine/internal/logging"
	"parking-engine/internal/parking"
)

const (
	busyEntryProbability  = 0.4
	quietEntryProbability = 0.2
	maxExitProbability    = 0.3
	exitProbabilityPerHr  = 0.05
)

// Lot is the part of the parking engine the simulator drives.
type Lot interface {
	Entry(ctx context.Context, plate string, vehicleType parking.VehicleType) (parking.EntryReceipt, error)
	Pay(ctx context.Context, ticketID string) (float64, error)
	Exit(ctx context.Context, ticketID string) error
	Status(ctx context.Context) parking.Status
	Forecast(ctx context.Context, hoursAhead float64) float64
	Ticket(id string) (parking.Ticket, bool)
}

type Config struct {
	Duration time.Duration
	Interval time.Duration
	Seed     uint64
	Pace     time.Duration
}

type Summary struct {
	Steps         int
	Entries       int
	Exits         int
	Rejected      int
	Revenue       float64
	OccupiedSpots int
	OccupancyRate float64
}

type Simulator struct {
	lot    Lot
	clock  *VirtualClock
	rng    *rand.Rand
	cfg    Config
	active []string
}

// New returns a simulator that advances clock by cfg.Interval per step. The
// lot must read time from the same clock.
func New(lot Lot, clock *VirtualClock, cfg Config) (*Simulator, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %s", cfg.Duration)
	}
	return &Simulator{
		lot:   lot,
		clock: clock,
		rng:   newRand(cfg.Seed),
		cfg:   cfg,
	}, nil
}

// Run steps through the configured period. On cancellation it returns the
// summary so far together with the context error.
func (s *Simulator) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	end := s.clock.Now().Add(s.cfg.Duration)

	logging.Info(ctx).
		Time("start", s.clock.Now()).
		Dur("duration", s.cfg.Duration).
		Dur("interval", s.cfg.Interval).
		Msg("simulation started")

	for s.clock.Now().Before(end) {
		if err := ctx.Err(); err != nil {
			return s.finish(ctx, summary), err
		}

		s.step(ctx, &summary)
		s.clock.Advance(s.cfg.Interval)

		if err := s.wait(ctx); err != nil {
			return s.finish(ctx, summary), err
		}
	}

	summary = s.finish(ctx, summary)
	logging.Info(ctx).
		Int("steps", summary.Steps).
		Int("entries", summary.Entries).
		Int("exits", summary.Exits).
		Int("rejected", summary.Rejected).
		Float64("revenue", summary.Revenue).
		Msg("simulation completed")
	return summary, nil
}

func (s *Simulator) step(ctx context.Context, summary *Summary) {
	now := s.clock.Now()
	summary.Steps++

	s.processExits(ctx, now, summary)

	entryProbability := quietEntryProbability
	if parking.IsBusyHour(now) {
		entryProbability = busyEntryProbability
	}

	status := s.lot.Status(ctx)
	if status.AvailableSpots > 0 && Chance(s.rng, entryProbability) {
		vehicleType := RandomChoice(s.rng, parking.VehicleTypes)
		plate := RandomPlate(s.rng)

		receipt, err := s.lot.Entry(ctx, plate, vehicleType)
		if err != nil {
			summary.Rejected++
			logging.Debug(ctx).Err(err).Str("plate", plate).Str("vehicle_type", string(vehicleType)).Msg("simulated entry rejected")
		} else {
			summary.Entries++
			s.active = append(s.active, receipt.TicketID)
			logging.Debug(ctx).Str("plate", plate).Str("location", receipt.Location).Msg("simulated entry")
		}
	}

	status = s.lot.Status(ctx)
	logging.Info(ctx).
		Time("time", now).
		Int("occupied", status.OccupiedSpots).
		Int("total", status.TotalSpots).
		Float64("occupancy_rate", status.OccupancyRate).
		Float64("revenue", status.TotalRevenue).
		Float64("forecast_1h", s.lot.Forecast(ctx, 1)).
		Msg("simulation step")
}

func (s *Simulator) processExits(ctx context.Context, now time.Time, summary *Summary) {
	remaining := s.active[:0]
	for _, ticketID := range s.active {
		ticket, ok := s.lot.Ticket(ticketID)
		if !ok || ticket.HasExited() {
			continue
		}

		hoursParked := now.Sub(ticket.EntryTime).Hours()
		if !Chance(s.rng, math.Min(maxExitProbability, hoursParked*exitProbabilityPerHr)) {
			remaining = append(remaining, ticketID)
			continue
		}

		if _, err := s.lot.Pay(ctx, ticketID); err != nil && !errors.Is(err, parking.ErrAlreadyPaid) {
			logging.Warn(ctx).Err(err).Str("ticket_id", ticketID).Msg("simulated payment failed")
			remaining = append(remaining, ticketID)
			continue
		}
		if err := s.lot.Exit(ctx, ticketID); err != nil {
			logging.Warn(ctx).Err(err).Str("ticket_id", ticketID).Msg("simulated exit failed")
			remaining = append(remaining, ticketID)
			continue
		}

		summary.Exits++
		logging.Debug(ctx).Str("ticket_id", ticketID).Msg("simulated exit")
	}
	s.active = remaining
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.cfg.Pace <= 0 {
		return nil
	}
	select {
	case <-time.After(s.cfg.Pace):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simulator) finish(ctx context.Context, summary Summary) Summary {
	status := s.lot.Status(ctx)
	summary.Revenue = status.TotalRevenue
	summary.OccupiedSpots = status.OccupiedSpots
	summary.OccupancyRate = status.OccupancyRate
	return summary
}
