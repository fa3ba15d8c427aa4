package parking

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-engine/internal/logging"
)

// Recorder receives operation outcomes for an external metrics backend.
type Recorder interface {
	RecordEntry(vehicleType, status string)
	RecordPayment(vehicleType string, amount float64)
	RecordExit(status string)
	RecordOccupancy(occupied, total int, rate float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordEntry(string, string)        {}
func (nopRecorder) RecordPayment(string, float64)     {}
func (nopRecorder) RecordExit(string)                 {}
func (nopRecorder) RecordOccupancy(int, int, float64) {}

// InstrumentedParkingLot serializes every operation on a ParkingLot and
// traces, measures and logs it.
type InstrumentedParkingLot struct {
	mu        sync.Mutex
	lot       *ParkingLot
	telemetry *TelemetryProvider
	recorder  Recorder
	retired   bool

	// Metrics
	entryOperations   metric.Int64Counter
	paymentOperations metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSpotsGauge   metric.Int64UpDownCounter
	revenueCounter    metric.Float64Counter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedParkingLot(lot *ParkingLot, telemetry *TelemetryProvider, recorder Recorder) (*InstrumentedParkingLot, error) {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("entry_operations_total",
		metric.WithDescription("Total number of vehicle entry operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	paymentOperations, err := meter.Int64Counter("payment_operations_total",
		metric.WithDescription("Total number of ticket payment operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("exit_operations_total",
		metric.WithDescription("Total number of vehicle exit operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_spots",
		metric.WithDescription("Total number of parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenueCounter, err := meter.Float64Counter("parking_revenue_total",
		metric.WithDescription("Total collected parking fees"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	ipl := &InstrumentedParkingLot{
		lot:               lot,
		telemetry:         telemetry,
		recorder:          recorder,
		entryOperations:   entryOperations,
		paymentOperations: paymentOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		totalSpotsGauge:   totalSpotsGauge,
		revenueCounter:    revenueCounter,
		operationDuration: operationDuration,
	}

	totalSpotsGauge.Add(context.Background(), int64(lot.Capacity()))
	recorder.RecordOccupancy(0, lot.Capacity(), 0)

	return ipl, nil
}

func (ipl *InstrumentedParkingLot) Entry(ctx context.Context, plate string, vehicleType VehicleType) (EntryReceipt, error) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.entry",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.String("vehicle.type", string(vehicleType)),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_spot")

	receipt, err := ipl.lot.Entry(plate, vehicleType)

	duration := time.Since(start).Seconds()
	status := outcome(err)

	labels := []attribute.KeyValue{
		attribute.String("operation", "entry"),
		attribute.String("vehicle_type", string(vehicleType)),
		attribute.String("status", status),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Warn(ctx).Err(err).Str("plate", plate).Str("vehicle_type", string(vehicleType)).Msg("entry rejected")
	} else {
		span.SetAttributes(
			attribute.String("spot.id", receipt.SpotID),
			attribute.String("spot.type", string(receipt.SpotType)),
			attribute.String("ticket.id", receipt.TicketID),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.String("spot_id", receipt.SpotID),
		))
		ipl.trackOccupancy(ctx, 1)
		logging.Info(ctx).
			Str("plate", plate).
			Str("vehicle_id", receipt.VehicleID).
			Str("ticket_id", receipt.TicketID).
			Str("spot_id", receipt.SpotID).
			Msg("vehicle entered")
	}

	ipl.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))
	ipl.recorder.RecordEntry(string(vehicleType), status)

	return receipt, err
}

func (ipl *InstrumentedParkingLot) Quote(ctx context.Context, ticketID string) (float64, error) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.quote",
		trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	start := time.Now()
	fee, err := ipl.lot.Quote(ticketID)
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Float64("ticket.fee", fee))
	}

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "quote"),
		attribute.String("status", outcome(err)),
	))

	return fee, err
}

func (ipl *InstrumentedParkingLot) Pay(ctx context.Context, ticketID string) (float64, error) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.pay",
		trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	start := time.Now()

	span.AddEvent("computing_fee")

	amount, err := ipl.lot.Pay(ticketID)

	duration := time.Since(start).Seconds()
	status := outcome(err)
	vehicleType := ipl.vehicleTypeOf(ticketID)

	labels := []attribute.KeyValue{
		attribute.String("operation", "pay"),
		attribute.String("vehicle_type", vehicleType),
		attribute.String("status", status),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Warn(ctx).Err(err).Str("ticket_id", ticketID).Msg("payment rejected")
	} else {
		span.SetAttributes(attribute.Float64("ticket.amount", amount))
		span.AddEvent("ticket_settled")
		ipl.revenueCounter.Add(ctx, amount, metric.WithAttributes(attribute.String("vehicle_type", vehicleType)))
		ipl.recorder.RecordPayment(vehicleType, amount)
		logging.Info(ctx).Str("ticket_id", ticketID).Float64("amount", amount).Msg("ticket paid")
	}

	ipl.paymentOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return amount, err
}

func (ipl *InstrumentedParkingLot) Exit(ctx context.Context, ticketID string) error {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.exit",
		trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	start := time.Now()

	// Capture the spot before it is released
	var spotID string
	if t, ok := ipl.lot.Ticket(ticketID); ok {
		if v, ok := ipl.lot.Vehicle(t.VehicleID); ok {
			spotID = v.SpotID
		}
	}

	span.AddEvent("releasing_spot")

	err := ipl.lot.Exit(ticketID)

	duration := time.Since(start).Seconds()
	status := outcome(err)

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
		attribute.String("status", status),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Warn(ctx).Err(err).Str("ticket_id", ticketID).Msg("exit rejected")
	} else {
		span.SetAttributes(attribute.String("spot.id", spotID))
		span.AddEvent("spot_released")
		ipl.trackOccupancy(ctx, -1)
		logging.Info(ctx).Str("ticket_id", ticketID).Str("spot_id", spotID).Msg("vehicle exited")
	}

	ipl.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))
	ipl.recorder.RecordExit(status)

	return err
}

func (ipl *InstrumentedParkingLot) Status(ctx context.Context) Status {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.status")
	defer span.End()

	start := time.Now()

	span.AddEvent("retrieving_status")

	status := ipl.lot.Status()

	duration := time.Since(start).Seconds()

	span.SetAttributes(
		attribute.Int("occupied_spots_count", status.OccupiedSpots),
		attribute.Int("total_capacity", status.TotalSpots),
		attribute.Float64("occupancy_rate", status.OccupancyRate),
	)

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))
	ipl.recorder.RecordOccupancy(status.OccupiedSpots, status.TotalSpots, status.OccupancyRate)

	return status
}

func (ipl *InstrumentedParkingLot) Recommend(ctx context.Context, vehicleType VehicleType, preference string) (string, bool) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.recommend",
		trace.WithAttributes(
			attribute.String("vehicle.type", string(vehicleType)),
			attribute.String("preference", preference),
		))
	defer span.End()

	start := time.Now()
	spotID, ok := ipl.lot.Recommend(vehicleType, preference)
	duration := time.Since(start).Seconds()

	status := "found"
	if ok {
		span.SetAttributes(attribute.String("spot.id", spotID))
	} else {
		status = "not_found"
		span.AddEvent("no_suitable_spot")
	}

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "recommend"),
		attribute.String("status", status),
	))

	return spotID, ok
}

func (ipl *InstrumentedParkingLot) Forecast(ctx context.Context, hoursAhead float64) float64 {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.forecast",
		trace.WithAttributes(attribute.Float64("hours_ahead", hoursAhead)))
	defer span.End()

	start := time.Now()
	predicted := ipl.lot.Forecast(hoursAhead)
	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Float64("predicted_occupancy_rate", predicted))

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "forecast"),
		attribute.String("status", "success"),
	))

	return predicted
}

func (ipl *InstrumentedParkingLot) ParkedByPlate(ctx context.Context, plate string) []Vehicle {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	_, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.find_by_plate",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	vehicles := ipl.lot.ParkedByPlate(plate)
	if len(vehicles) == 0 {
		span.AddEvent("vehicle_not_found")
	} else {
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("matches", len(vehicles)),
		))
	}
	return vehicles
}

func (ipl *InstrumentedParkingLot) Ticket(id string) (Ticket, bool) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()
	return ipl.lot.Ticket(id)
}

func (ipl *InstrumentedParkingLot) Vehicle(id string) (Vehicle, bool) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()
	return ipl.lot.Vehicle(id)
}

func (ipl *InstrumentedParkingLot) Spot(id string) (Spot, bool) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()
	return ipl.lot.Spot(id)
}

func (ipl *InstrumentedParkingLot) Capacity() int {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()
	return ipl.lot.Capacity()
}

func (ipl *InstrumentedParkingLot) Levels() int {
	return ipl.lot.Levels()
}

func (ipl *InstrumentedParkingLot) SpotsPerLevel() int {
	return ipl.lot.SpotsPerLevel()
}

// Retire withdraws the lot's spots from the shared occupancy and capacity
// gauges. Call it when the lot is replaced; later operations no longer move
// the gauges.
func (ipl *InstrumentedParkingLot) Retire(ctx context.Context) {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	if ipl.retired {
		return
	}
	ipl.retired = true

	ipl.occupancyGauge.Add(ctx, -int64(ipl.lot.Occupied()))
	ipl.totalSpotsGauge.Add(ctx, -int64(ipl.lot.Capacity()))
}

// trackOccupancy must be called with mu held.
func (ipl *InstrumentedParkingLot) trackOccupancy(ctx context.Context, delta int64) {
	if ipl.retired {
		return
	}
	ipl.occupancyGauge.Add(ctx, delta)

	occupied, total := ipl.lot.Occupied(), ipl.lot.Capacity()
	var rate float64
	if total > 0 {
		rate = float64(occupied) / float64(total) * 100
	}
	ipl.recorder.RecordOccupancy(occupied, total, rate)
}

// vehicleTypeOf must be called with mu held.
func (ipl *InstrumentedParkingLot) vehicleTypeOf(ticketID string) string {
	t, ok := ipl.lot.Ticket(ticketID)
	if !ok {
		return "unknown"
	}
	v, ok := ipl.lot.Vehicle(t.VehicleID)
	if !ok {
		return "unknown"
	}
	return string(v.Type)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoSpotAvailable):
		return "no_spot"
	case errors.Is(err, ErrUnknownTicket), errors.Is(err, ErrUnknownVehicle), errors.Is(err, ErrUnknownSpot):
		return "not_found"
	case errors.Is(err, ErrUnknownVehicleType):
		return "invalid"
	case errors.Is(err, ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, ErrNotYetPaid):
		return "not_paid"
	case errors.Is(err, ErrAlreadyFree):
		return "already_exited"
	default:
		return "failed"
	}
}
