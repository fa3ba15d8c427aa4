package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedShell struct {
	instrumentedParkingLot *InstrumentedParkingLot
	scanner                *bufio.Scanner
	out                    io.Writer
	telemetry              *TelemetryProvider
	recorder               Recorder
	lotOptions             []Option
}

// NewInstrumentedShell reads commands from in and writes replies to out. The
// options are applied to every lot created with create_parking_lot.
func NewInstrumentedShell(in io.Reader, out io.Writer, telemetry *TelemetryProvider, recorder Recorder, opts ...Option) *InstrumentedShell {
	return &InstrumentedShell{
		scanner:    bufio.NewScanner(in),
		out:        out,
		telemetry:  telemetry,
		recorder:   recorder,
		lotOptions: opts,
	}
}

// UseParkingLot lets the shell start with an existing lot.
func (s *InstrumentedShell) UseParkingLot(lot *InstrumentedParkingLot) {
	s.instrumentedParkingLot = lot
}

func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		// Create a new span for each command
		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.parse_command")
	defer span.End()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_parking_lot":
		s.handleCreateParkingLot(ctx, parts)
	case "enter":
		s.handleEnter(ctx, parts)
	case "quote":
		s.handleQuote(ctx, parts)
	case "pay":
		s.handlePay(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "recommend":
		s.handleRecommend(ctx, parts)
	case "forecast":
		s.handleForecast(ctx, parts)
	case "find":
		s.handleFind(ctx, parts)
	case "busy_times":
		s.handleBusyTimes(ctx)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *InstrumentedShell) handleCreateParkingLot(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.create_parking_lot")
	defer span.End()

	if len(parts) != 3 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: create_parking_lot <levels> <spots_per_level>")
		return
	}

	levels, err := strconv.Atoi(parts[1])
	if err != nil || levels <= 0 {
		span.RecordError(fmt.Errorf("invalid levels: %s", parts[1]))
		span.AddEvent("invalid_levels")
		s.println("Invalid levels")
		return
	}

	spotsPerLevel, err := strconv.Atoi(parts[2])
	if err != nil || spotsPerLevel < 0 {
		span.RecordError(fmt.Errorf("invalid spots per level: %s", parts[2]))
		span.AddEvent("invalid_spots_per_level")
		s.println("Invalid spots per level")
		return
	}

	span.SetAttributes(
		attribute.Int("parking_lot.levels", levels),
		attribute.Int("parking_lot.spots_per_level", spotsPerLevel),
	)

	lot, err := NewParkingLot(levels, spotsPerLevel, s.lotOptions...)
	if err != nil {
		span.RecordError(err)
		s.printf("Error creating parking lot: %s\n", err.Error())
		return
	}

	instrumentedParkingLot, err := NewInstrumentedParkingLot(lot, s.telemetry, s.recorder)
	if err != nil {
		span.RecordError(err)
		s.printf("Error creating parking lot: %s\n", err.Error())
		return
	}

	if s.instrumentedParkingLot != nil {
		s.instrumentedParkingLot.Retire(ctx)
	}
	s.instrumentedParkingLot = instrumentedParkingLot
	span.AddEvent("parking_lot_created")
	s.printf("Created a parking lot with %d spots across %d levels\n", lot.Capacity(), levels)
}

func (s *InstrumentedShell) handleEnter(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.enter_command")
	defer span.End()

	if !s.ready(span) {
		return
	}

	if len(parts) != 3 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: enter <plate> <vehicle_type>")
		return
	}

	plate := parts[1]
	vehicleType, err := ParseVehicleType(parts[2])
	if err != nil {
		span.RecordError(err)
		s.printf("Invalid vehicle type: %s\n", parts[2])
		return
	}

	receipt, err := s.instrumentedParkingLot.Entry(ctx, plate, vehicleType)
	if err != nil {
		span.AddEvent("entry_failed")
		if errors.Is(err, ErrNoSpotAvailable) {
			s.println("Sorry, no spot available")
			return
		}
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("entry_successful", trace.WithAttributes(
		attribute.String("spot_id", receipt.SpotID),
	))
	s.printf("Ticket %s: %s\n", receipt.TicketID, receipt.Location)
}

func (s *InstrumentedShell) handleQuote(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.quote_command")
	defer span.End()

	ticketID, ok := s.ticketArg(span, parts, "quote")
	if !ok {
		return
	}

	fee, err := s.instrumentedParkingLot.Quote(ctx, ticketID)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	s.printf("Amount due: $%.2f\n", fee)
}

func (s *InstrumentedShell) handlePay(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.pay_command")
	defer span.End()

	ticketID, ok := s.ticketArg(span, parts, "pay")
	if !ok {
		return
	}

	amount, err := s.instrumentedParkingLot.Pay(ctx, ticketID)
	if err != nil {
		span.AddEvent("payment_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("payment_successful")
	s.printf("Paid $%.2f for ticket %s\n", amount, ticketID)
}

func (s *InstrumentedShell) handleExit(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.exit_command")
	defer span.End()

	ticketID, ok := s.ticketArg(span, parts, "exit")
	if !ok {
		return
	}

	if err := s.instrumentedParkingLot.Exit(ctx, ticketID); err != nil {
		span.AddEvent("exit_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("exit_successful")
	s.printf("Ticket %s has exited\n", ticketID)
}

func (s *InstrumentedShell) handleStatus(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.status_command")
	defer span.End()

	if !s.ready(span) {
		return
	}

	status := s.instrumentedParkingLot.Status(ctx)
	span.SetAttributes(attribute.Int("occupied_spots_count", status.OccupiedSpots))
	span.AddEvent("status_retrieved")

	s.printf("Occupancy: %d/%d spots (%.1f%%)\n", status.OccupiedSpots, status.TotalSpots, status.OccupancyRate)
	s.println("Type\t\tAvailable/Total")
	for _, st := range SpotTypes {
		c := status.ByType[st]
		s.printf("%-12s\t%d/%d\n", st, c.Available, c.Total)
	}
	for level := 1; level <= s.instrumentedParkingLot.Levels(); level++ {
		c := status.ByLevel[level]
		s.printf("Level %d\t\t%d/%d\n", level, c.Available, c.Total)
	}
	s.printf("Revenue: $%.2f\n", status.TotalRevenue)
}

func (s *InstrumentedShell) handleRecommend(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.recommend_command")
	defer span.End()

	if !s.ready(span) {
		return
	}

	if len(parts) < 2 || len(parts) > 3 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: recommend <vehicle_type> [closest|level-N]")
		return
	}

	vehicleType, err := ParseVehicleType(parts[1])
	if err != nil {
		span.RecordError(err)
		s.printf("Invalid vehicle type: %s\n", parts[1])
		return
	}

	preference := PreferenceClosest
	if len(parts) == 3 {
		preference = parts[2]
	}

	spotID, ok := s.instrumentedParkingLot.Recommend(ctx, vehicleType, preference)
	if !ok {
		s.println("No suitable spot")
		return
	}
	s.printf("%s\n", spotID)
}

func (s *InstrumentedShell) handleForecast(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.forecast_command")
	defer span.End()

	if !s.ready(span) {
		return
	}

	hours := 1.0
	if len(parts) == 2 {
		h, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || h < 0 {
			span.AddEvent("invalid_hours")
			s.println("Invalid hours")
			return
		}
		hours = h
	}

	predicted := s.instrumentedParkingLot.Forecast(ctx, hours)
	s.printf("Predicted occupancy in %g hours: %.1f%%\n", hours, predicted)
}

func (s *InstrumentedShell) handleFind(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.find_by_plate")
	defer span.End()

	if !s.ready(span) {
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: find <plate>")
		return
	}

	vehicles := s.instrumentedParkingLot.ParkedByPlate(ctx, parts[1])
	if len(vehicles) == 0 {
		s.println("Not found")
		return
	}
	for _, v := range vehicles {
		s.printf("%s\t%s\t%s\n", v.ID, v.Type, v.SpotID)
	}
}

func (s *InstrumentedShell) handleBusyTimes(ctx context.Context) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.busy_times_command")
	defer span.End()

	for d := time.Monday; ; d = (d + 1) % 7 {
		s.printf("%-10s %v\n", d, BusyHours(d))
		if d == time.Sunday {
			break
		}
	}
}

func (s *InstrumentedShell) ready(span trace.Span) bool {
	if s.instrumentedParkingLot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return false
	}
	return true
}

func (s *InstrumentedShell) ticketArg(span trace.Span, parts []string, command string) (string, bool) {
	if !s.ready(span) {
		return "", false
	}
	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: %s <ticket_id>\n", command)
		return "", false
	}
	span.SetAttributes(attribute.String("ticket.id", parts[1]))
	return parts[1], true
}

func (s *InstrumentedShell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *InstrumentedShell) println(line string) {
	fmt.Fprintln(s.out, line)
}
