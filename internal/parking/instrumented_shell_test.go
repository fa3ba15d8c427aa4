package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func runShell(t *testing.T, clock *fakeClock, script ...string) []string {
	t.Helper()

	telemetry := NewLocalTelemetryProvider("parking-engine-test", nil)
	defer telemetry.Shutdown(context.Background())

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	shell := NewInstrumentedShell(in, &out, telemetry, nil, WithClock(clock.Now))
	shell.Run(context.Background())

	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestShellLifecycle(t *testing.T) {
	lines := runShell(t, newFakeClock(),
		"create_parking_lot 1 40",
		"enter ABC-123 car",
		"quote T-1",
		"pay T-1",
		"exit T-1",
		"exit T-1",
	)

	expected := []string{
		"Created a parking lot with 40 spots across 1 levels",
		"Ticket T-1: Level 1, Section A, Spot 1-A-1",
		"Amount due: $0.00",
		"Paid $0.00 for ticket T-1",
		"Ticket T-1 has exited",
		"Error: spot already free: vehicle V-1 already left",
	}

	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %q", len(expected), len(lines), lines)
	}
	for i, line := range expected {
		if lines[i] != line {
			t.Errorf("Line %d: expected %q, got %q", i+1, line, lines[i])
		}
	}
}

func TestShellRequiresLot(t *testing.T) {
	lines := runShell(t, newFakeClock(), "enter ABC-123 car", "status", "pay T-1")

	for _, line := range lines {
		if line != "Parking lot not created" {
			t.Errorf("Expected lot-missing message, got %q", line)
		}
	}
}

func TestShellNoSpot(t *testing.T) {
	lines := runShell(t, newFakeClock(),
		"create_parking_lot 1 36",
		"enter BIG-001 truck",
		"enter BIKE-1 bicycle",
		"recommend truck",
	)

	expected := []string{
		"Created a parking lot with 36 spots across 1 levels",
		"Sorry, no spot available",
		"Invalid vehicle type: bicycle",
		"No suitable spot",
	}
	for i, line := range expected {
		if lines[i] != line {
			t.Errorf("Line %d: expected %q, got %q", i+1, line, lines[i])
		}
	}
}

func TestShellRecommendAndFind(t *testing.T) {
	lines := runShell(t, newFakeClock(),
		"create_parking_lot 2 40",
		"recommend car level-2",
		"recommend motorcycle",
		"enter DUP-1 motorcycle",
		"find DUP-1",
		"find NOPE",
	)

	expected := []string{
		"Created a parking lot with 80 spots across 2 levels",
		"2-A-41",
		"1-A-1",
		"Ticket T-1: Level 1, Section A, Spot 1-A-10",
		"V-1\tmotorcycle\t1-A-10",
		"Not found",
	}
	for i, line := range expected {
		if lines[i] != line {
			t.Errorf("Line %d: expected %q, got %q", i+1, line, lines[i])
		}
	}
}

func TestShellStatusAndForecast(t *testing.T) {
	lines := runShell(t, newFakeClock(),
		"create_parking_lot 1 40",
		"enter A car",
		"enter B car",
		"status",
		"forecast 2",
		"forecast x",
	)

	if lines[3] != "Occupancy: 2/40 spots (5.0%)" {
		t.Errorf("Unexpected status header %q", lines[3])
	}

	last := lines[len(lines)-1]
	if last != "Invalid hours" {
		t.Errorf("Expected invalid hours message, got %q", last)
	}

	// One earlier sample is not enough for a trend
	forecast := lines[len(lines)-2]
	if forecast != "Predicted occupancy in 2 hours: 5.0%" {
		t.Errorf("Unexpected forecast %q", forecast)
	}
}

func TestShellUnknownCommand(t *testing.T) {
	lines := runShell(t, newFakeClock(), "fly away")

	if lines[0] != "Unknown command: fly" {
		t.Errorf("Expected unknown command message, got %q", lines[0])
	}
}

func TestShellRecreateRetiresOldLot(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	telemetry := NewLocalTelemetryProvider("parking-engine-test", reader)
	defer telemetry.Shutdown(context.Background())

	script := "create_parking_lot 1 40\nenter ABC-123 car\ncreate_parking_lot 2 40\n"
	var out bytes.Buffer
	shell := NewInstrumentedShell(strings.NewReader(script), &out, telemetry, nil, WithClock(newFakeClock().Now))
	shell.Run(context.Background())

	if got := collectSum(t, reader, "parking_lot_total_spots"); got != 80 {
		t.Errorf("Expected 80 total spots after recreate, got %d", got)
	}
	if got := collectSum(t, reader, "parking_lot_occupancy"); got != 0 {
		t.Errorf("Expected occupancy 0 after recreate, got %d", got)
	}
}

func TestShellStopsOnCancelledContext(t *testing.T) {
	telemetry := NewLocalTelemetryProvider("parking-engine-test", nil)
	defer telemetry.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	shell := NewInstrumentedShell(strings.NewReader("create_parking_lot 1 40\n"), &out, telemetry, nil)
	shell.Run(ctx)

	if out.Len() != 0 {
		t.Errorf("Expected no output after cancellation, got %q", out.String())
	}
}

func TestBusyHours(t *testing.T) {
	if got := BusyHours(time.Tuesday); len(got) != 6 || got[0] != 8 {
		t.Errorf("Unexpected weekday busy hours %v", got)
	}
	if got := BusyHours(time.Sunday); len(got) != 6 || got[0] != 11 {
		t.Errorf("Unexpected weekend busy hours %v", got)
	}

	// Mutating the result must not affect later calls
	BusyHours(time.Monday)[0] = 99
	if BusyHours(time.Monday)[0] != 8 {
		t.Error("Expected busy hours table to be unaffected by callers")
	}

	monday := time.Date(2024, time.March, 4, 17, 30, 0, 0, time.UTC)
	if !IsBusyHour(monday) {
		t.Error("Expected 17:30 on a Monday to be busy")
	}
	if IsBusyHour(monday.Add(5 * time.Hour)) {
		t.Error("Expected 22:30 to be quiet")
	}
}
