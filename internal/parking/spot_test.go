package parking

import (
	"testing"
	"time"
)

func TestNewSpot(t *testing.T) {
	spot := NewSpot("1-A-1", RegularSpot, 1, "A")

	if spot.ID != "1-A-1" {
		t.Errorf("Expected spot id 1-A-1, got %s", spot.ID)
	}

	if spot.IsOccupied() {
		t.Error("Expected new spot to be unoccupied")
	}

	if !spot.OccupiedSince.IsZero() {
		t.Error("Expected new spot to have no occupied-since time")
	}
}

func TestSpotOccupy(t *testing.T) {
	spot := NewSpot("1-A-1", RegularSpot, 1, "A")
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if !spot.Occupy("V-1", now) {
		t.Fatal("Expected first occupy to succeed")
	}

	if spot.Occupy("V-2", now.Add(time.Minute)) {
		t.Error("Expected second occupy to fail")
	}

	if spot.VehicleID != "V-1" {
		t.Errorf("Expected occupant V-1 to be kept, got %s", spot.VehicleID)
	}

	if !spot.OccupiedSince.Equal(now) {
		t.Errorf("Expected occupied since %v, got %v", now, spot.OccupiedSince)
	}
}

func TestSpotVacate(t *testing.T) {
	spot := NewSpot("1-A-1", RegularSpot, 1, "A")
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if _, ok := spot.Vacate(); ok {
		t.Error("Expected vacating a free spot to fail")
	}

	spot.Occupy("V-1", now)
	prev, ok := spot.Vacate()
	if !ok {
		t.Fatal("Expected vacate to succeed")
	}

	if prev.VehicleID != "V-1" || !prev.Since.Equal(now) {
		t.Errorf("Expected previous occupant V-1 since %v, got %s since %v", now, prev.VehicleID, prev.Since)
	}

	if spot.IsOccupied() {
		t.Error("Expected spot to be free after vacate")
	}

	if !spot.OccupiedSince.IsZero() {
		t.Error("Expected occupied-since to be cleared after vacate")
	}
}

func TestSpotLocation(t *testing.T) {
	spot := NewSpot("2-C-57", LargeSpot, 2, "C")

	expected := "Level 2, Section C, Spot 2-C-57"
	if spot.Location() != expected {
		t.Errorf("Expected %q, got %q", expected, spot.Location())
	}
}

func TestSpotOccupyRequiresVehicle(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Initialize(1, 40); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if r.Occupy("1-A-1", "") {
		t.Error("Expected occupy without a vehicle id to fail")
	}

	spot, _ := r.Spot("1-A-1")
	if spot.IsOccupied() {
		t.Error("Expected spot to stay free")
	}
}
