package parking

import (
	"errors"
	"fmt"
	"testing"
)

func TestSectionMixPreservesTotal(t *testing.T) {
	for n := 0; n <= 500; n++ {
		sum := 0
		for _, c := range sectionMix(n) {
			if c < 0 {
				t.Fatalf("Expected non-negative counts for %d, got %v", n, sectionMix(n))
			}
			sum += c
		}
		if sum != n {
			t.Errorf("Expected section of %d to keep %d spots, got %d", n, n, sum)
		}
	}
}

func TestInitializeOneLevelForty(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Initialize(1, 40); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if r.Len() != 40 {
		t.Errorf("Expected 40 spots, got %d", r.Len())
	}

	expected := map[SpotType]int{
		RegularSpot:     6,
		CompactSpot:     2,
		LargeSpot:       1,
		HandicappedSpot: 0,
		MotorcycleSpot:  1,
	}

	for _, section := range sections {
		got := map[SpotType]int{}
		for _, s := range r.Spots() {
			if s.Section == section {
				got[s.Type]++
			}
		}
		for st, want := range expected {
			if got[st] != want {
				t.Errorf("Expected %d %s spots in section %s, got %d", want, st, section, got[st])
			}
		}
	}
}

func TestInitializeAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Initialize(2, 40); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	spots := r.Spots()
	if len(spots) != 80 {
		t.Fatalf("Expected 80 spots, got %d", len(spots))
	}

	for i, s := range spots {
		expected := fmt.Sprintf("%d-%s-%d", s.Level, s.Section, i+1)
		if s.ID != expected {
			t.Errorf("Expected id %s at position %d, got %s", expected, i, s.ID)
		}
	}

	first := spots[0]
	if first.ID != "1-A-1" || first.Type != RegularSpot {
		t.Errorf("Expected first spot 1-A-1 regular, got %s %s", first.ID, first.Type)
	}

	if spots[40].ID != "2-A-41" {
		t.Errorf("Expected level 2 to start at 2-A-41, got %s", spots[40].ID)
	}
}

func TestInitializeRejectsInvalidLayout(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Initialize(0, 40); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Expected ErrInvalidLayout for zero levels, got %v", err)
	}

	if err := r.Initialize(1, -4); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Expected ErrInvalidLayout for negative spots, got %v", err)
	}
}

func TestInitializeDropsSectionRemainder(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Initialize(1, 42); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if r.Len() != 40 {
		t.Errorf("Expected 40 spots from 4 sections of 10, got %d", r.Len())
	}
}

func TestRegistryOccupyTwice(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(clock.Now)
	r.Initialize(1, 40)

	if !r.Occupy("1-A-1", "V-1") {
		t.Fatal("Expected first occupy to succeed")
	}

	if r.Occupy("1-A-1", "V-2") {
		t.Error("Expected second occupy to fail")
	}

	spot, _ := r.Spot("1-A-1")
	if spot.VehicleID != "V-1" {
		t.Errorf("Expected occupant V-1, got %s", spot.VehicleID)
	}

	if !spot.OccupiedSince.Equal(clock.Now()) {
		t.Errorf("Expected occupied since %v, got %v", clock.Now(), spot.OccupiedSince)
	}

	if r.Occupy("9-Z-999", "V-3") {
		t.Error("Expected occupying an unknown spot to fail")
	}
}

func TestRegistryVacate(t *testing.T) {
	r := NewRegistry(nil)
	r.Initialize(1, 40)

	if _, ok := r.Vacate("1-A-1"); ok {
		t.Error("Expected vacating a free spot to fail")
	}

	r.Occupy("1-A-1", "V-1")
	prev, ok := r.Vacate("1-A-1")
	if !ok || prev.VehicleID != "V-1" {
		t.Errorf("Expected to vacate V-1, got %q (ok=%v)", prev.VehicleID, ok)
	}

	if _, ok := r.Vacate("nope"); ok {
		t.Error("Expected vacating an unknown spot to fail")
	}
}

func TestFindCandidatesPrefersPrimary(t *testing.T) {
	r := NewRegistry(nil)
	r.Initialize(2, 40)

	candidates := r.FindCandidates(Car)

	// 24 regular per level, 4 large per level
	if len(candidates) != 56 {
		t.Fatalf("Expected 56 candidates, got %d", len(candidates))
	}

	seenSecondary := false
	for _, c := range candidates {
		switch c.Type {
		case RegularSpot:
			if seenSecondary {
				t.Fatalf("Expected all regular spots before large ones, found %s after a large spot", c.ID)
			}
		case LargeSpot:
			seenSecondary = true
		default:
			t.Fatalf("Expected only regular or large spots for a car, got %s", c.Type)
		}
	}

	for i := 1; i < len(candidates); i++ {
		a, b := candidates[i-1], candidates[i]
		if a.Type != b.Type {
			continue
		}
		if a.Level > b.Level || (a.Level == b.Level && a.Section > b.Section) {
			t.Errorf("Expected %s before %s to be closer to the entrance", a.ID, b.ID)
		}
	}
}

func TestFindCandidatesSkipsOccupied(t *testing.T) {
	r := NewRegistry(nil)
	r.Initialize(1, 40)
	r.Occupy("1-A-10", "V-1")

	candidates := r.FindCandidates(Motorcycle)
	if candidates[0].ID != "1-B-20" {
		t.Errorf("Expected next motorcycle spot 1-B-20, got %s", candidates[0].ID)
	}

	for _, c := range candidates {
		if c.ID == "1-A-10" {
			t.Error("Expected occupied spot to be excluded")
		}
	}
}
