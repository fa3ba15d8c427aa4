package parking

import (
	"fmt"
	"time"
)

type Spot struct {
	ID            string
	Type          SpotType
	Level         int
	Section       string
	VehicleID     string
	OccupiedSince time.Time
}

func NewSpot(id string, spotType SpotType, level int, section string) *Spot {
	return &Spot{
		ID:      id,
		Type:    spotType,
		Level:   level,
		Section: section,
	}
}

func (s *Spot) IsOccupied() bool {
	return s.VehicleID != ""
}

// Occupy fails when the spot is taken or vehicleID is empty.
func (s *Spot) Occupy(vehicleID string, now time.Time) bool {
	if vehicleID == "" || s.IsOccupied() {
		return false
	}
	s.VehicleID = vehicleID
	s.OccupiedSince = now
	return true
}

// Vacate frees the spot and returns the previous occupant.
func (s *Spot) Vacate() (Occupancy, bool) {
	if !s.IsOccupied() {
		return Occupancy{}, false
	}
	prev := Occupancy{VehicleID: s.VehicleID, Since: s.OccupiedSince}
	s.VehicleID = ""
	s.OccupiedSince = time.Time{}
	return prev, true
}

// Location is the human readable position handed to drivers at the gate.
func (s *Spot) Location() string {
	return fmt.Sprintf("Level %d, Section %s, Spot %s", s.Level, s.Section, s.ID)
}

type Occupancy struct {
	VehicleID string
	Since     time.Time
}
