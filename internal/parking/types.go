package parking

import (
	"fmt"
	"strings"
)

type VehicleType string

const (
	Car         VehicleType = "car"
	Motorcycle  VehicleType = "motorcycle"
	Truck       VehicleType = "truck"
	Handicapped VehicleType = "handicapped"
)

// VehicleTypes lists every vehicle type in declaration order.
var VehicleTypes = []VehicleType{Car, Motorcycle, Truck, Handicapped}

func ParseVehicleType(s string) (VehicleType, error) {
	vt := VehicleType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := suitability[vt]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVehicleType, s)
	}
	return vt, nil
}

type SpotType string

const (
	RegularSpot     SpotType = "regular"
	CompactSpot     SpotType = "compact"
	LargeSpot       SpotType = "large"
	HandicappedSpot SpotType = "handicapped"
	MotorcycleSpot  SpotType = "motorcycle"
)

// SpotTypes lists every spot type in the order sections are filled.
var SpotTypes = []SpotType{RegularSpot, CompactSpot, LargeSpot, HandicappedSpot, MotorcycleSpot}

type fit struct {
	primary   SpotType
	secondary []SpotType
}

var suitability = map[VehicleType]fit{
	Car:         {primary: RegularSpot, secondary: []SpotType{LargeSpot}},
	Motorcycle:  {primary: MotorcycleSpot, secondary: []SpotType{RegularSpot, LargeSpot}},
	Truck:       {primary: LargeSpot},
	Handicapped: {primary: HandicappedSpot, secondary: []SpotType{LargeSpot}},
}

// Match reports how well a spot type serves a vehicle type.
type Match int

const (
	NoMatch Match = iota
	SecondaryMatch
	PrimaryMatch
)

func MatchOf(vt VehicleType, st SpotType) Match {
	f, ok := suitability[vt]
	if !ok {
		return NoMatch
	}
	if f.primary == st {
		return PrimaryMatch
	}
	for _, s := range f.secondary {
		if s == st {
			return SecondaryMatch
		}
	}
	return NoMatch
}

func Suitable(vt VehicleType, st SpotType) bool {
	return MatchOf(vt, st) != NoMatch
}
