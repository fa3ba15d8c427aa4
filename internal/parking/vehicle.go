package parking

import "time"

type Vehicle struct {
	ID        string
	Type      VehicleType
	Plate     string
	EntryTime time.Time
	ExitTime  time.Time
	SpotID    string
}

func NewVehicle(id string, vehicleType VehicleType, plate string, entry time.Time) *Vehicle {
	return &Vehicle{
		ID:        id,
		Type:      vehicleType,
		Plate:     plate,
		EntryTime: entry,
	}
}

func (v *Vehicle) HasExited() bool {
	return !v.ExitTime.IsZero()
}
