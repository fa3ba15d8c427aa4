package parking

import (
	"fmt"
	"time"
)

type Option func(*ParkingLot)

// WithClock sets the time source. A nil clock keeps time.Now.
func WithClock(now Clock) Option {
	return func(pl *ParkingLot) {
		if now != nil {
			pl.now = now
		}
	}
}

func WithRates(rates RateTable) Option {
	return func(pl *ParkingLot) {
		pl.rates = rates
	}
}

// ParkingLot wires the registry, ledger, billing and tracker together and
// exposes the operations gate and kiosk callers use. It is not safe for
// concurrent use; see InstrumentedParkingLot.
type ParkingLot struct {
	levels        int
	spotsPerLevel int
	now           Clock
	rates         RateTable

	registry *Registry
	ledger   *Ledger
	billing  *Billing
	tracker  *Tracker
}

type EntryReceipt struct {
	Location  string
	TicketID  string
	VehicleID string
	SpotID    string
	SpotType  SpotType
	EntryTime time.Time
}

func NewParkingLot(levels, spotsPerLevel int, opts ...Option) (*ParkingLot, error) {
	pl := &ParkingLot{
		levels:        levels,
		spotsPerLevel: spotsPerLevel,
		now:           time.Now,
		rates:         DefaultRates(),
	}
	for _, opt := range opts {
		opt(pl)
	}

	pl.registry = NewRegistry(pl.now)
	if err := pl.registry.Initialize(levels, spotsPerLevel); err != nil {
		return nil, err
	}
	pl.ledger = NewLedger(pl.now)
	pl.billing = NewBilling(pl.ledger, pl.rates)
	pl.tracker = NewTracker(pl.now)

	return pl, nil
}

// Entry parks a vehicle in the best free spot and issues its ticket. Nothing
// is recorded when no spot fits.
func (pl *ParkingLot) Entry(plate string, vehicleType VehicleType) (EntryReceipt, error) {
	spot, err := Assign(pl.registry, vehicleType)
	if err != nil {
		return EntryReceipt{}, err
	}

	vehicleID := pl.ledger.NextVehicleID()
	if !pl.registry.Occupy(spot.ID, vehicleID) {
		return EntryReceipt{}, fmt.Errorf("%w: %s", ErrAlreadyOccupied, spot.ID)
	}
	pl.ledger.RegisterVehicle(vehicleType, plate)
	if err := pl.ledger.ParkAt(vehicleID, spot.ID); err != nil {
		return EntryReceipt{}, err
	}

	vehicle, _ := pl.ledger.Vehicle(vehicleID)
	ticketID, err := pl.ledger.IssueTicket(vehicleID, vehicle.EntryTime)
	if err != nil {
		return EntryReceipt{}, err
	}

	return EntryReceipt{
		Location:  spot.Location(),
		TicketID:  ticketID,
		VehicleID: vehicleID,
		SpotID:    spot.ID,
		SpotType:  spot.Type,
		EntryTime: vehicle.EntryTime,
	}, nil
}

func (pl *ParkingLot) Quote(ticketID string) (float64, error) {
	return pl.billing.Quote(ticketID, pl.now())
}

func (pl *ParkingLot) Pay(ticketID string) (float64, error) {
	return pl.billing.Pay(ticketID, pl.now())
}

// Exit releases the spot of a paid ticket.
func (pl *ParkingLot) Exit(ticketID string) error {
	ticket, ok := pl.ledger.Ticket(ticketID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTicket, ticketID)
	}
	if !ticket.Paid {
		return fmt.Errorf("%w: %s", ErrNotYetPaid, ticketID)
	}

	vehicle, ok := pl.ledger.Vehicle(ticket.VehicleID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVehicle, ticket.VehicleID)
	}
	if vehicle.SpotID == "" {
		return fmt.Errorf("%w: vehicle %s already left", ErrAlreadyFree, vehicle.ID)
	}
	if _, ok := pl.registry.Spot(vehicle.SpotID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSpot, vehicle.SpotID)
	}
	if _, ok := pl.registry.Vacate(vehicle.SpotID); !ok {
		return fmt.Errorf("%w: %s", ErrAlreadyFree, vehicle.SpotID)
	}

	return pl.ledger.CompleteExit(ticketID)
}

// Status reports current occupancy and records a forecasting sample.
func (pl *ParkingLot) Status() Status {
	return pl.tracker.Snapshot(pl.registry, pl.billing.Revenue())
}

func (pl *ParkingLot) Recommend(vehicleType VehicleType, preference string) (string, bool) {
	return Recommend(pl.registry, vehicleType, preference)
}

func (pl *ParkingLot) Forecast(hoursAhead float64) float64 {
	return pl.tracker.Forecast(pl.registry, pl.billing.Revenue(), hoursAhead)
}

// ParkedByPlate returns vehicles currently in the lot with the given plate.
// Plates are not unique, so there may be several.
func (pl *ParkingLot) ParkedByPlate(plate string) []Vehicle {
	var out []Vehicle
	for _, v := range pl.ledger.Vehicles() {
		if v.Plate == plate && v.SpotID != "" {
			out = append(out, v)
		}
	}
	return out
}

func (pl *ParkingLot) Ticket(id string) (Ticket, bool) {
	return pl.ledger.Ticket(id)
}

func (pl *ParkingLot) Vehicle(id string) (Vehicle, bool) {
	return pl.ledger.Vehicle(id)
}

func (pl *ParkingLot) Spot(id string) (Spot, bool) {
	return pl.registry.Spot(id)
}

func (pl *ParkingLot) Spots() []Spot {
	return pl.registry.Spots()
}

func (pl *ParkingLot) Rate(vehicleType VehicleType) (Rate, bool) {
	return pl.billing.Rate(vehicleType)
}

func (pl *ParkingLot) Revenue() float64 {
	return pl.billing.Revenue()
}

func (pl *ParkingLot) Capacity() int {
	return pl.registry.Len()
}

// Occupied counts taken spots without recording a forecasting sample.
func (pl *ParkingLot) Occupied() int {
	return pl.registry.Occupied()
}

func (pl *ParkingLot) Levels() int {
	return pl.levels
}

func (pl *ParkingLot) SpotsPerLevel() int {
	return pl.spotsPerLevel
}
