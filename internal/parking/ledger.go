package parking

import (
	"fmt"
	"time"
)

// Ledger owns vehicle and ticket records. Records are never removed, so ids
// derived from the record count stay unique.
type Ledger struct {
	vehicles map[string]*Vehicle
	order    []string
	tickets  map[string]*Ticket
	now      Clock
}

func NewLedger(now Clock) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		vehicles: make(map[string]*Vehicle),
		tickets:  make(map[string]*Ticket),
		now:      now,
	}
}

// NextVehicleID is the id the next RegisterVehicle call will return.
func (l *Ledger) NextVehicleID() string {
	return fmt.Sprintf("V-%d", len(l.vehicles)+1)
}

func (l *Ledger) RegisterVehicle(vehicleType VehicleType, plate string) string {
	id := l.NextVehicleID()
	l.vehicles[id] = NewVehicle(id, vehicleType, plate, l.now())
	l.order = append(l.order, id)
	return id
}

func (l *Ledger) IssueTicket(vehicleID string, entry time.Time) (string, error) {
	if _, ok := l.vehicles[vehicleID]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownVehicle, vehicleID)
	}
	id := fmt.Sprintf("T-%d", len(l.tickets)+1)
	l.tickets[id] = NewTicket(id, vehicleID, entry)
	return id, nil
}

func (l *Ledger) ParkAt(vehicleID, spotID string) error {
	v, ok := l.vehicles[vehicleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVehicle, vehicleID)
	}
	v.SpotID = spotID
	return nil
}

func (l *Ledger) Settle(ticketID string, amount float64) error {
	t, ok := l.tickets[ticketID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTicket, ticketID)
	}
	if !t.Pay(amount, l.now()) {
		return fmt.Errorf("%w: %s", ErrAlreadyPaid, ticketID)
	}
	return nil
}

// CompleteExit stamps the exit time on the ticket and its vehicle and clears
// the vehicle's spot reference.
func (l *Ledger) CompleteExit(ticketID string) error {
	t, ok := l.tickets[ticketID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTicket, ticketID)
	}
	v, ok := l.vehicles[t.VehicleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVehicle, t.VehicleID)
	}
	if !t.CompleteExit(l.now()) {
		return fmt.Errorf("%w: %s", ErrNotYetPaid, ticketID)
	}
	v.ExitTime = t.ExitTime
	v.SpotID = ""
	return nil
}

func (l *Ledger) Vehicle(id string) (Vehicle, bool) {
	v, ok := l.vehicles[id]
	if !ok {
		return Vehicle{}, false
	}
	return *v, true
}

func (l *Ledger) Ticket(id string) (Ticket, bool) {
	t, ok := l.tickets[id]
	if !ok {
		return Ticket{}, false
	}
	return *t, true
}

// Vehicles returns copies of all vehicles in registration order.
func (l *Ledger) Vehicles() []Vehicle {
	out := make([]Vehicle, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.vehicles[id])
	}
	return out
}

func (l *Ledger) VehicleCount() int {
	return len(l.vehicles)
}

func (l *Ledger) TicketCount() int {
	return len(l.tickets)
}
