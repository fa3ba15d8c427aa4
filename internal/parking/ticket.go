package parking

import "time"

type Ticket struct {
	ID          string
	VehicleID   string
	EntryTime   time.Time
	Paid        bool
	AmountPaid  float64
	PaymentTime time.Time
	ExitTime    time.Time
}

func NewTicket(id, vehicleID string, entry time.Time) *Ticket {
	return &Ticket{
		ID:        id,
		VehicleID: vehicleID,
		EntryTime: entry,
	}
}

func (t *Ticket) Pay(amount float64, now time.Time) bool {
	if t.Paid {
		return false
	}
	t.Paid = true
	t.AmountPaid = amount
	t.PaymentTime = now
	return true
}

func (t *Ticket) CompleteExit(now time.Time) bool {
	if !t.Paid {
		return false
	}
	t.ExitTime = now
	return true
}

func (t *Ticket) HasExited() bool {
	return !t.ExitTime.IsZero()
}
