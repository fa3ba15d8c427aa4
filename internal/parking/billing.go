package parking

import (
	"fmt"
	"math"
	"time"
)

// Fee charges the hourly rate, capped by the daily maximum prorated over the
// elapsed hours. The cap is linear in time rather than per calendar day.
func Fee(rate Rate, elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	hours := elapsed.Hours()
	fee := hours * rate.Hourly
	capped := (hours / 24) * rate.DailyMax
	return math.Min(fee, capped)
}

// Billing prices tickets from the ledger and accumulates collected revenue.
type Billing struct {
	ledger  *Ledger
	rates   RateTable
	revenue float64
}

func NewBilling(ledger *Ledger, rates RateTable) *Billing {
	return &Billing{
		ledger: ledger,
		rates:  rates.clone(),
	}
}

func (b *Billing) Quote(ticketID string, now time.Time) (float64, error) {
	t, ok := b.ledger.Ticket(ticketID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTicket, ticketID)
	}
	v, ok := b.ledger.Vehicle(t.VehicleID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVehicle, t.VehicleID)
	}
	rate, ok := b.rates[v.Type]
	if !ok {
		return 0, fmt.Errorf("%w: no rate for %q", ErrUnknownVehicleType, v.Type)
	}
	return Fee(rate, now.Sub(t.EntryTime)), nil
}

func (b *Billing) Pay(ticketID string, now time.Time) (float64, error) {
	t, ok := b.ledger.Ticket(ticketID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTicket, ticketID)
	}
	if t.Paid {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyPaid, ticketID)
	}
	amount, err := b.Quote(ticketID, now)
	if err != nil {
		return 0, err
	}
	if err := b.ledger.Settle(ticketID, amount); err != nil {
		return 0, err
	}
	b.revenue += amount
	return amount, nil
}

func (b *Billing) Revenue() float64 {
	return b.revenue
}

func (b *Billing) Rate(vt VehicleType) (Rate, bool) {
	r, ok := b.rates[vt]
	return r, ok
}
