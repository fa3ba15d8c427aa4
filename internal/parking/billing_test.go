package parking

import (
	"errors"
	"testing"
	"time"
)

func TestFee(t *testing.T) {
	rates := DefaultRates()

	cases := []struct {
		name     string
		vehicle  VehicleType
		elapsed  time.Duration
		expected float64
	}{
		{"car two hours", Car, 2 * time.Hour, 2.0},
		{"car thirty hours", Car, 30 * time.Hour, 30.0},
		{"truck one hour", Truck, time.Hour, 2.0},
		{"motorcycle half hour", Motorcycle, 30 * time.Minute, 0.25},
		{"no time", Car, 0, 0},
		{"clock went backwards", Car, -time.Hour, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Fee(rates[c.vehicle], c.elapsed)
			if !almostEqual(got, c.expected) {
				t.Errorf("Expected fee %.4f, got %.4f", c.expected, got)
			}
		})
	}
}

func TestFeeUsesHourlyWhenCheaper(t *testing.T) {
	rate := Rate{Hourly: 0.5, DailyMax: 24}
	got := Fee(rate, 4*time.Hour)
	if !almostEqual(got, 2.0) {
		t.Errorf("Expected hourly fee 2.0, got %.4f", got)
	}
}

func TestBillingPay(t *testing.T) {
	clock := newFakeClock()
	ledger := NewLedger(clock.Now)
	billing := NewBilling(ledger, nil)

	vid := ledger.RegisterVehicle(Car, "ABC-123")
	tid, _ := ledger.IssueTicket(vid, clock.Now())
	clock.Advance(2 * time.Hour)

	quote, err := billing.Quote(tid, clock.Now())
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	amount, err := billing.Pay(tid, clock.Now())
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if !almostEqual(amount, 2.0) || !almostEqual(amount, quote) {
		t.Errorf("Expected to pay the quoted 2.0, got %.4f (quote %.4f)", amount, quote)
	}

	clock.Advance(time.Hour)
	if _, err := billing.Pay(tid, clock.Now()); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("Expected ErrAlreadyPaid, got %v", err)
	}

	if !almostEqual(billing.Revenue(), 2.0) {
		t.Errorf("Expected revenue to stay at 2.0, got %.4f", billing.Revenue())
	}

	ticket, _ := ledger.Ticket(tid)
	if !ticket.Paid || !almostEqual(ticket.AmountPaid, 2.0) {
		t.Errorf("Expected ticket paid 2.0, got %+v", ticket)
	}
}

func TestBillingUnknownTicket(t *testing.T) {
	billing := NewBilling(NewLedger(nil), nil)

	if _, err := billing.Quote("T-1", time.Now()); !errors.Is(err, ErrUnknownTicket) {
		t.Errorf("Expected ErrUnknownTicket from quote, got %v", err)
	}
	if _, err := billing.Pay("T-1", time.Now()); !errors.Is(err, ErrUnknownTicket) {
		t.Errorf("Expected ErrUnknownTicket from pay, got %v", err)
	}
	if billing.Revenue() != 0 {
		t.Errorf("Expected no revenue, got %.4f", billing.Revenue())
	}
}

func TestBillingRateOverrides(t *testing.T) {
	overrides := RateTable{Car: {Hourly: 3, DailyMax: 48}}
	billing := NewBilling(NewLedger(nil), overrides)

	// Mutating the caller's table must not change billing
	overrides[Car] = Rate{Hourly: 100, DailyMax: 100}

	car, _ := billing.Rate(Car)
	if car.Hourly != 3 || car.DailyMax != 48 {
		t.Errorf("Expected car rate 3/48, got %+v", car)
	}

	truck, ok := billing.Rate(Truck)
	if !ok || truck.Hourly != 4 {
		t.Errorf("Expected default truck rate, got %+v (ok=%v)", truck, ok)
	}
}

func TestBillingPartialRateKeepsDefaults(t *testing.T) {
	clock := newFakeClock()
	pl, err := NewParkingLot(1, 40, WithClock(clock.Now), WithRates(RateTable{Car: {Hourly: 3}}))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	car, _ := pl.Rate(Car)
	if car.Hourly != 3 || car.DailyMax != 24 {
		t.Errorf("Expected car rate 3/24, got %+v", car)
	}

	receipt, err := pl.Entry("ABC-123", Car)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	clock.Advance(2 * time.Hour)

	fee, err := pl.Quote(receipt.TicketID)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	// min(3*2, 2/24*24)
	if !almostEqual(fee, 2) {
		t.Errorf("Expected fee 2.00, got %.4f", fee)
	}
}
