package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes parking activity as Prometheus collectors.
type PromSink struct {
	entries   *prometheus.CounterVec
	payments  *prometheus.CounterVec
	revenue   prometheus.Counter
	exits     *prometheus.CounterVec
	occupied  prometheus.Gauge
	total     prometheus.Gauge
	occupancy prometheus.Gauge
}

// NewPromSink registers the parking collectors on reg, or on the default
// registerer when reg is nil. Collectors already registered are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &PromSink{
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_entries_total",
			Help: "Vehicle entry attempts by vehicle type and outcome",
		}, []string{"vehicle_type", "status"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_payments_total",
			Help: "Settled tickets by vehicle type",
		}, []string{"vehicle_type"}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parking_revenue_total",
			Help: "Collected parking fees",
		}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_exits_total",
			Help: "Vehicle exit attempts by outcome",
		}, []string{"status"}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parking_spots_occupied",
			Help: "Spots currently occupied",
		}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parking_spots_total",
			Help: "Spots in the lot",
		}),
		occupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parking_occupancy_percent",
			Help: "Occupied spots as a percentage of all spots",
		}),
	}

	var err error
	if s.entries, err = register(reg, s.entries); err != nil {
		return nil, err
	}
	if s.payments, err = register(reg, s.payments); err != nil {
		return nil, err
	}
	if s.revenue, err = register(reg, s.revenue); err != nil {
		return nil, err
	}
	if s.exits, err = register(reg, s.exits); err != nil {
		return nil, err
	}
	if s.occupied, err = register(reg, s.occupied); err != nil {
		return nil, err
	}
	if s.total, err = register(reg, s.total); err != nil {
		return nil, err
	}
	if s.occupancy, err = register(reg, s.occupancy); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

func (s *PromSink) RecordEntry(vehicleType, status string) {
	s.entries.WithLabelValues(vehicleType, status).Inc()
}

func (s *PromSink) RecordPayment(vehicleType string, amount float64) {
	s.payments.WithLabelValues(vehicleType).Inc()
	if amount > 0 {
		s.revenue.Add(amount)
	}
}

func (s *PromSink) RecordExit(status string) {
	s.exits.WithLabelValues(status).Inc()
}

func (s *PromSink) RecordOccupancy(occupied, total int, rate float64) {
	s.occupied.Set(float64(occupied))
	s.total.Set(float64(total))
	s.occupancy.Set(rate)
}
