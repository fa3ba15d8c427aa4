package config

import (
	"fmt"

	"parking-engine/internal/parking"
)

// RateConfig overrides the tariff of one vehicle type.
type RateConfig struct {
	Hourly   float64 `json:"hourly"`
	DailyMax float64 `json:"daily_max"`
}

// RateTable converts the configured overrides. Vehicle types left out keep
// their default tariff inside the engine, and a field left out of an override
// keeps its default value.
func (c Config) RateTable() parking.RateTable {
	defaults := parking.DefaultRates()
	table := make(parking.RateTable, len(c.Rates))
	for name, r := range c.Rates {
		vt, err := parking.ParseVehicleType(name)
		if err != nil {
			continue
		}
		rate := defaults[vt]
		if r.Hourly > 0 {
			rate.Hourly = r.Hourly
		}
		if r.DailyMax > 0 {
			rate.DailyMax = r.DailyMax
		}
		table[vt] = rate
	}
	return table
}

func validateRates(rates map[string]RateConfig) error {
	for name, r := range rates {
		if _, err := parking.ParseVehicleType(name); err != nil {
			return err
		}
		if r.Hourly < 0 || r.DailyMax < 0 {
			return fmt.Errorf("%s: rates must not be negative", name)
		}
	}
	return nil
}
