package config

import (
	"fmt"
	"time"
)

// SimulationConfig drives the simulate command.
type SimulationConfig struct {
	Hours           int `json:"hours"`
	IntervalMinutes int `json:"interval_minutes"`
	// Seed makes runs repeatable. Zero picks a random seed.
	Seed uint64 `json:"seed"`
	// Pace is the real time to wait between steps. Zero runs flat out.
	Pace time.Duration `json:"pace"`
}

func (c *SimulationConfig) SetDefaults() {
	if c.Hours == 0 {
		c.Hours = 24
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 15
	}
}

func (c SimulationConfig) Validate() error {
	if c.Hours < 0 {
		return fmt.Errorf("hours must be positive, got %d", c.Hours)
	}
	if c.IntervalMinutes < 0 {
		return fmt.Errorf("interval_minutes must be positive, got %d", c.IntervalMinutes)
	}
	if c.Pace < 0 {
		return fmt.Errorf("pace must not be negative")
	}
	return nil
}

func (c SimulationConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c SimulationConfig) Duration() time.Duration {
	return time.Duration(c.Hours) * time.Hour
}
