package config

import (
	"os"
	"time"

	"parking-engine/internal/parking"
)

// TelemetryConfig holds the OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled        bool          `json:"enabled"`
	ServiceName    string        `json:"service_name"`
	Endpoint       string        `json:"endpoint"`
	ExportInterval time.Duration `json:"export_interval"`
}

// SetDefaults falls back to the standard OTEL_ variables before the built-in
// values.
func (c *TelemetryConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = os.Getenv("OTEL_SERVICE_NAME")
	}
	if c.ServiceName == "" {
		c.ServiceName = "parking-engine"
	}
	if c.Endpoint == "" {
		c.Endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if c.Endpoint == "" {
		c.Endpoint = "http://localhost:4318"
	}
	if c.ExportInterval <= 0 {
		c.ExportInterval = 5 * time.Second
	}
}

func (c TelemetryConfig) Options() parking.TelemetryOptions {
	return parking.TelemetryOptions{
		ServiceName:    c.ServiceName,
		Endpoint:       c.Endpoint,
		ExportInterval: c.ExportInterval,
	}
}
