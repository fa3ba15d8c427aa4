package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"parking-engine/internal/config"
	"parking-engine/internal/logging"
	"parking-engine/internal/metrics"
	"parking-engine/internal/parking"
	"parking-engine/internal/server"
)

// app holds what every subcommand needs: configuration, telemetry and the
// Prometheus sink.
type app struct {
	cfg       *config.Config
	telemetry *parking.TelemetryProvider
	recorder  parking.Recorder
}

func newApp(ctx context.Context, path string) (*app, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	logging.Init(cfg.Logging.Level, cfg.Logging.Console)

	var telemetry *parking.TelemetryProvider
	if cfg.Telemetry.Enabled {
		telemetry, err = parking.NewTelemetryProvider(ctx, cfg.Telemetry.Options())
		if err != nil {
			return nil, err
		}
		logging.Info(ctx).Str("endpoint", cfg.Telemetry.Endpoint).Msg("telemetry export enabled")
	} else {
		telemetry = parking.NewLocalTelemetryProvider(cfg.Telemetry.ServiceName, nil)
	}

	sink, err := metrics.NewPromSink(nil)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		telemetry: telemetry,
		recorder:  sink,
	}, nil
}

func (a *app) lotOptions(extra ...parking.Option) []parking.Option {
	return append([]parking.Option{parking.WithRates(a.cfg.RateTable())}, extra...)
}

func (a *app) newLot(levels, spotsPerLevel int, extra ...parking.Option) (*parking.InstrumentedParkingLot, error) {
	lot, err := parking.NewParkingLot(levels, spotsPerLevel, a.lotOptions(extra...)...)
	if err != nil {
		return nil, err
	}
	return parking.NewInstrumentedParkingLot(lot, a.telemetry, a.recorder)
}

func (a *app) configuredLot() (*parking.InstrumentedParkingLot, error) {
	lot, err := a.newLot(a.cfg.Lot.Levels, a.cfg.Lot.SpotsPerLevel)
	if err != nil {
		return nil, err
	}
	logging.Logger().Info().
		Int("levels", lot.Levels()).
		Int("spots_per_level", lot.SpotsPerLevel()).
		Int("capacity", lot.Capacity()).
		Msg("parking lot ready")
	return lot, nil
}

func (a *app) shell(cmd *cobra.Command) *parking.InstrumentedShell {
	return parking.NewInstrumentedShell(cmd.InOrStdin(), cmd.OutOrStdout(), a.telemetry, a.recorder, a.lotOptions()...)
}

func (a *app) server(lot *parking.InstrumentedParkingLot) *server.Server {
	handler := server.NewHandler(a.cfg.Telemetry.ServiceName, a.telemetry, a.recorder, a.lotOptions()...)
	handler.UseParkingLot(lot)
	return server.NewServer(a.cfg.Server.Port, handler)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.telemetry.Shutdown(ctx); err != nil {
		logging.Error(ctx).Err(err).Msg("error shutting down telemetry")
	}
}
