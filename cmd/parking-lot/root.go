package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"parking-engine/internal/config"
	"parking-engine/internal/logging"
	"parking-engine/internal/parking"
	"parking-engine/internal/server"
	"parking-engine/internal/simulation"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "parking-lot",
	Short:        "Parking spot allocation and billing engine",
	SilenceUsage: true,
	RunE:         runCLI,
}

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Interactive shell on stdin",
	RunE:  runCLI,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the HTTP API",
	RunE:  runServer,
}

var bothCmd = &cobra.Command{
	Use:   "both",
	Short: "Serve the HTTP API and the shell on one lot",
	RunE:  runBoth,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a period of lot activity on a virtual clock",
	RunE:  runSimulate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")

	simulateCmd.Flags().Int("hours", 0, "simulated hours (overrides config)")
	simulateCmd.Flags().Int("interval", 0, "minutes per step (overrides config)")
	simulateCmd.Flags().Uint64("seed", 0, "random seed (overrides config)")

	rootCmd.AddCommand(cliCmd, serverCmd, bothCmd, simulateCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func runCLI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer app.close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.shell(cmd).Run(ctx)
	}()

	// The shell may be blocked reading stdin, so a signal does not wait for it
	select {
	case <-done:
	case <-ctx.Done():
		logging.Info(context.Background()).Msg("received shutdown signal")
	}
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer app.close()

	lot, err := app.configuredLot()
	if err != nil {
		return err
	}

	srv := app.server(lot)
	return serveUntilDone(ctx, srv, nil)
}

func runBoth(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer app.close()

	lot, err := app.configuredLot()
	if err != nil {
		return err
	}

	srv := app.server(lot)

	cliDone := make(chan struct{})
	go func() {
		defer close(cliDone)
		shell := app.shell(cmd)
		shell.UseParkingLot(lot)
		shell.Run(ctx)
	}()

	return serveUntilDone(ctx, srv, cliDone)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer app.close()

	simCfg := app.cfg.Simulation
	if v, _ := cmd.Flags().GetInt("hours"); v > 0 {
		simCfg.Hours = v
	}
	if v, _ := cmd.Flags().GetInt("interval"); v > 0 {
		simCfg.IntervalMinutes = v
	}
	if v, _ := cmd.Flags().GetUint64("seed"); v > 0 {
		simCfg.Seed = v
	}

	clock := simulation.NewVirtualClock(time.Now().Truncate(time.Hour))
	lot, err := app.newLot(app.cfg.Lot.Levels, app.cfg.Lot.SpotsPerLevel, parking.WithClock(clock.Now))
	if err != nil {
		return err
	}

	sim, err := simulation.New(lot, clock, simulation.Config{
		Duration: simCfg.Duration(),
		Interval: simCfg.Interval(),
		Seed:     simCfg.Seed,
		Pace:     simCfg.Pace,
	})
	if err != nil {
		return err
	}

	summary, err := sim.Run(ctx)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Steps: %d\n", summary.Steps)
	fmt.Fprintf(out, "Entries: %d (rejected %d)\n", summary.Entries, summary.Rejected)
	fmt.Fprintf(out, "Exits: %d\n", summary.Exits)
	fmt.Fprintf(out, "Occupancy: %d/%d spots (%.1f%%)\n", summary.OccupiedSpots, lot.Capacity(), summary.OccupancyRate)
	fmt.Fprintf(out, "Total revenue: $%.2f\n", summary.Revenue)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveUntilDone runs srv until ctx is cancelled or done is closed, then shuts
// it down gracefully.
func serveUntilDone(ctx context.Context, srv *server.Server, done <-chan struct{}) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-done:
		logging.Info(ctx).Msg("shell exited")
	case <-ctx.Done():
		logging.Info(context.Background()).Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
