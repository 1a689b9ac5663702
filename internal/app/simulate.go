package app

import (
	"context"
	"os"

	"trade-surveillance/internal/events"
	"trade-surveillance/internal/ingest"
	"trade-surveillance/internal/sim"
)

// Simulate generates a synthetic trading session, optionally persists its
// event log, and runs the full analysis pipeline over it.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	runOpts := sim.Options{
		Agents:       opts.Agents,
		Steps:        opts.Steps,
		Seed:         opts.Seed,
		StepInterval: a.Config.Simulation.StepInterval,
	}
	if runOpts.Agents == 0 {
		runOpts.Agents = a.Config.Simulation.Agents
	}
	if runOpts.Steps == 0 {
		runOpts.Steps = a.Config.Simulation.Steps
	}
	if runOpts.Seed == 0 {
		runOpts.Seed = a.Config.Simulation.Seed
	}

	runner, err := sim.NewRunner(runOpts, a.Logger)
	if err != nil {
		return err
	}

	var logWriter *ingest.Writer
	if opts.LogPath != "" {
		if err := ensureDir(opts.LogPath); err != nil {
			return err
		}
		file, err := os.Create(opts.LogPath)
		if err != nil {
			return err
		}
		defer file.Close()
		logWriter = ingest.NewWriter(file)
	}

	store := events.NewStore()
	if err := runner.Run(store, logWriter); err != nil {
		return err
	}

	trades, communications := store.Counts()
	a.Logger.Info().
		Int("trades", trades).
		Int("communications", communications).
		Int64("seed", runOpts.Seed).
		Msg("session generated")
	if opts.LogPath != "" {
		a.Logger.Info().Str("path", opts.LogPath).Msg("event log written")
	}

	dbStore, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	svc := a.newService(dbStore)
	outcome, err := svc.Analyze(ctx, store.Snapshot(), "simulation")
	if err != nil {
		return err
	}

	return a.emitReports(outcome, opts.ReportPath, "", opts.Print)
}
