package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-surveillance/internal/events"
	"trade-surveillance/internal/ingest"
	"trade-surveillance/internal/scheduler"
)

// Watch re-analyzes a growing event log at fixed intervals until interrupted.
// Each pass re-reads the whole file, so a pass that loses to a concurrent
// writer mid-line simply fails and the next one catches up.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.InputPath == "" {
		return errors.New("--input is required")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	interval := opts.Interval
	if interval <= 0 {
		interval = a.Config.Watch.Interval
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	svc := a.newService(store)
	reader := ingest.NewReader(a.Logger)

	sched := scheduler.New(scheduler.Options{
		Interval:     interval,
		AlignToStart: a.Config.Watch.AlignToBucket,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	a.Logger.Info().
		Str("input", opts.InputPath).
		Dur("interval", interval).
		Msg("starting watch loop")

	err = sched.Run(ctx, func(ctx context.Context, bucket time.Time) error {
		eventStore := events.NewStore()
		if err := reader.ReadFile(opts.InputPath, eventStore); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				a.Logger.Warn().Str("input", opts.InputPath).Msg("event log not found yet")
				return nil
			}
			return err
		}

		outcome, err := svc.Analyze(ctx, eventStore.Snapshot(), opts.InputPath)
		if err != nil {
			return err
		}

		summary := outcome.Compliance.Summary
		a.Logger.Info().
			Time("bucket", bucket).
			Int("violations", summary.TotalViolations).
			Int("patterns", summary.TotalPatterns).
			Msg("watch pass complete")
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch loop stopped")
	return nil
}
