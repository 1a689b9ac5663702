package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"trade-surveillance/internal/events"
	"trade-surveillance/internal/ingest"
	"trade-surveillance/internal/service"
)

// Analyze runs one detection pass over an event log and writes the reports.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	if opts.InputPath == "" {
		return errors.New("--input is required")
	}

	store := events.NewStore()
	reader := ingest.NewReader(a.Logger)
	if err := reader.ReadFile(opts.InputPath, store); err != nil {
		return err
	}

	trades, communications := store.Counts()
	a.Logger.Info().
		Str("input", opts.InputPath).
		Int("trades", trades).
		Int("communications", communications).
		Msg("event log loaded")

	dbStore, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	svc := a.newService(dbStore)
	outcome, err := svc.Analyze(ctx, store.Snapshot(), opts.InputPath)
	if err != nil {
		return err
	}

	return a.emitReports(outcome, opts.ReportPath, opts.ActivityPath, opts.Print)
}

// emitReports writes the compliance report (and optionally the activity
// report) to files and/or stdout. Reports go to stdout, logs to stderr, so
// piped output stays clean JSON.
func (a *App) emitReports(outcome service.Outcome, reportPath, activityPath string, print bool) error {
	if reportPath != "" {
		if err := writeJSON(reportPath, outcome.Compliance); err != nil {
			return fmt.Errorf("write compliance report: %w", err)
		}
		a.Logger.Info().Str("path", reportPath).Msg("compliance report written")
	}
	if activityPath != "" {
		if err := writeJSON(activityPath, outcome.Activity); err != nil {
			return fmt.Errorf("write activity report: %w", err)
		}
		a.Logger.Info().Str("path", activityPath).Msg("activity report written")
	}

	if print || (reportPath == "" && activityPath == "") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(outcome.Compliance); err != nil {
			return err
		}
	}

	summary := outcome.Compliance.Summary
	a.Logger.Info().
		Int("violations", summary.TotalViolations).
		Int("patterns", summary.TotalPatterns).
		Msg("analysis complete")
	return nil
}

func writeJSON(path string, v any) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
