// Package service wires the detection pipeline together: snapshot in,
// compliance report out, with persistence and alerting as scoped side steps
// after aggregation.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trade-surveillance/internal/alerting"
	"trade-surveillance/internal/detector"
	"trade-surveillance/internal/events"
	"trade-surveillance/internal/report"
	"trade-surveillance/internal/storage"
)

// Service orchestrates detection, reporting, persistence, and alerting.
type Service struct {
	engine     *detector.Engine
	violations storage.ViolationStore
	reports    storage.ReportStore
	notifier   alerting.Notifier
	logger     zerolog.Logger

	alertsOn bool
	now      func() time.Time
}

// Options carry the service's collaborators; any of the stores and the
// notifier may be nil.
type Options struct {
	Engine     *detector.Engine
	Violations storage.ViolationStore
	Reports    storage.ReportStore
	Notifier   alerting.Notifier
	AlertsOn   bool
	Now        func() time.Time
}

// New constructs the analysis service.
func New(opts Options, logger zerolog.Logger) *Service {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		engine:     opts.Engine,
		violations: opts.Violations,
		reports:    opts.Reports,
		notifier:   opts.Notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		alertsOn:   opts.AlertsOn,
		now:        now,
	}
}

// Outcome bundles everything one analysis pass produced.
type Outcome struct {
	Result     detector.Result
	Compliance report.ComplianceReport
	Activity   report.ActivityReport
}

// Analyze runs one detection pass over the snapshot and folds the results
// into reports. Persistence and alerting failures are logged, not fatal: the
// report itself is the primary artifact.
func (s *Service) Analyze(ctx context.Context, snap events.Snapshot, source string) (Outcome, error) {
	if s.engine == nil {
		return Outcome{}, fmt.Errorf("detection engine not configured")
	}

	generatedAt := s.now()
	result := s.engine.Detect(snap)

	outcome := Outcome{
		Result:     result,
		Compliance: report.BuildCompliance(result, generatedAt),
		Activity:   report.BuildActivity(snap, result, generatedAt),
	}

	s.persist(ctx, outcome)

	if s.alertsOn && s.notifier != nil {
		s.alert(ctx, outcome, source)
	}

	return outcome, nil
}

func (s *Service) persist(ctx context.Context, outcome Outcome) {
	if s.violations != nil && len(outcome.Result.Violations) > 0 {
		inserted, err := s.violations.InsertViolations(ctx, outcome.Result.Violations)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to persist violations")
		} else {
			s.logger.Debug().Int("violations", inserted).Msg("violations persisted")
		}
	}

	if s.reports != nil {
		document, err := json.Marshal(outcome.Compliance)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to marshal report for persistence")
			return
		}
		if _, err := s.reports.InsertReport(ctx,
			outcome.Compliance.GeneratedAt,
			outcome.Compliance.Summary.TotalViolations,
			outcome.Compliance.Summary.TotalPatterns,
			document,
		); err != nil {
			s.logger.Error().Err(err).Msg("failed to persist report")
		}
	}
}

func (s *Service) alert(ctx context.Context, outcome Outcome, source string) {
	var critical []detector.Violation
	for _, v := range outcome.Result.Violations {
		if v.Severity == detector.SeverityCritical {
			critical = append(critical, v)
		}
	}
	if len(critical) == 0 {
		return
	}

	note := alerting.Notification{
		GeneratedAt: outcome.Compliance.GeneratedAt,
		Summary:     outcome.Compliance.Summary,
		Critical:    critical,
		Source:      source,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Msg("failed to dispatch alert")
	}
}
