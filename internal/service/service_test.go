package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"trade-surveillance/internal/alerting"
	"trade-surveillance/internal/detector"
	"trade-surveillance/internal/events"
	"trade-surveillance/internal/storage"
)

var fixedNow = time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC)

type memoryStores struct {
	violations []detector.Violation
	reports    int
}

func (m *memoryStores) InsertViolations(_ context.Context, vs []detector.Violation) (int, error) {
	m.violations = append(m.violations, vs...)
	return len(vs), nil
}

func (m *memoryStores) ListRecentViolations(context.Context, int) ([]storage.ViolationRecord, error) {
	return nil, nil
}

func (m *memoryStores) ListViolationsBetween(context.Context, time.Time, time.Time) ([]storage.ViolationRecord, error) {
	return nil, nil
}

func (m *memoryStores) CountViolations(context.Context) (int64, error) {
	return int64(len(m.violations)), nil
}

func (m *memoryStores) DeleteViolationsBefore(context.Context, time.Time) error { return nil }

func (m *memoryStores) InsertReport(_ context.Context, _ time.Time, _, _ int, _ json.RawMessage) (int64, error) {
	m.reports++
	return int64(m.reports), nil
}

type captureNotifier struct {
	notes []alerting.Notification
}

func (c *captureNotifier) Notify(_ context.Context, note alerting.Notification) error {
	c.notes = append(c.notes, note)
	return nil
}

func manipulationSnapshot(t *testing.T) events.Snapshot {
	t.Helper()
	store := events.NewStore()
	t0 := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	msg := events.Communication{
		ID: "m-1", Sender: "broker_0", Visibility: events.VisibilityBroadcast,
		Content: "everyone in on ENERGY", Timestamp: t0.Add(-10 * time.Minute),
	}
	if err := store.RecordCommunication(msg); err != nil {
		t.Fatalf("record: %v", err)
	}
	for i, participant := range []string{"broker_0", "broker_1"} {
		trade := events.Trade{
			ID: "t-" + participant, Participant: participant, Side: events.SideBuy,
			Symbol: "ENERGY", Quantity: 10, Price: decimal.NewFromInt(75),
			Timestamp: t0.Add(time.Duration(i*10) * time.Second),
		}
		if err := store.RecordTrade(trade); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	return store.Snapshot()
}

func TestAnalyzePersistsAndAlerts(t *testing.T) {
	stores := &memoryStores{}
	notifier := &captureNotifier{}

	svc := New(Options{
		Engine:     detector.NewEngine(detector.DefaultConfig(), zerolog.Nop()),
		Violations: stores,
		Reports:    stores,
		Notifier:   notifier,
		AlertsOn:   true,
		Now:        func() time.Time { return fixedNow },
	}, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), manipulationSnapshot(t), "test")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if got := outcome.Compliance.Summary.BySeverity[detector.SeverityCritical]; got == 0 {
		t.Fatal("fixture should produce a critical violation")
	}
	if !outcome.Compliance.GeneratedAt.Equal(fixedNow) {
		t.Errorf("report should use the injected clock, got %s", outcome.Compliance.GeneratedAt)
	}
	if len(stores.violations) != len(outcome.Result.Violations) {
		t.Errorf("expected %d persisted violations, got %d", len(outcome.Result.Violations), len(stores.violations))
	}
	if stores.reports != 1 {
		t.Errorf("expected 1 persisted report, got %d", stores.reports)
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notifier.notes))
	}
	if len(notifier.notes[0].Critical) == 0 || notifier.notes[0].Source != "test" {
		t.Errorf("alert should carry critical findings and the source, got %+v", notifier.notes[0])
	}
}

func TestAnalyzeWithoutCriticalsStaysQuiet(t *testing.T) {
	notifier := &captureNotifier{}
	svc := New(Options{
		Engine:   detector.NewEngine(detector.DefaultConfig(), zerolog.Nop()),
		Notifier: notifier,
		AlertsOn: true,
	}, zerolog.Nop())

	if _, err := svc.Analyze(context.Background(), events.Snapshot{}, "empty"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(notifier.notes) != 0 {
		t.Fatalf("no criticals, expected no alerts, got %d", len(notifier.notes))
	}
}
