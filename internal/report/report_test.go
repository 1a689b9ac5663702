package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trade-surveillance/internal/detector"
	"trade-surveillance/internal/events"
)

var now = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func sampleResult() detector.Result {
	return detector.Result{
		Violations: []detector.Violation{
			{Kind: detector.KindInsiderTrading, Severity: detector.SeverityHigh, Participants: []string{"broker_0"}, Symbol: "TECH", Timestamp: now},
			{Kind: detector.KindWashTrading, Severity: detector.SeverityMedium, Participants: []string{"broker_1"}, Symbol: "ENERGY", Timestamp: now},
			{Kind: detector.KindWashTrading, Severity: detector.SeverityMedium, Participants: []string{"broker_1"}, Symbol: "ENERGY", Timestamp: now.Add(time.Minute)},
			{Kind: detector.KindMarketManipulation, Severity: detector.SeverityCritical, Participants: []string{"broker_0", "broker_1"}, Symbol: "FINANCE", Timestamp: now},
		},
		Patterns: []detector.Pattern{
			{Kind: detector.PatternFrequentPrivateMessaging, Participants: []string{"broker_0", "broker_1"}},
			{Kind: detector.PatternCoordinatedTrading, Participants: []string{"broker_0", "broker_2"}, Symbol: "FINANCE"},
		},
	}
}

func TestBuildComplianceTallies(t *testing.T) {
	rep := BuildCompliance(sampleResult(), now)

	if rep.Summary.TotalViolations != 4 {
		t.Errorf("expected 4 violations, got %d", rep.Summary.TotalViolations)
	}
	if rep.Summary.BySeverity[detector.SeverityMedium] != 2 {
		t.Errorf("expected 2 medium, got %d", rep.Summary.BySeverity[detector.SeverityMedium])
	}
	if rep.Summary.BySeverity[detector.SeverityLow] != 0 {
		t.Errorf("low bucket should be present and zero, got %d", rep.Summary.BySeverity[detector.SeverityLow])
	}
	if rep.Summary.ByKind[detector.KindWashTrading] != 2 {
		t.Errorf("expected 2 wash violations, got %d", rep.Summary.ByKind[detector.KindWashTrading])
	}
	if rep.Summary.TotalPatterns != 2 {
		t.Errorf("expected 2 patterns, got %d", rep.Summary.TotalPatterns)
	}
	if rep.Summary.ByPattern[detector.PatternCoordinatedTrading] != 1 {
		t.Errorf("expected 1 coordinated pattern, got %d", rep.Summary.ByPattern[detector.PatternCoordinatedTrading])
	}
	if len(rep.Violations) != 4 || len(rep.Patterns) != 2 {
		t.Error("report must inline the full violation and pattern lists")
	}
}

func TestBuildComplianceIsIdempotent(t *testing.T) {
	result := sampleResult()

	first := BuildCompliance(result, now)
	second := BuildCompliance(result, now)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("building a report twice from the same result must be identical")
	}
}

func TestBuildActivity(t *testing.T) {
	snap := events.Snapshot{
		Trades: []events.Trade{
			{ID: "t-1", Participant: "broker_0", Side: events.SideBuy, Symbol: "TECH", Quantity: 10, Price: decimal.NewFromInt(100), Timestamp: now},
			{ID: "t-2", Participant: "broker_0", Side: events.SideSell, Symbol: "ENERGY", Quantity: 5, Price: decimal.NewFromInt(80), Timestamp: now},
			{ID: "t-3", Participant: "broker_1", Side: events.SideBuy, Symbol: "TECH", Quantity: 1, Price: decimal.NewFromInt(100), Timestamp: now},
		},
		Communications: []events.Communication{
			{ID: "m-1", Sender: "broker_0", Recipient: "broker_1", Visibility: events.VisibilityPrivate, Content: "hi", Timestamp: now},
			{ID: "m-2", Sender: "broker_2", Visibility: events.VisibilityBroadcast, Content: "news", Timestamp: now},
		},
	}

	rep := BuildActivity(snap, sampleResult(), now)

	if rep.Trades != 3 || rep.Messages != 2 {
		t.Fatalf("expected 3 trades and 2 messages, got %d/%d", rep.Trades, rep.Messages)
	}

	var broker0 *ParticipantActivity
	for i := range rep.Participants {
		if rep.Participants[i].Participant == "broker_0" {
			broker0 = &rep.Participants[i]
		}
	}
	if broker0 == nil {
		t.Fatal("broker_0 missing from activity report")
	}
	if broker0.TradeCount != 2 {
		t.Errorf("expected 2 trades, got %d", broker0.TradeCount)
	}
	if want := decimal.NewFromInt(1400); !broker0.Notional.Equal(want) {
		t.Errorf("expected notional %s, got %s", want, broker0.Notional)
	}
	if len(broker0.Symbols) != 2 || broker0.Symbols[0] != "ENERGY" {
		t.Errorf("expected sorted symbols [ENERGY TECH], got %v", broker0.Symbols)
	}
	if broker0.MessagesSent != 1 || broker0.MessagesReceived != 0 {
		t.Errorf("unexpected message counts: sent %d received %d", broker0.MessagesSent, broker0.MessagesReceived)
	}
	if broker0.Violations != 2 {
		t.Errorf("broker_0 appears in 2 violations, got %d", broker0.Violations)
	}

	// Participants must come out sorted for stable serialization.
	for i := 1; i < len(rep.Participants); i++ {
		if rep.Participants[i-1].Participant > rep.Participants[i].Participant {
			t.Fatal("participants not sorted")
		}
	}
}
