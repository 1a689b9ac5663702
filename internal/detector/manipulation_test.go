package detector

import (
	"testing"
	"time"

	"trade-surveillance/internal/events"
)

func coordinatedTrades() []events.Trade {
	// Two participants trading ENERGY in the same minute bucket.
	return []events.Trade{
		trade("t-1", "broker_0", events.SideBuy, "ENERGY", t0.Add(10*time.Second)),
		trade("t-2", "broker_1", events.SideBuy, "ENERGY", t0.Add(40*time.Second)),
	}
}

func TestManipulationRequiresCommunication(t *testing.T) {
	cfg := DefaultConfig()

	// Concurrent trading alone is not flagged.
	got := detectMarketManipulation(snapshot(coordinatedTrades(), nil), cfg)
	if len(got) != 0 {
		t.Fatalf("no communications, expected 0 violations, got %d", len(got))
	}

	// One qualifying broadcast inside the look-back makes it critical.
	comms := []events.Communication{
		broadcast("m-1", "broker_0", "big move coming", t0.Add(-10*time.Minute)),
	}
	got = detectMarketManipulation(snapshot(coordinatedTrades(), comms), cfg)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 violation, got %d", len(got))
	}
	v := got[0]
	if v.Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %s", v.Severity)
	}
	if v.Symbol != "ENERGY" {
		t.Errorf("expected ENERGY, got %s", v.Symbol)
	}
	if len(v.Participants) != 2 {
		t.Errorf("expected both participants, got %v", v.Participants)
	}
	if !v.Timestamp.Equal(t0) {
		t.Errorf("violation should anchor at the bucket start, got %s", v.Timestamp)
	}
}

func TestManipulationCommunicationWindow(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name string
		ts   time.Time
		want int
	}{
		{"inside window", t0.Add(-29 * time.Minute), 1},
		{"at window start", t0.Add(-30 * time.Minute), 1},
		{"before window", t0.Add(-30*time.Minute - time.Second), 0},
		{"inside the bucket itself", t0.Add(10 * time.Second), 0},
	}

	for _, tc := range cases {
		comms := []events.Communication{broadcast("m-1", "broker_0", "go now", tc.ts)}
		got := detectMarketManipulation(snapshot(coordinatedTrades(), comms), cfg)
		if len(got) != tc.want {
			t.Errorf("%s: expected %d violations, got %d", tc.name, tc.want, len(got))
		}
	}
}

func TestManipulationCommunicationQualifiers(t *testing.T) {
	cfg := DefaultConfig()
	ts := t0.Add(-5 * time.Minute)

	cases := []struct {
		name string
		msg  events.Communication
		want int
	}{
		{"private between involved", private("m-1", "broker_0", "broker_1", "ready?", ts), 1},
		{"private to outsider", private("m-2", "broker_0", "broker_9", "ready?", ts), 0},
		{"private from outsider", private("m-3", "broker_9", "broker_0", "ready?", ts), 0},
		{"broadcast from involved", broadcast("m-4", "broker_1", "now", ts), 1},
		{"broadcast from outsider", broadcast("m-5", "broker_9", "now", ts), 0},
	}

	for _, tc := range cases {
		got := detectMarketManipulation(snapshot(coordinatedTrades(), []events.Communication{tc.msg}), cfg)
		if len(got) != tc.want {
			t.Errorf("%s: expected %d violations, got %d", tc.name, tc.want, len(got))
		}
	}
}

func TestManipulationNeedsTwoParticipants(t *testing.T) {
	cfg := DefaultConfig()

	// Same participant trading twice in the bucket is not coordination.
	trades := []events.Trade{
		trade("t-1", "broker_0", events.SideBuy, "ENERGY", t0.Add(5*time.Second)),
		trade("t-2", "broker_0", events.SideBuy, "ENERGY", t0.Add(30*time.Second)),
	}
	comms := []events.Communication{broadcast("m-1", "broker_0", "pump it", t0.Add(-time.Minute))}

	if got := detectMarketManipulation(snapshot(trades, comms), cfg); len(got) != 0 {
		t.Fatalf("single participant should not be flagged, got %d", len(got))
	}
}
