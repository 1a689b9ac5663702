package detector

import (
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trade-surveillance/internal/events"
)

func suspiciousSnapshot() events.Snapshot {
	trades := []events.Trade{
		// Insider: buy after a tip mentioning the symbol.
		trade("t-1", "broker_0", events.SideBuy, "TECH", t0),
		// Wash: rapid buy/sell round-trip.
		trade("t-2", "broker_1", events.SideBuy, "ENERGY", t0.Add(time.Minute)),
		trade("t-3", "broker_1", events.SideSell, "ENERGY", t0.Add(5*time.Minute)),
		// Coordination: three trades in one bucket, two on FINANCE.
		trade("t-4", "broker_0", events.SideBuy, "FINANCE", t0.Add(10*time.Minute)),
		trade("t-5", "broker_2", events.SideBuy, "FINANCE", t0.Add(10*time.Minute+20*time.Second)),
		trade("t-6", "broker_1", events.SideSell, "RETAIL", t0.Add(10*time.Minute+40*time.Second)),
	}
	comms := []events.Communication{
		private("m-1", "broker_2", "broker_0", "TECH will beat earnings", t0.Add(-20*time.Minute)),
		broadcast("m-2", "broker_0", "watch FINANCE this afternoon", t0.Add(-5*time.Minute)),
	}
	return events.Snapshot{Trades: trades, Communications: comms}
}

func TestDetectIsIdempotent(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zerolog.Nop())
	snap := suspiciousSnapshot()

	first := engine.Detect(snap)
	second := engine.Detect(snap)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated detection over the same snapshot must be identical")
	}
	if len(first.Violations) == 0 || len(first.Patterns) == 0 {
		t.Fatalf("fixture should trigger violations and patterns, got %d/%d",
			len(first.Violations), len(first.Patterns))
	}
}

func TestDetectOrderingIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zerolog.Nop())
	snap := suspiciousSnapshot()

	baseline := engine.Detect(snap)
	for run := 0; run < 20; run++ {
		got := engine.Detect(snap)
		for i, v := range got.Violations {
			if v.Kind != baseline.Violations[i].Kind || !v.Timestamp.Equal(baseline.Violations[i].Timestamp) {
				t.Fatalf("run %d: violation order diverged at %d", run, i)
			}
		}
		for i, p := range got.Patterns {
			if p.Kind != baseline.Patterns[i].Kind {
				t.Fatalf("run %d: pattern order diverged at %d", run, i)
			}
		}
	}
}

func TestDetectMonotonicEvidenceGrowth(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zerolog.Nop())
	snap := suspiciousSnapshot()

	small := engine.Detect(snap)

	// Grow the snapshot with one more wash pair and re-run.
	grown := events.Snapshot{
		Trades: append(append([]events.Trade{}, snap.Trades...),
			trade("t-7", "broker_3", events.SideBuy, "RETAIL", t0.Add(20*time.Minute)),
			trade("t-8", "broker_3", events.SideSell, "RETAIL", t0.Add(22*time.Minute)),
		),
		Communications: snap.Communications,
	}
	large := engine.Detect(grown)

	if len(large.Violations) < len(small.Violations) {
		t.Fatalf("violations shrank from %d to %d", len(small.Violations), len(large.Violations))
	}
	for _, want := range small.Violations {
		found := false
		for _, got := range large.Violations {
			if reflect.DeepEqual(want, got) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("violation %s/%s disappeared after growing the snapshot", want.Kind, want.Symbol)
		}
	}
}

func TestDetectEmptySnapshot(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zerolog.Nop())

	result := engine.Detect(events.Snapshot{})
	if len(result.Violations) != 0 || len(result.Patterns) != 0 {
		t.Fatalf("empty snapshot must produce empty results, got %d/%d",
			len(result.Violations), len(result.Patterns))
	}
	if result.Violations == nil || result.Patterns == nil {
		t.Fatal("result slices should be empty, not nil")
	}
}
