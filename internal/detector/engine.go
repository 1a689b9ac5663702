package detector

import (
	"sync"

	"github.com/rs/zerolog"

	"trade-surveillance/internal/events"
)

// Engine runs every analyzer against a snapshot and merges their output.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// NewEngine constructs a detection engine.
func NewEngine(cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "detector").Logger(),
	}
}

// Detect runs the four analyzers concurrently over the read-only snapshot.
// None of them share state, so the only synchronization is the final join.
// Output order is fixed (insider, wash, manipulation; messaging, coordinated)
// regardless of which analyzer finishes first, and each analyzer is itself
// deterministic, so repeated calls on the same snapshot yield equal results.
func (e *Engine) Detect(snap events.Snapshot) Result {
	var (
		insider     []Violation
		wash        []Violation
		manip       []Violation
		messaging   []Pattern
		coordinated []Pattern
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		insider = detectInsiderTrading(snap, e.cfg)
	}()
	go func() {
		defer wg.Done()
		wash = detectWashTrading(snap, e.cfg)
	}()
	go func() {
		defer wg.Done()
		manip = detectMarketManipulation(snap, e.cfg)
	}()
	go func() {
		defer wg.Done()
		messaging = detectFrequentMessaging(snap, e.cfg)
		coordinated = detectCoordinatedTrading(snap, e.cfg)
	}()
	wg.Wait()

	result := Result{
		Violations: make([]Violation, 0, len(insider)+len(wash)+len(manip)),
		Patterns:   make([]Pattern, 0, len(messaging)+len(coordinated)),
	}
	result.Violations = append(result.Violations, insider...)
	result.Violations = append(result.Violations, wash...)
	result.Violations = append(result.Violations, manip...)
	result.Patterns = append(result.Patterns, messaging...)
	result.Patterns = append(result.Patterns, coordinated...)

	e.logger.Info().
		Int("trades", len(snap.Trades)).
		Int("communications", len(snap.Communications)).
		Int("insider", len(insider)).
		Int("wash", len(wash)).
		Int("manipulation", len(manip)).
		Int("patterns", len(result.Patterns)).
		Msg("detection pass complete")

	return result
}
