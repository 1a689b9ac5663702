package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trade-surveillance/internal/events"
	"trade-surveillance/internal/ingest"
)

// Options tune a synthetic session.
type Options struct {
	Agents       int
	Steps        int
	Seed         int64
	Start        time.Time
	StepInterval time.Duration
	Prices       map[string]float64
}

// Runner drives a scripted stochastic session. A fixed seed reproduces the
// exact same event stream.
type Runner struct {
	opts   Options
	rng    *rand.Rand
	market *Market
	clock  time.Time
	logger zerolog.Logger

	agents []string
}

// NewRunner constructs a session runner.
func NewRunner(opts Options, logger zerolog.Logger) (*Runner, error) {
	if opts.Agents < 2 {
		return nil, fmt.Errorf("sim: need at least 2 agents, got %d", opts.Agents)
	}
	if opts.Steps <= 0 {
		return nil, fmt.Errorf("sim: steps must be positive, got %d", opts.Steps)
	}
	if opts.StepInterval <= 0 {
		opts.StepInterval = time.Minute
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().UTC().Truncate(time.Minute)
	}
	if len(opts.Prices) == 0 {
		opts.Prices = map[string]float64{
			"TECH":    100.0,
			"ENERGY":  75.0,
			"FINANCE": 120.0,
			"RETAIL":  50.0,
		}
	}

	agents := make([]string, opts.Agents)
	for i := range agents {
		agents[i] = fmt.Sprintf("broker_%d", i)
	}

	return &Runner{
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		market: NewMarket(opts.Prices),
		clock:  opts.Start,
		logger: logger.With().Str("component", "sim").Logger(),
		agents: agents,
	}, nil
}

// Run generates the session into the store, mirroring every event to the log
// writer when one is provided.
func (r *Runner) Run(store *events.Store, log *ingest.Writer) error {
	for step := 0; step < r.opts.Steps; step++ {
		stepEnd := r.opts.Start.Add(time.Duration(step+1) * r.opts.StepInterval)
		r.market.Advance(r.rng)

		if err := r.runStep(store, log); err != nil {
			return fmt.Errorf("sim: step %d: %w", step, err)
		}

		if r.clock.Before(stepEnd) {
			r.clock = stepEnd
		}
	}

	trades, messages := store.Counts()
	r.logger.Info().
		Int("steps", r.opts.Steps).
		Int("agents", r.opts.Agents).
		Int("trades", trades).
		Int("messages", messages).
		Msg("session generated")
	return nil
}

func (r *Runner) runStep(store *events.Store, log *ingest.Writer) error {
	symbols := r.market.Symbols()

	// A share of steps opens with an insider tip: a private message naming a
	// symbol, followed by the recipient buying it.
	if r.rng.Float64() < 0.3 {
		tipper, tippee := r.pickPair()
		symbol := symbols[r.rng.Intn(len(symbols))]
		content := fmt.Sprintf("heard %s announces before close, move early", symbol)
		if err := r.emitMessage(store, log, tipper, tippee, events.VisibilityPrivate, content); err != nil {
			return err
		}
		if err := r.emitTrade(store, log, tippee, events.SideBuy, symbol); err != nil {
			return err
		}
		r.market.Shock(symbol, 0.05)
	}

	// Broadcast chatter.
	if r.rng.Float64() < 0.4 {
		sender := r.agents[r.rng.Intn(len(r.agents))]
		symbol := symbols[r.rng.Intn(len(symbols))]
		content := fmt.Sprintf("%s volume looks unusual today", symbol)
		if err := r.emitMessage(store, log, sender, "", events.VisibilityBroadcast, content); err != nil {
			return err
		}
	}

	// Routine trading: each agent may place a trade this step.
	for _, agent := range r.agents {
		if r.rng.Float64() >= 0.5 {
			continue
		}
		side := events.SideBuy
		if r.rng.Float64() < 0.4 {
			side = events.SideSell
		}
		symbol := symbols[r.rng.Intn(len(symbols))]
		if err := r.emitTrade(store, log, agent, side, symbol); err != nil {
			return err
		}
	}

	// Occasional rapid round-trip by a single agent.
	if r.rng.Float64() < 0.2 {
		agent := r.agents[r.rng.Intn(len(r.agents))]
		symbol := symbols[r.rng.Intn(len(symbols))]
		if err := r.emitTrade(store, log, agent, events.SideBuy, symbol); err != nil {
			return err
		}
		if err := r.emitTrade(store, log, agent, events.SideSell, symbol); err != nil {
			return err
		}
	}

	// Gossipy pairs keep their private channel busy.
	if r.rng.Float64() < 0.5 {
		a, b := r.pickPair()
		content := "same plan as yesterday?"
		if err := r.emitMessage(store, log, a, b, events.VisibilityPrivate, content); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) pickPair() (string, string) {
	i := r.rng.Intn(len(r.agents))
	j := r.rng.Intn(len(r.agents) - 1)
	if j >= i {
		j++
	}
	return r.agents[i], r.agents[j]
}

func (r *Runner) emitTrade(store *events.Store, log *ingest.Writer, participant string, side events.Side, symbol string) error {
	price, err := r.market.Price(symbol)
	if err != nil {
		return err
	}

	r.tick()
	trade := events.Trade{
		ID:          r.newID(),
		Participant: participant,
		Side:        side,
		Symbol:      symbol,
		Quantity:    int64(1+r.rng.Intn(100)) * 10,
		Price:       price,
		Timestamp:   r.clock,
	}
	if err := store.RecordTrade(trade); err != nil {
		return err
	}
	if log != nil {
		return log.WriteTrade(trade)
	}
	return nil
}

func (r *Runner) emitMessage(store *events.Store, log *ingest.Writer, sender, recipient string, visibility events.Visibility, content string) error {
	r.tick()
	msg := events.Communication{
		ID:         r.newID(),
		Sender:     sender,
		Recipient:  recipient,
		Visibility: visibility,
		Content:    content,
		Timestamp:  r.clock,
	}
	if err := store.RecordCommunication(msg); err != nil {
		return err
	}
	if log != nil {
		return log.WriteMessage(msg)
	}
	return nil
}

// tick advances the session clock by a few seconds so events within a step
// stay ordered without all landing on the same instant.
func (r *Runner) tick() {
	r.clock = r.clock.Add(time.Duration(1+r.rng.Intn(5)) * time.Second)
}

// newID derives a deterministic UUID from the seeded RNG so identical seeds
// produce identical event streams.
func (r *Runner) newID() string {
	var raw [16]byte
	r.rng.Read(raw[:])
	id, err := uuid.FromBytes(raw[:])
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
