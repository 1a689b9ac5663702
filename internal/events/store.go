package events

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrTimestampInversion indicates a record older than the newest entry of
	// its log was offered for ingestion.
	ErrTimestampInversion = errors.New("events: timestamp precedes newest recorded event")
)

// Store accumulates trades and communications in append order. Records are
// validated on ingestion and never mutated or removed afterwards.
type Store struct {
	mu     sync.RWMutex
	trades []Trade
	comms  []Communication
}

// NewStore creates an empty event store.
func NewStore() *Store {
	return &Store{}
}

// RecordTrade validates and appends a trade. Bad records are rejected, never
// repaired.
func (s *Store) RecordTrade(t Trade) error {
	if err := validateTrade(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.trades); n > 0 && t.Timestamp.Before(s.trades[n-1].Timestamp) {
		return fmt.Errorf("%w: trade %s", ErrTimestampInversion, t.ID)
	}
	s.trades = append(s.trades, t)
	return nil
}

// RecordCommunication validates and appends a communication.
func (s *Store) RecordCommunication(c Communication) error {
	if err := validateCommunication(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.comms); n > 0 && c.Timestamp.Before(s.comms[n-1].Timestamp) {
		return fmt.Errorf("%w: communication %s", ErrTimestampInversion, c.ID)
	}
	s.comms = append(s.comms, c)
	return nil
}

// TradesFor returns a chronologically sorted copy of the participant's trades.
func (s *Store) TradesFor(participant string) []Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Trade, 0)
	for _, t := range s.trades {
		if t.Participant == participant {
			out = append(out, t)
		}
	}
	sortTrades(out)
	return out
}

// CommunicationsFor returns a chronologically sorted copy of the messages the
// participant sent or received.
func (s *Store) CommunicationsFor(participant string) []Communication {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Communication, 0)
	for _, c := range s.comms {
		if c.Involves(participant) {
			out = append(out, c)
		}
	}
	sortCommunications(out)
	return out
}

// AllTrades returns a chronologically sorted copy of the full trade log.
func (s *Store) AllTrades() []Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Trade, len(s.trades))
	copy(out, s.trades)
	sortTrades(out)
	return out
}

// AllCommunications returns a chronologically sorted copy of the full message log.
func (s *Store) AllCommunications() []Communication {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Communication, len(s.comms))
	copy(out, s.comms)
	sortCommunications(out)
	return out
}

// Snapshot is a point-in-time, read-only view of the store. Detectors operate
// exclusively on snapshots so no analysis observes a partially updated log.
type Snapshot struct {
	Trades         []Trade
	Communications []Communication
}

// Snapshot returns the current snapshot. Events with equal timestamps keep
// their insertion order, which keeps detection deterministic.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Trades:         s.AllTrades(),
		Communications: s.AllCommunications(),
	}
}

// Counts reports the number of recorded trades and communications.
func (s *Store) Counts() (trades, communications int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trades), len(s.comms)
}

func validateTrade(t Trade) error {
	switch {
	case t.ID == "":
		return errors.New("events: trade id is required")
	case t.Participant == "":
		return fmt.Errorf("events: trade %s: participant is required", t.ID)
	case t.Side != SideBuy && t.Side != SideSell:
		return fmt.Errorf("events: trade %s: invalid side %q", t.ID, t.Side)
	case t.Symbol == "":
		return fmt.Errorf("events: trade %s: symbol is required", t.ID)
	case t.Quantity <= 0:
		return fmt.Errorf("events: trade %s: quantity must be positive, got %d", t.ID, t.Quantity)
	case !t.Price.IsPositive():
		return fmt.Errorf("events: trade %s: price must be positive, got %s", t.ID, t.Price)
	case t.Timestamp.IsZero():
		return fmt.Errorf("events: trade %s: timestamp is required", t.ID)
	}
	return nil
}

func validateCommunication(c Communication) error {
	switch {
	case c.ID == "":
		return errors.New("events: communication id is required")
	case c.Sender == "":
		return fmt.Errorf("events: communication %s: sender is required", c.ID)
	case c.Timestamp.IsZero():
		return fmt.Errorf("events: communication %s: timestamp is required", c.ID)
	}

	switch c.Visibility {
	case VisibilityPrivate:
		if c.Recipient == "" {
			return fmt.Errorf("events: communication %s: private message requires a recipient", c.ID)
		}
	case VisibilityBroadcast:
		if c.Recipient != "" {
			return fmt.Errorf("events: communication %s: broadcast cannot name a recipient", c.ID)
		}
	case VisibilityPublic:
		// Public chatter may or may not address someone.
	default:
		return fmt.Errorf("events: communication %s: invalid visibility %q", c.ID, c.Visibility)
	}
	return nil
}

func sortTrades(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
}

func sortCommunications(comms []Communication) {
	sort.SliceStable(comms, func(i, j int) bool {
		return comms[i].Timestamp.Before(comms[j].Timestamp)
	})
}
