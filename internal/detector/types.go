// Package detector analyzes a snapshot of trade and communication events for
// insider trading, wash trading, coordinated market manipulation, and
// collusive communication patterns.
package detector

import (
	"time"

	"trade-surveillance/internal/events"
)

// ViolationKind enumerates the regulatory violation classes.
type ViolationKind string

const (
	KindInsiderTrading     ViolationKind = "insider_trading"
	KindWashTrading        ViolationKind = "wash_trading"
	KindMarketManipulation ViolationKind = "market_manipulation"
)

// Severity ranks a violation for triage. It is not a probability.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Violation is a detected regulatory violation together with the exact
// records that triggered it.
type Violation struct {
	Kind           ViolationKind          `json:"kind"`
	Severity       Severity               `json:"severity"`
	Participants   []string               `json:"participants"`
	Symbol         string                 `json:"symbol,omitempty"`
	Trades         []events.Trade         `json:"trades,omitempty"`
	Communications []events.Communication `json:"communications,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

// PatternKind enumerates descriptive (non-regulatory) activity patterns.
type PatternKind string

const (
	PatternFrequentPrivateMessaging PatternKind = "frequent_private_messaging"
	PatternCoordinatedTrading       PatternKind = "coordinated_trading"
)

// Pattern is a descriptive cluster of activity flagged for human triage. It
// deliberately carries no severity.
type Pattern struct {
	Kind           PatternKind            `json:"kind"`
	Participants   []string               `json:"participants"`
	Symbol         string                 `json:"symbol,omitempty"`
	Timestamp      time.Time              `json:"timestamp,omitempty"`
	Trades         []events.Trade         `json:"trades,omitempty"`
	Communications []events.Communication `json:"communications,omitempty"`
}

// Result carries everything one detection pass produced. The caller owns it;
// repeated passes over overlapping snapshots are not deduplicated here.
type Result struct {
	Violations []Violation `json:"violations"`
	Patterns   []Pattern   `json:"patterns"`
}
