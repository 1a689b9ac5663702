// Package events holds the immutable trade and communication records produced
// by a trading session, and the append-only store the detectors analyze.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Visibility classifies who can observe a communication.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityBroadcast Visibility = "broadcast"
	VisibilityPublic    Visibility = "public"
)

// Trade is a single executed trade. Immutable once recorded.
type Trade struct {
	ID          string          `json:"id"`
	Participant string          `json:"participant"`
	Side        Side            `json:"side"`
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Communication is a single message between participants. An empty Recipient
// means the message was not addressed to anyone in particular (broadcast or
// public chatter). Immutable once recorded.
type Communication struct {
	ID         string     `json:"id"`
	Sender     string     `json:"sender"`
	Recipient  string     `json:"recipient,omitempty"`
	Visibility Visibility `json:"visibility"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Involves reports whether the participant sent or received the message.
func (c Communication) Involves(participant string) bool {
	return c.Sender == participant || c.Recipient == participant
}
