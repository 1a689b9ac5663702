package detector

import (
	"time"

	"github.com/shopspring/decimal"

	"trade-surveillance/internal/events"
)

// Shared helpers for the detector tests.

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func trade(id, participant string, side events.Side, symbol string, ts time.Time) events.Trade {
	return events.Trade{
		ID:          id,
		Participant: participant,
		Side:        side,
		Symbol:      symbol,
		Quantity:    100,
		Price:       decimal.NewFromFloat(99.95),
		Timestamp:   ts,
	}
}

func private(id, sender, recipient, content string, ts time.Time) events.Communication {
	return events.Communication{
		ID:         id,
		Sender:     sender,
		Recipient:  recipient,
		Visibility: events.VisibilityPrivate,
		Content:    content,
		Timestamp:  ts,
	}
}

func broadcast(id, sender, content string, ts time.Time) events.Communication {
	return events.Communication{
		ID:         id,
		Sender:     sender,
		Visibility: events.VisibilityBroadcast,
		Content:    content,
		Timestamp:  ts,
	}
}

func snapshot(trades []events.Trade, comms []events.Communication) events.Snapshot {
	return events.Snapshot{Trades: trades, Communications: comms}
}
