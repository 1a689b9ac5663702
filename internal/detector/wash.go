package detector

import (
	"sort"

	"trade-surveillance/internal/events"
)

type participantSymbol struct {
	participant string
	symbol      string
}

// detectWashTrading flags a buy immediately followed by a sell of the same
// symbol by the same participant within the wash window. Only adjacent pairs
// in the participant's per-symbol sequence are checked; a buy/sell cycle with
// an intervening trade is not flagged.
func detectWashTrading(snap events.Snapshot, cfg Config) []Violation {
	groups := make(map[participantSymbol][]events.Trade)
	for _, trade := range snap.Trades {
		key := participantSymbol{trade.Participant, trade.Symbol}
		groups[key] = append(groups[key], trade)
	}

	keys := make([]participantSymbol, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].participant != keys[j].participant {
			return keys[i].participant < keys[j].participant
		}
		return keys[i].symbol < keys[j].symbol
	})

	violations := make([]Violation, 0)
	for _, key := range keys {
		trades := groups[key]
		// Snapshot order is already chronological; the group preserves it.

		for i := 0; i+1 < len(trades); i++ {
			current, next := trades[i], trades[i+1]
			if current.Side != events.SideBuy || next.Side != events.SideSell {
				continue
			}
			if next.Timestamp.Sub(current.Timestamp) >= cfg.WashWindow {
				continue
			}
			violations = append(violations, Violation{
				Kind:         KindWashTrading,
				Severity:     SeverityMedium,
				Participants: []string{key.participant},
				Symbol:       key.symbol,
				Trades:       []events.Trade{current, next},
				Timestamp:    current.Timestamp,
			})
		}
	}

	return violations
}
