package detector

import (
	"strings"

	"trade-surveillance/internal/events"
	"trade-surveillance/internal/timewin"
)

// detectInsiderTrading flags trades preceded by communications that involve
// the trading participant and mention the traded symbol. The substring match
// is a deliberately coarse proxy signal; false positives are expected.
func detectInsiderTrading(snap events.Snapshot, cfg Config) []Violation {
	violations := make([]Violation, 0)

	for _, trade := range snap.Trades {
		symbol := strings.ToLower(trade.Symbol)

		var evidence []events.Communication
		for _, msg := range snap.Communications {
			if !msg.Involves(trade.Participant) {
				continue
			}
			if !timewin.InLookback(trade.Timestamp, cfg.InsiderLookback, msg.Timestamp) {
				continue
			}
			if strings.Contains(strings.ToLower(msg.Content), symbol) {
				evidence = append(evidence, msg)
			}
		}

		if len(evidence) == 0 {
			continue
		}

		severity := SeverityMedium
		if len(evidence) > cfg.InsiderHighThreshold {
			severity = SeverityHigh
		}

		violations = append(violations, Violation{
			Kind:           KindInsiderTrading,
			Severity:       severity,
			Participants:   []string{trade.Participant},
			Symbol:         trade.Symbol,
			Trades:         []events.Trade{trade},
			Communications: evidence,
			Timestamp:      trade.Timestamp,
		})
	}

	return violations
}
