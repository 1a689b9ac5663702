package detector

import (
	"sort"
	"time"

	"trade-surveillance/internal/events"
	"trade-surveillance/internal/timewin"
)

type bucketSymbol struct {
	bucket time.Time
	symbol string
}

// detectMarketManipulation flags minute buckets where multiple participants
// traded the same symbol after communicating with each other. Concurrent
// trading alone is never flagged here; communication evidence is required.
func detectMarketManipulation(snap events.Snapshot, cfg Config) []Violation {
	groups := make(map[bucketSymbol][]events.Trade)
	for _, trade := range snap.Trades {
		key := bucketSymbol{
			bucket: timewin.BucketFloor(trade.Timestamp, cfg.BucketGranularity),
			symbol: trade.Symbol,
		}
		groups[key] = append(groups[key], trade)
	}

	keys := make([]bucketSymbol, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].bucket.Equal(keys[j].bucket) {
			return keys[i].bucket.Before(keys[j].bucket)
		}
		return keys[i].symbol < keys[j].symbol
	})

	violations := make([]Violation, 0)
	for _, key := range keys {
		trades := groups[key]
		if len(trades) < 2 {
			continue
		}

		involved := participantSet(trades)
		if len(involved) < 2 {
			continue
		}

		from := key.bucket.Add(-cfg.ManipulationLookback)
		var prior []events.Communication
		for _, msg := range snap.Communications {
			if !timewin.InRange(from, key.bucket, msg.Timestamp) {
				continue
			}
			if qualifiesAsCoordination(msg, involved) {
				prior = append(prior, msg)
			}
		}

		if len(prior) == 0 {
			continue
		}

		violations = append(violations, Violation{
			Kind:           KindMarketManipulation,
			Severity:       SeverityCritical,
			Participants:   sortedParticipants(involved),
			Symbol:         key.symbol,
			Trades:         trades,
			Communications: prior,
			Timestamp:      key.bucket,
		})
	}

	return violations
}

// qualifiesAsCoordination accepts private messages between two involved
// participants and broadcasts sent by an involved participant.
func qualifiesAsCoordination(msg events.Communication, involved map[string]struct{}) bool {
	_, senderIn := involved[msg.Sender]
	if !senderIn {
		return false
	}
	if msg.Visibility == events.VisibilityBroadcast {
		return true
	}
	if msg.Visibility == events.VisibilityPrivate {
		_, recipientIn := involved[msg.Recipient]
		return recipientIn
	}
	return false
}

func participantSet(trades []events.Trade) map[string]struct{} {
	set := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		set[t.Participant] = struct{}{}
	}
	return set
}

func sortedParticipants(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
