package detector

import (
	"sort"
	"time"

	"trade-surveillance/internal/events"
	"trade-surveillance/internal/timewin"
)

type participantPair struct {
	a, b string
}

func pairOf(x, y string) participantPair {
	if x > y {
		x, y = y, x
	}
	return participantPair{x, y}
}

// detectFrequentMessaging flags pairs of participants exchanging more private
// messages than the configured threshold.
func detectFrequentMessaging(snap events.Snapshot, cfg Config) []Pattern {
	byPair := make(map[participantPair][]events.Communication)
	for _, msg := range snap.Communications {
		if msg.Visibility != events.VisibilityPrivate {
			continue
		}
		key := pairOf(msg.Sender, msg.Recipient)
		byPair[key] = append(byPair[key], msg)
	}

	pairs := make([]participantPair, 0, len(byPair))
	for pair := range byPair {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	patterns := make([]Pattern, 0)
	for _, pair := range pairs {
		msgs := byPair[pair]
		if len(msgs) <= cfg.PrivateMessageThreshold {
			continue
		}
		patterns = append(patterns, Pattern{
			Kind:           PatternFrequentPrivateMessaging,
			Participants:   []string{pair.a, pair.b},
			Communications: msgs,
			Timestamp:      msgs[0].Timestamp,
		})
	}

	return patterns
}

// detectCoordinatedTrading flags minute buckets with unusually many trades
// where a single symbol was touched by more than one participant. It needs no
// communication evidence and is intentionally noisier than the market
// manipulation detector; its output is for human triage.
func detectCoordinatedTrading(snap events.Snapshot, cfg Config) []Pattern {
	byBucket := make(map[time.Time][]events.Trade)
	for _, trade := range snap.Trades {
		bucket := timewin.BucketFloor(trade.Timestamp, cfg.BucketGranularity)
		byBucket[bucket] = append(byBucket[bucket], trade)
	}

	buckets := make([]time.Time, 0, len(byBucket))
	for bucket := range byBucket {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })

	patterns := make([]Pattern, 0)
	for _, bucket := range buckets {
		trades := byBucket[bucket]
		if len(trades) <= cfg.CoordinationMinTrades {
			continue
		}

		bySymbol := make(map[string][]events.Trade)
		for _, trade := range trades {
			bySymbol[trade.Symbol] = append(bySymbol[trade.Symbol], trade)
		}

		symbols := make([]string, 0, len(bySymbol))
		for symbol := range bySymbol {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)

		for _, symbol := range symbols {
			group := bySymbol[symbol]
			involved := participantSet(group)
			if len(involved) < 2 {
				continue
			}
			patterns = append(patterns, Pattern{
				Kind:         PatternCoordinatedTrading,
				Participants: sortedParticipants(involved),
				Symbol:       symbol,
				Timestamp:    bucket,
				Trades:       group,
			})
		}
	}

	return patterns
}
