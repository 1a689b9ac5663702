// Package report folds detection results into serializable summary documents.
// No detection logic lives here; building a report is pure aggregation and may
// be repeated on the same inputs without side effects.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"trade-surveillance/internal/detector"
	"trade-surveillance/internal/events"
)

// Summary tallies a detection pass.
type Summary struct {
	TotalViolations int                            `json:"total_violations"`
	BySeverity      map[detector.Severity]int      `json:"by_severity"`
	ByKind          map[detector.ViolationKind]int `json:"by_kind"`
	TotalPatterns   int                            `json:"total_patterns"`
	ByPattern       map[detector.PatternKind]int   `json:"by_pattern"`
}

// ComplianceReport is the final structured document: summary counts plus every
// violation and pattern with its evidence inlined.
type ComplianceReport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Summary     Summary              `json:"summary"`
	Violations  []detector.Violation `json:"violations"`
	Patterns    []detector.Pattern   `json:"patterns"`
}

// BuildCompliance assembles the compliance report for a detection result.
func BuildCompliance(result detector.Result, generatedAt time.Time) ComplianceReport {
	summary := Summary{
		TotalViolations: len(result.Violations),
		TotalPatterns:   len(result.Patterns),
		BySeverity: map[detector.Severity]int{
			detector.SeverityLow:      0,
			detector.SeverityMedium:   0,
			detector.SeverityHigh:     0,
			detector.SeverityCritical: 0,
		},
		ByKind:    make(map[detector.ViolationKind]int),
		ByPattern: make(map[detector.PatternKind]int),
	}

	for _, v := range result.Violations {
		summary.BySeverity[v.Severity]++
		summary.ByKind[v.Kind]++
	}
	for _, p := range result.Patterns {
		summary.ByPattern[p.Kind]++
	}

	return ComplianceReport{
		GeneratedAt: generatedAt,
		Summary:     summary,
		Violations:  result.Violations,
		Patterns:    result.Patterns,
	}
}

// ParticipantActivity summarizes one participant's footprint in a session.
type ParticipantActivity struct {
	Participant      string          `json:"participant"`
	TradeCount       int             `json:"trade_count"`
	Notional         decimal.Decimal `json:"notional"`
	Symbols          []string        `json:"symbols"`
	MessagesSent     int             `json:"messages_sent"`
	MessagesReceived int             `json:"messages_received"`
	Violations       int             `json:"violations"`
	Patterns         int             `json:"patterns"`
}

// ActivityReport aggregates per-participant summaries alongside the
// descriptive patterns for human triage.
type ActivityReport struct {
	GeneratedAt  time.Time             `json:"generated_at"`
	Trades       int                   `json:"total_trades"`
	Messages     int                   `json:"total_messages"`
	Participants []ParticipantActivity `json:"participants"`
	Patterns     []detector.Pattern    `json:"patterns"`
}

// BuildActivity assembles per-participant activity from a snapshot and the
// detection result over it.
func BuildActivity(snap events.Snapshot, result detector.Result, generatedAt time.Time) ActivityReport {
	byParticipant := make(map[string]*ParticipantActivity)
	get := func(name string) *ParticipantActivity {
		if a, ok := byParticipant[name]; ok {
			return a
		}
		a := &ParticipantActivity{Participant: name, Notional: decimal.Zero}
		byParticipant[name] = a
		return a
	}

	symbols := make(map[string]map[string]struct{})
	for _, t := range snap.Trades {
		a := get(t.Participant)
		a.TradeCount++
		a.Notional = a.Notional.Add(t.Price.Mul(decimal.NewFromInt(t.Quantity)))
		if symbols[t.Participant] == nil {
			symbols[t.Participant] = make(map[string]struct{})
		}
		symbols[t.Participant][t.Symbol] = struct{}{}
	}
	for _, c := range snap.Communications {
		get(c.Sender).MessagesSent++
		if c.Recipient != "" {
			get(c.Recipient).MessagesReceived++
		}
	}
	for _, v := range result.Violations {
		for _, p := range v.Participants {
			get(p).Violations++
		}
	}
	for _, pat := range result.Patterns {
		for _, p := range pat.Participants {
			get(p).Patterns++
		}
	}

	participants := make([]ParticipantActivity, 0, len(byParticipant))
	for name, a := range byParticipant {
		for symbol := range symbols[name] {
			a.Symbols = append(a.Symbols, symbol)
		}
		sort.Strings(a.Symbols)
		participants = append(participants, *a)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Participant < participants[j].Participant
	})

	return ActivityReport{
		GeneratedAt:  generatedAt,
		Trades:       len(snap.Trades),
		Messages:     len(snap.Communications),
		Participants: participants,
		Patterns:     result.Patterns,
	}
}
