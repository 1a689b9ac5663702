package storage

import (
	"encoding/json"
	"time"
)

// ViolationRecord is a persisted violation row. Evidence holds the trade and
// communication lists exactly as the detector emitted them.
type ViolationRecord struct {
	ID           int64
	Kind         string
	Severity     string
	Participants []string
	Symbol       *string
	Evidence     json.RawMessage
	AnchoredAt   time.Time
	CreatedAt    time.Time
}

// ReportRecord captures a persisted compliance report for auditing.
type ReportRecord struct {
	ID              int64
	GeneratedAt     time.Time
	TotalViolations int
	TotalPatterns   int
	Document        json.RawMessage
	CreatedAt       time.Time
}
