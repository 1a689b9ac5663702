package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trade-surveillance/internal/detector"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertViolationSQL = `INSERT INTO violations (
        kind,
        severity,
        participants,
        symbol,
        evidence,
        anchored_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    ) RETURNING id;`

	listRecentViolationsSQL = `SELECT
        id,
        kind,
        severity,
        participants,
        symbol,
        evidence,
        anchored_at,
        created_at
    FROM violations
    ORDER BY created_at DESC, id DESC
    LIMIT $1;`

	listViolationsBetweenSQL = `SELECT
        id,
        kind,
        severity,
        participants,
        symbol,
        evidence,
        anchored_at,
        created_at
    FROM violations
    WHERE anchored_at >= $1
      AND anchored_at < $2
    ORDER BY anchored_at, id;`

	countViolationsSQL = `SELECT COUNT(*) FROM violations;`

	deleteViolationsBeforeSQL = `DELETE FROM violations WHERE anchored_at < $1;`

	insertReportSQL = `INSERT INTO reports (
        generated_at,
        total_violations,
        total_patterns,
        document
    ) VALUES (
        $1,$2,$3,$4
    ) RETURNING id;`
)

// ViolationStore defines operations for the persisted violation ledger.
type ViolationStore interface {
	InsertViolations(ctx context.Context, violations []detector.Violation) (int, error)
	ListRecentViolations(ctx context.Context, limit int) ([]ViolationRecord, error)
	ListViolationsBetween(ctx context.Context, from, to time.Time) ([]ViolationRecord, error)
	CountViolations(ctx context.Context) (int64, error)
	DeleteViolationsBefore(ctx context.Context, olderThan time.Time) error
}

// ReportStore defines operations for report auditing.
type ReportStore interface {
	InsertReport(ctx context.Context, generatedAt time.Time, totalViolations, totalPatterns int, document json.RawMessage) (int64, error)
}

// Store aggregates access to violations and reports.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

type violationEvidence struct {
	Trades         any `json:"trades,omitempty"`
	Communications any `json:"communications,omitempty"`
}

// InsertViolations appends a batch of violations to the ledger and returns
// how many rows were written.
func (s *Store) InsertViolations(ctx context.Context, violations []detector.Violation) (int, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, v := range violations {
		evidence, marshalErr := json.Marshal(violationEvidence{
			Trades:         v.Trades,
			Communications: v.Communications,
		})
		if marshalErr != nil {
			return inserted, fmt.Errorf("marshal evidence: %w", marshalErr)
		}

		var symbol any
		if v.Symbol != "" {
			symbol = v.Symbol
		}

		var id int64
		scanErr := pool.QueryRow(ctx, insertViolationSQL,
			string(v.Kind),
			string(v.Severity),
			v.Participants,
			symbol,
			evidence,
			v.Timestamp,
		).Scan(&id)
		if scanErr != nil {
			return inserted, fmt.Errorf("insert violation: %w", scanErr)
		}
		inserted++
	}
	return inserted, nil
}

// ListRecentViolations lists the most recently persisted violations.
func (s *Store) ListRecentViolations(ctx context.Context, limit int) ([]ViolationRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentViolationsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent violations: %w", queryErr)
	}
	defer rows.Close()

	return scanViolations(rows, limit)
}

// ListViolationsBetween lists violations anchored within a time window.
func (s *Store) ListViolationsBetween(ctx context.Context, from, to time.Time) ([]ViolationRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listViolationsBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list violations between: %w", queryErr)
	}
	defer rows.Close()

	return scanViolations(rows, 0)
}

// CountViolations counts persisted violations.
func (s *Store) CountViolations(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countViolationsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count violations: %w", scanErr)
	}
	return count, nil
}

// DeleteViolationsBefore deletes historical violations.
func (s *Store) DeleteViolationsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteViolationsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete violations before: %w", execErr)
	}
	return nil
}

// InsertReport persists a serialized compliance report.
func (s *Store) InsertReport(ctx context.Context, generatedAt time.Time, totalViolations, totalPatterns int, document json.RawMessage) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var id int64
	scanErr := pool.QueryRow(ctx, insertReportSQL,
		generatedAt,
		totalViolations,
		totalPatterns,
		[]byte(document),
	).Scan(&id)
	if scanErr != nil {
		return 0, fmt.Errorf("insert report: %w", scanErr)
	}
	return id, nil
}

func scanViolations(rows pgx.Rows, sizeHint int) ([]ViolationRecord, error) {
	records := make([]ViolationRecord, 0, sizeHint)
	for rows.Next() {
		var (
			rec    ViolationRecord
			symbol sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Kind,
			&rec.Severity,
			&rec.Participants,
			&symbol,
			&rec.Evidence,
			&rec.AnchoredAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if symbol.Valid {
			value := symbol.String
			rec.Symbol = &value
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

var (
	_ ViolationStore = (*Store)(nil)
	_ ReportStore    = (*Store)(nil)
)
