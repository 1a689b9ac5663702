// Package ingest reads and writes the JSONL event log a trading session
// leaves behind: one envelope per line wrapping either a trade or a message.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"trade-surveillance/internal/events"
)

// Event type discriminators used in the log envelope.
const (
	EventTrade   = "trade"
	EventMessage = "message"
)

// Envelope wraps a single logged event.
type Envelope struct {
	Timestamp time.Time       `json:"timestamp"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// Reader streams a JSONL event log into an event store.
type Reader struct {
	logger zerolog.Logger
}

// NewReader constructs a log reader.
func NewReader(logger zerolog.Logger) *Reader {
	return &Reader{logger: logger.With().Str("component", "ingest").Logger()}
}

// ReadFile ingests every event in the named log file into the store.
func (r *Reader) ReadFile(path string, store *events.Store) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer file.Close()

	return r.Read(file, store)
}

// Read ingests a JSONL stream into the store. Malformed lines and records the
// store rejects abort the ingest; the log is an audit trail, not a best-effort
// feed.
func (r *Reader) Read(src io.Reader, store *events.Store) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	trades, messages := 0, 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("line %d: decode envelope: %w", line, err)
		}

		switch env.EventType {
		case EventTrade:
			var trade events.Trade
			if err := json.Unmarshal(env.Data, &trade); err != nil {
				return fmt.Errorf("line %d: decode trade: %w", line, err)
			}
			if err := store.RecordTrade(trade); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			trades++
		case EventMessage:
			var msg events.Communication
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				return fmt.Errorf("line %d: decode message: %w", line, err)
			}
			if err := store.RecordCommunication(msg); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			messages++
		default:
			return fmt.Errorf("line %d: unknown event type %q", line, env.EventType)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event log: %w", err)
	}

	r.logger.Info().Int("trades", trades).Int("messages", messages).Msg("event log ingested")
	return nil
}

// Writer appends events to a JSONL log.
type Writer struct {
	dst io.Writer
	enc *json.Encoder
}

// NewWriter constructs a log writer over dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst, enc: json.NewEncoder(dst)}
}

// WriteTrade appends a trade envelope.
func (w *Writer) WriteTrade(t events.Trade) error {
	return w.write(EventTrade, t.Timestamp, t)
}

// WriteMessage appends a message envelope.
func (w *Writer) WriteMessage(c events.Communication) error {
	return w.write(EventMessage, c.Timestamp, c)
}

func (w *Writer) write(eventType string, ts time.Time, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	env := Envelope{Timestamp: ts, EventType: eventType, Data: payload}
	if err := w.enc.Encode(env); err != nil {
		return fmt.Errorf("append %s to log: %w", eventType, err)
	}
	return nil
}
