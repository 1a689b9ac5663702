// Package alerting pushes detection summaries to external channels so a
// compliance operator hears about critical findings without tailing logs.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trade-surveillance/internal/detector"
	"trade-surveillance/internal/report"
)

// Notification carries one detection pass worth of findings.
type Notification struct {
	GeneratedAt time.Time
	Summary     report.Summary
	Critical    []detector.Violation
	Source      string
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify sends the rendered summary via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().
		Time("generated_at", note.GeneratedAt).
		Int("critical", len(note.Critical)).
		Msg("alert dispatched")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Trade Surveillance Alert]\n")
	if note.Source != "" {
		builder.WriteString(fmt.Sprintf("Source: %s\n", note.Source))
	}
	builder.WriteString(fmt.Sprintf("Generated: %s UTC\n", note.GeneratedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Violations: %d (critical %d, high %d, medium %d, low %d)\n",
		note.Summary.TotalViolations,
		note.Summary.BySeverity[detector.SeverityCritical],
		note.Summary.BySeverity[detector.SeverityHigh],
		note.Summary.BySeverity[detector.SeverityMedium],
		note.Summary.BySeverity[detector.SeverityLow],
	))
	builder.WriteString(fmt.Sprintf("Patterns: %d\n", note.Summary.TotalPatterns))

	for i, v := range note.Critical {
		if i == 3 {
			builder.WriteString(fmt.Sprintf("... and %d more critical findings\n", len(note.Critical)-i))
			break
		}
		builder.WriteString(fmt.Sprintf("%d. %s %s participants=%s\n",
			i+1, v.Kind, v.Symbol, strings.Join(v.Participants, ",")))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
