// Package app aggregates configuration and shared dependencies for the CLI
// commands.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trade-surveillance/internal/alerting"
	"trade-surveillance/internal/config"
	"trade-surveillance/internal/detector"
	"trade-surveillance/internal/service"
	"trade-surveillance/internal/storage"
)

// App holds what every command needs.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// newService builds the analysis pipeline, with or without persistence.
func (a *App) newService(store *storage.Store) *service.Service {
	engine := detector.NewEngine(a.Config.Detection, a.Logger)

	var violations storage.ViolationStore
	var reports storage.ReportStore
	if store != nil {
		violations = store
		reports = store
	}

	return service.New(service.Options{
		Engine:     engine,
		Violations: violations,
		Reports:    reports,
		Notifier:   a.newNotifier(),
		AlertsOn:   a.Config.Alerting.Enabled,
	}, a.Logger)
}

// AnalyzeOptions configure a single analysis pass over an event log.
type AnalyzeOptions struct {
	InputPath    string
	ReportPath   string
	ActivityPath string
	Print        bool
}

// SimulateOptions configure synthetic session generation.
type SimulateOptions struct {
	Agents     int
	Steps      int
	Seed       int64
	LogPath    string
	ReportPath string
	Print      bool
}

// WatchOptions configure the periodic re-analysis loop.
type WatchOptions struct {
	InputPath string
	Interval  time.Duration
}

// ExportOptions hold parameters for exporting persisted violations.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}
