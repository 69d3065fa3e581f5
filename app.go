package main

import (
	"context"
	"fmt"
	"log/slog"

	"riotapi-schema/collector"
	"riotapi-schema/config"
	"riotapi-schema/db"
	"riotapi-schema/emitter"
	"riotapi-schema/fetcher"
	"riotapi-schema/logfields"
	"riotapi-schema/notify"
	"riotapi-schema/pipeline"
	"riotapi-schema/reconcile"
	"riotapi-schema/snapshot"
	"riotapi-schema/workspace"
)

// app holds the wired pipeline and the resources it must release
type app struct {
	driver  *pipeline.Driver
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, root string) (*app, error) {
	a := &app{}

	base, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := base.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}
	f := fetcher.NewRetryingFetcher(base, cfg.RetryPolicy())

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			if cfg.Snapshot.Source == config.SourcePostgres {
				a.Close()
				return nil, err
			}
			slog.Warn("Build history disabled", logfields.Error(err))
			database = nil
		} else {
			a.closers = append(a.closers, database.Close)
		}
	}

	store, err := newSnapshotStore(cfg, f, database)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.driver = pipeline.NewDriver(
		workspace.NewManager(root, cfg.Output, cfg.ViewerDir),
		collector.NewEndpointCollector(f, cfg.BaseURL),
		collector.NewRegionCollector(f, cfg.BaseURL),
		reconcile.NewReconciler(store),
		emitter.NewEmitter(),
	)
	if database != nil {
		a.driver.WithRecorder(database)
	}
	a.driver.WithNotifier(newNotifier(ctx, cfg))
	return a, nil
}

// Close releases the browser and database, logging failures
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("Failed to release resource", logfields.Error(err))
		}
	}
}

func newFetcher(cfg *config.Config) (fetcher.Fetcher, error) {
	switch cfg.Fetcher.Backend {
	case config.BackendRod:
		return fetcher.NewRodFetcher(cfg.Fetcher.BrowserDataDir)
	case config.BackendColly:
		return fetcher.NewCollyFetcher(cfg.Fetcher.UserAgent, cfg.Fetcher.Parallelism, cfg.Fetcher.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown fetcher backend %q", cfg.Fetcher.Backend)
	}
}

// newSnapshotStore returns nil for the "none" source
func newSnapshotStore(cfg *config.Config, f fetcher.Fetcher, database *db.DB) (reconcile.SnapshotStore, error) {
	switch cfg.Snapshot.Source {
	case config.SourceGit:
		return snapshot.NewGitStore(cfg.Snapshot.RepoPath, cfg.Snapshot.Ref, cfg.Snapshot.File), nil
	case config.SourceHTTP:
		return snapshot.NewHTTPStore(f, cfg.Snapshot.URL), nil
	case config.SourcePostgres:
		if database == nil {
			return nil, fmt.Errorf("postgres snapshot source needs a database connection")
		}
		return database, nil
	case config.SourceNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown snapshot source %q", cfg.Snapshot.Source)
	}
}

// newNotifier returns notify.Nop when no channel is configured
func newNotifier(ctx context.Context, cfg *config.Config) pipeline.Notifier {
	var notifiers notify.Multi

	if cfg.TelegramEnabled() {
		n, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("Telegram notifications disabled", logfields.Error(err))
		} else {
			notifiers = append(notifiers, n)
		}
	}

	if cfg.SheetsEnabled() {
		n, err := notify.NewSheetsNotifier(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsPath)
		if err != nil {
			slog.Warn("Sheets run log disabled", logfields.Error(err))
		} else {
			notifiers = append(notifiers, n)
		}
	}

	if len(notifiers) == 0 {
		return notify.Nop{}
	}
	return notifiers
}
