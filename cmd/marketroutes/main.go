package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketroutes/internal/config"
	"marketroutes/internal/inventory"
	"marketroutes/internal/poller"
	"marketroutes/internal/routes"
	"marketroutes/internal/server"
	"marketroutes/internal/sheets"
	"marketroutes/internal/storage"
)

const lastRefreshKey = "last_refresh"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	// CLI flags
	refreshOnly := flag.Bool("refresh-only", false, "Fetch all tables once, then exit")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.SourcesFile, "sources", cfg.SourcesFile, "YAML file describing the spreadsheet tables")
	flag.IntVar(&cfg.WindowWeeks, "window-weeks", cfg.WindowWeeks, "Weeks of recurring routes to generate")
	flag.Parse()
	cfg.RefreshOnly = *refreshOnly

	// Context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		logger.Error("failed to load sources", "error", err)
		os.Exit(1)
	}

	// Open database
	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var source sheets.Source
	switch sources.Kind {
	case config.SourceWorkbook:
		source = sheets.NewWorkbook(sources.Workbook, logger)
	default:
		source = sheets.NewClient(cfg.SheetsBaseURL, sources.SpreadsheetID, cfg.SheetsAPIKey, logger)
	}

	store := sheets.NewStore()
	repo := routes.NewRepository(store, source, routes.Options{
		Tables:      sources.Tables,
		WindowWeeks: cfg.WindowWeeks,
		MaxAge:      cfg.RefreshInterval / 2,
		Location:    cfg.Location(),
		Snapshots:   db,
	}, logger)

	// Serve the last known tables while the first fetch runs
	if err := repo.Hydrate(ctx); err != nil {
		logger.Warn("failed to restore table snapshots", "error", err)
	}
	if last, _ := db.GetMetadata(ctx, lastRefreshKey); last != "" {
		logger.Info("previous refresh", "at", last)
	}
	recordRefresh := func() {
		if err := db.SetMetadata(ctx, lastRefreshKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
			logger.Warn("failed to record refresh time", "error", err)
		}
	}

	if cfg.RefreshOnly {
		logger.Info("refreshing tables")
		if err := repo.LoadRawTables(ctx, true); err != nil {
			logger.Error("table refresh failed", "error", err)
			os.Exit(1)
		}
		recordRefresh()
		logger.Info("table refresh complete", "routes", len(repo.AllRoutes()))
		return
	}

	inv := inventory.NewService(store, db, logger)
	srv := server.New(cfg, repo, inv, logger)

	// Background refresh; the API opens up after the first successful load
	p := poller.New(repo, cfg.RefreshInterval, logger, func() {
		srv.SetReady()
		recordRefresh()
	})
	go p.Start(ctx)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		os.Exit(0)
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
