// Package poller keeps the raw tables fresh in the background.
package poller

import (
	"context"
	"log/slog"
	"time"
)

// Loader is satisfied by routes.Repository.
type Loader interface {
	LoadRawTables(ctx context.Context, force bool) error
}

// Poller periodically asks the loader to refresh stale tables.
type Poller struct {
	loader   Loader
	interval time.Duration
	logger   *slog.Logger
	onLoad   func()
}

// New creates a Poller. onLoad, if set, runs after every successful load.
func New(loader Loader, interval time.Duration, logger *slog.Logger, onLoad func()) *Poller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{loader: loader, interval: interval, logger: logger, onLoad: onLoad}
}

// Start loads immediately, then every interval. Blocks until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("table poller started", "interval", p.interval)
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			p.logger.Info("table poller stopped")
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.loader.LoadRawTables(ctx, false); err != nil {
		p.logger.Warn("refresh tables failed", "error", err)
		return
	}
	if p.onLoad != nil {
		p.onLoad()
	}
}
