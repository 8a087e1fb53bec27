package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bsumme/hedgefinder/internal/engine"
	"github.com/bsumme/hedgefinder/internal/server"
	"github.com/bsumme/hedgefinder/internal/server/handler"
)

// ScanMode runs a single scan over the configured sports and markets, prints
// the ranked plays as JSON to stdout, and exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	plays, err := deps.Watcher.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	arbs := 0
	for i := range plays {
		if plays[i].IsArbitrage {
			arbs++
		}
	}
	a.logger.InfoContext(ctx, "scan complete",
		slog.Int("plays", len(plays)),
		slog.Int("arbitrage", arbs),
	)

	out := map[string]any{
		"plays": plays,
	}
	if parlay := engine.BuildParlay(plays); parlay != nil {
		out["parlay"] = parlay
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("scan mode: encode output: %w", err)
	}
	return nil
}

// WatchMode runs the polling watcher until the context is cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.Watcher.Run(ctx)
	})
	return g.Wait()
}

// ServerMode starts only the HTTP API server. Each request scans on demand.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// FullMode starts the watcher and the HTTP server together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Watcher.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	} else {
		a.logger.InfoContext(ctx, "server.enabled is false, skipping HTTP server")
	}

	return g.Wait()
}

// startHTTPServer registers the API handlers and runs the server on the
// errgroup, shutting it down gracefully when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	handlers := server.Handlers{
		Health: handler.NewHealthHandler(a.logger),
		Plays:  handler.NewPlaysHandler(deps.Watcher, a.logger),
		Books: handler.NewBooksHandler(
			a.cfg.Books.Target,
			a.cfg.Books.Compare,
			a.cfg.Books.Vig,
			a.cfg.Books.VigBuffer,
			a.logger,
		),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	})
}
