package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlsql/nlsql/internal/config"
	"github.com/nlsql/nlsql/internal/observability"
	"github.com/nlsql/nlsql/internal/schema"
	"github.com/nlsql/nlsql/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", slog.Any("error", err))
		return 1
	}
	cfg, err := config.LoadFromEnv("nlsql-schema")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, logger := observability.StartRun(ctx, observability.NewLogger(cfg, os.Stderr))
	defer func() {
		if err := observability.WriteTextfile(cfg.Observability.MetricsTextfile); err != nil {
			logger.Error("failed to write metrics textfile", slog.Any("error", err))
		}
	}()

	extractor := &schema.Extractor{
		Open:   store.Opener(store.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN, PingTimeout: cfg.Store.PingTimeout}),
		Title:  cfg.Schema.Title,
		Logger: logger,
	}
	if _, err := extractor.WriteFile(ctx, cfg.Schema.Path); err != nil {
		logger.Error("failed to write schema document", slog.Any("error", err))
		return 1
	}
	fmt.Printf("Schema has been saved to %s\n", cfg.Schema.Path)
	return 0
}
