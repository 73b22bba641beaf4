package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlsql/nlsql/internal/config"
	"github.com/nlsql/nlsql/internal/loader"
	"github.com/nlsql/nlsql/internal/observability"
	"github.com/nlsql/nlsql/internal/storage"
	"github.com/nlsql/nlsql/internal/storage/local"
	s3store "github.com/nlsql/nlsql/internal/storage/s3"
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
	cfg, err := config.LoadFromEnv("nlsql-build")
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

	source, err := openSource(ctx, cfg)
	if err != nil {
		logger.Error("failed to open source", slog.Any("error", err))
		return 1
	}

	l := &loader.Loader{
		Source:      source,
		Open:        store.Opener(store.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN, PingTimeout: cfg.Store.PingTimeout}),
		TablePrefix: cfg.Loader.TablePrefix,
		Strict:      cfg.Loader.Strict,
		Logger:      logger,
	}
	report, err := l.Run(ctx)
	if err != nil {
		logger.Error("database build failed", slog.Any("error", err))
		return 1
	}
	if report.Discovered == 0 {
		fmt.Println("No tabular files found! Check the data directory.")
		return 0
	}
	for _, imported := range report.Imported {
		fmt.Printf("Table '%s' is ready! (%d rows)\n", imported.Table, imported.Rows)
	}
	for _, failed := range report.Failed {
		fmt.Printf("Could not import %s: %v\n", failed.Table, failed.Err)
	}
	fmt.Printf("\nDatabase build complete: %d of %d tables in %s\n", len(report.Imported), report.Discovered, cfg.Store.DSN)
	return 0
}

func openSource(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	if cfg.Loader.Source == config.SourceS3 {
		return s3store.New(ctx, s3store.Config{
			Endpoint:        cfg.ObjectStore.Endpoint,
			Region:          cfg.ObjectStore.Region,
			Bucket:          cfg.ObjectStore.Bucket,
			AccessKeyID:     cfg.ObjectStore.AccessKeyID,
			SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
			UseSSL:          cfg.ObjectStore.UseSSL,
			Prefix:          cfg.ObjectStore.Prefix,
		})
	}
	return local.New(cfg.Loader.DataDir)
}
