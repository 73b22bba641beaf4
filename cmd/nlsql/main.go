package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/nlsql/nlsql/internal/config"
	"github.com/nlsql/nlsql/internal/nl2sql"
	"github.com/nlsql/nlsql/internal/observability"
	"github.com/nlsql/nlsql/internal/query"
	"github.com/nlsql/nlsql/internal/session"
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
	cfg, err := config.LoadFromEnv("nlsql")
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

	translator, err := nl2sql.NewTranslator(cfg.AI)
	if err != nil {
		logger.Error("failed to initialize translator", slog.Any("error", err))
		return 1
	}

	var prompter session.Prompter
	if term.IsTerminal(int(os.Stdin.Fd())) {
		readlinePrompter, err := session.NewReadlinePrompter(cfg.Session.HistoryFile)
		if err != nil {
			logger.Error("failed to initialize prompt", slog.Any("error", err))
			return 1
		}
		defer func() { _ = readlinePrompter.Close() }()
		prompter = readlinePrompter
	} else {
		prompter = session.NewLinePrompter(os.Stdin, os.Stdout)
	}

	s := &session.Session{
		Translator: translator,
		Executor: &query.Executor{
			Open:   store.Opener(store.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN, PingTimeout: cfg.Store.PingTimeout}),
			Logger: logger,
		},
		Prompter:   prompter,
		Transcript: session.Transcript{Path: cfg.Session.TranscriptPath},
		SchemaPath: cfg.Schema.Path,
		Stdout:     os.Stdout,
		Logger:     logger,
	}
	if err := s.Run(ctx); err != nil {
		logger.Error("session failed", slog.Any("error", err))
		return 1
	}
	return 0
}
