package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/nlsql/nlsql/internal/nl2sql"
	"github.com/nlsql/nlsql/internal/observability"
	"github.com/nlsql/nlsql/internal/query"
)

const (
	DefaultBanner  = "--- 🍩 Simpsons AI Assistant 🍩 ---"
	QuestionPrompt = "Ask a question (e.g., 'Who is the wife of Homer?'): "
)

type Executor interface {
	Execute(ctx context.Context, sql string) query.Result
}

// Session answers a single question: translate, execute, print, record.
type Session struct {
	Translator nl2sql.Translator
	Executor   Executor
	Prompter   Prompter
	Transcript Transcript
	SchemaPath string
	Banner     string
	Stdout     io.Writer
	Logger     *slog.Logger
}

// Run fails only when no question could be read, the translation call fails
// or the transcript cannot be written. SQL failures are reported as results.
func (s *Session) Run(ctx context.Context) error {
	if s.Translator == nil || s.Executor == nil || s.Prompter == nil {
		return fmt.Errorf("translator, executor and prompter are required")
	}
	logger := observability.OrDiscard(s.Logger)
	out := s.Stdout
	if out == nil {
		out = io.Discard
	}
	banner := s.Banner
	if banner == "" {
		banner = DefaultBanner
	}

	_, _ = fmt.Fprintln(out, banner)
	question, err := s.Prompter.Prompt(ctx, QuestionPrompt)
	if err != nil {
		return fmt.Errorf("read question: %w", err)
	}

	if _, err := os.Stat(s.SchemaPath); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("schema document missing", slog.String("path", s.SchemaPath))
	}
	translation, err := s.Translator.Translate(ctx, nl2sql.Request{
		Question: question,
		Schema:   nl2sql.ReadSchema(s.SchemaPath),
	})
	if err != nil {
		return fmt.Errorf("translate question: %w", err)
	}
	logger.Info("question translated", slog.String("provider", translation.Provider), slog.String("model", translation.Model))
	_, _ = fmt.Fprintf(out, "\n[AI Generated SQL]:\n%s\n", translation.SQL)

	result := s.Executor.Execute(ctx, translation.SQL)
	_, _ = fmt.Fprintln(out, "\n[Results]:")
	if result.Failed() {
		_, _ = fmt.Fprintln(out, result.Message)
	} else {
		for _, row := range result.Rows {
			_, _ = fmt.Fprintf(out, " - %s\n", query.FormatRow(row))
		}
	}

	record := Record{Question: question, SQL: translation.SQL, Result: result.Text()}
	if err := s.Transcript.Append(record); err != nil {
		return err
	}
	logger.Info("transcript record appended", slog.String("path", s.Transcript.Path))
	return nil
}
