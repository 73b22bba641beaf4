package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nlsql/nlsql/internal/observability"
	"github.com/nlsql/nlsql/internal/store"
)

const errorPrefix = "SQL Error: "

// Executor runs one statement per call on a fresh store connection.
type Executor struct {
	Open   store.OpenFunc
	Logger *slog.Logger
}

// Execute never returns an error: every failure is folded into a Failure
// result carrying the store's message.
func (e *Executor) Execute(ctx context.Context, sqlText string) (result Result) {
	logger := observability.OrDiscard(e.Logger)
	started := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			result = Failure(fmt.Sprintf("%s%v", errorPrefix, recovered))
		}
		result.Elapsed = time.Since(started)
		if result.Failed() {
			logger.Warn("statement failed", slog.String("error", result.Message))
		} else {
			logger.Debug("statement executed", slog.Int("rows", len(result.Rows)), slog.Duration("elapsed", result.Elapsed))
		}
		observability.ObserveQuery(string(result.Status), result.Elapsed)
	}()

	statement := stripTrailingSemicolons(sqlText)
	if statement == "" {
		return Failure(errorPrefix + "empty statement")
	}
	if e.Open == nil {
		return Failure(errorPrefix + "store opener is required")
	}

	db, err := e.Open(ctx)
	if err != nil {
		return Failure(errorPrefix + err.Error())
	}
	defer func() { _ = db.Close() }()

	columns, rows, err := fetchAll(ctx, db, statement)
	if err != nil {
		return Failure(errorPrefix + err.Error())
	}
	return Rows(columns, rows)
}

func fetchAll(ctx context.Context, db *store.DB, statement string) ([]string, [][]any, error) {
	rows, err := db.QueryContext(ctx, statement)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, resultRows, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
