package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/nlsql/nlsql/internal/observability"
	"github.com/nlsql/nlsql/internal/storage"
	"github.com/nlsql/nlsql/internal/store"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// SourceFile is a tabular file found in the source tree.
type SourceFile struct {
	Key    string
	Table  string
	Format Format
}

type ImportedTable struct {
	Table        string
	Key          string
	Rows         int
	Skipped      int
	Size         int64
	LastModified time.Time
}

type FailedFile struct {
	Table string
	Key   string
	Err   error
}

type Report struct {
	Discovered int
	Imported   []ImportedTable
	Failed     []FailedFile
}

// Loader materializes every tabular file of Source as a table, replacing
// tables of the same name.
type Loader struct {
	Source      storage.ObjectStore
	Open        store.OpenFunc
	TablePrefix string
	// Strict turns skipped malformed rows into a failure of the whole file.
	Strict bool
	Logger *slog.Logger
}

// TableName strips directories, the extension and prefix from key:
// raw/simpsons_characters.csv -> characters.
func TableName(key, prefix string) string {
	base := path.Base(strings.ReplaceAll(key, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimPrefix(base, prefix)
}

func formatOf(key string) (Format, bool) {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return FormatCSV, true
	case ".parquet":
		return FormatParquet, true
	default:
		return "", false
	}
}

// Discover lists the tabular files of the source in key order.
func (l *Loader) Discover(ctx context.Context) ([]SourceFile, error) {
	if l.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	objects, err := l.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source files: %w", err)
	}
	files := make([]SourceFile, 0, len(objects))
	for _, object := range objects {
		format, ok := formatOf(object.Key)
		if !ok {
			continue
		}
		files = append(files, SourceFile{
			Key:    object.Key,
			Table:  TableName(object.Key, l.TablePrefix),
			Format: format,
		})
	}
	return files, nil
}

func (l *Loader) Run(ctx context.Context) (Report, error) {
	if l.Open == nil {
		return Report{}, fmt.Errorf("store opener is required")
	}
	logger := observability.OrDiscard(l.Logger)

	files, err := l.Discover(ctx)
	if err != nil {
		return Report{}, err
	}
	report := Report{Discovered: len(files)}
	if len(files) == 0 {
		logger.Warn("no tabular files found")
		return report, nil
	}

	db, err := l.Open(ctx)
	if err != nil {
		return report, fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fileLogger := logger.With(slog.String("table", file.Table), slog.String("key", file.Key))
		fileLogger.Info("importing table")

		imported, err := l.importFile(ctx, db, file)
		if err != nil {
			fileLogger.Error("could not import table", slog.Any("error", err))
			observability.ObserveImportFile("failed", 0, 0)
			report.Failed = append(report.Failed, FailedFile{Table: file.Table, Key: file.Key, Err: err})
			continue
		}
		if imported.Skipped > 0 {
			fileLogger.Warn("skipped malformed rows", slog.Int("skipped", imported.Skipped))
		}
		fileLogger.Info("table ready",
			slog.Int("rows", imported.Rows),
			slog.Int64("size_bytes", imported.Size),
			slog.Time("modified", imported.LastModified),
		)
		observability.ObserveImportFile("imported", imported.Rows, imported.Skipped)
		report.Imported = append(report.Imported, imported)
	}
	return report, nil
}

func (l *Loader) importFile(ctx context.Context, db *store.DB, file SourceFile) (ImportedTable, error) {
	if strings.TrimSpace(file.Table) == "" {
		return ImportedTable{}, fmt.Errorf("empty table name derived from %q", file.Key)
	}
	info, err := l.Source.Stat(ctx, file.Key)
	if err != nil {
		return ImportedTable{}, fmt.Errorf("stat %s: %w", file.Key, err)
	}
	data, err := l.read(ctx, file.Key)
	if err != nil {
		return ImportedTable{}, err
	}

	var table Table
	switch file.Format {
	case FormatParquet:
		table, err = parseParquet(data)
	default:
		table, err = parseCSV(bytes.NewReader(data))
	}
	if err != nil {
		return ImportedTable{}, fmt.Errorf("parse %s: %w", file.Key, err)
	}
	if l.Strict && table.Skipped > 0 {
		return ImportedTable{}, fmt.Errorf("parse %s: %d malformed rows", file.Key, table.Skipped)
	}

	written, err := db.ReplaceTable(ctx, file.Table, table.Columns, table.Rows)
	if err != nil {
		return ImportedTable{}, err
	}
	return ImportedTable{
		Table:        file.Table,
		Key:          file.Key,
		Rows:         written,
		Skipped:      table.Skipped,
		Size:         info.Size,
		LastModified: info.LastModified,
	}, nil
}

func (l *Loader) read(ctx context.Context, key string) ([]byte, error) {
	reader, err := l.Source.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = reader.Close() }()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
