package schema

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nlsql/nlsql/internal/observability"
	"github.com/nlsql/nlsql/internal/store"
)

const DefaultTitle = "SIMPSONS DATABASE SCHEMA"

type Table struct {
	Name    string
	Columns []store.ColumnInfo
}

// Document is the plain-text description of every table in the store.
type Document struct {
	Title  string
	Tables []Table
}

// Render writes the header line followed by one block per table:
//
//	--- TITLE ---
//
//	Table: characters
//	Columns:
//	  - name (TEXT)
func (d Document) Render() string {
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}
	var b strings.Builder
	b.WriteString("--- ")
	b.WriteString(title)
	b.WriteString(" ---\n")
	for _, table := range d.Tables {
		b.WriteString("\nTable: ")
		b.WriteString(table.Name)
		b.WriteString("\nColumns:\n")
		for _, column := range table.Columns {
			fmt.Fprintf(&b, "  - %s (%s)\n", column.Name, column.Type)
		}
	}
	return b.String()
}

type Extractor struct {
	Open   store.OpenFunc
	Title  string
	Logger *slog.Logger
}

func (e *Extractor) Extract(ctx context.Context) (Document, error) {
	if e.Open == nil {
		return Document{}, fmt.Errorf("store opener is required")
	}
	db, err := e.Open(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	names, err := db.ListTables(ctx)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Title: e.Title, Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		columns, err := db.ListColumns(ctx, name)
		if err != nil {
			return Document{}, err
		}
		doc.Tables = append(doc.Tables, Table{Name: name, Columns: columns})
	}
	return doc, nil
}

// WriteFile extracts the document and replaces path with its rendering.
func (e *Extractor) WriteFile(ctx context.Context, path string) (Document, error) {
	logger := observability.OrDiscard(e.Logger)
	doc, err := e.Extract(ctx)
	if err != nil {
		return Document{}, err
	}
	if err := os.WriteFile(path, []byte(doc.Render()), 0o644); err != nil {
		return Document{}, fmt.Errorf("write schema document: %w", err)
	}
	observability.SetSchemaTables(len(doc.Tables))
	if len(doc.Tables) == 0 {
		logger.Warn("store has no tables", slog.String("path", path))
	}
	logger.Info("schema document written", slog.String("path", path), slog.Int("tables", len(doc.Tables)))
	return doc, nil
}
