package store

import (
	"context"
	"fmt"
	"strings"
)

// Column describes a column to create.
type Column struct {
	Name string
	Kind Kind
}

// ReplaceTable drops any table called name and recreates it with rows inside
// one transaction, so readers see either the old table or the complete new
// one. It returns the number of rows written.
func (db *DB) ReplaceTable(ctx context.Context, name string, columns []Column, rows [][]any) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("table name is required")
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("table %q has no columns", name)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace %q: %w", name, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(name)); err != nil {
		return 0, fmt.Errorf("drop table %q: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, db.createTableSQL(name, columns)); err != nil {
		return 0, fmt.Errorf("create table %q: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, db.insertSQL(name, columns))
	if err != nil {
		return 0, fmt.Errorf("prepare insert into %q: %w", name, err)
	}
	defer func() { _ = stmt.Close() }()

	written := 0
	for index, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d of %q has %d values, want %d", index, name, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("insert row %d into %q: %w", index, name, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace %q: %w", name, err)
	}
	committed = true
	return written, nil
}

func (db *DB) createTableSQL(name string, columns []Column) string {
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		defs = append(defs, QuoteIdent(column.Name)+" "+db.Dialect.TypeName(column.Kind))
	}
	return "CREATE TABLE " + QuoteIdent(name) + " (" + strings.Join(defs, ", ") + ")"
}

func (db *DB) insertSQL(name string, columns []Column) string {
	names := make([]string, 0, len(columns))
	marks := make([]string, 0, len(columns))
	for i, column := range columns {
		names = append(names, QuoteIdent(column.Name))
		marks = append(marks, db.Dialect.Placeholder(i+1))
	}
	return "INSERT INTO " + QuoteIdent(name) + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}
