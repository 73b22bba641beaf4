package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ColumnInfo is a column as declared in the store catalog.
type ColumnInfo struct {
	Name string
	Type string
}

const (
	sqliteListTables = `
SELECT name
FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
ORDER BY name`

	infoSchemaListTables = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
ORDER BY table_name`
)

// ListTables returns user tables ordered by name.
func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	query := sqliteListTables
	if db.Dialect.catalog == catalogInformationSchema {
		query = infoSchemaListTables
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// ListColumns returns the columns of table in the catalog's declared order.
func (db *DB) ListColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	if db.Dialect.catalog == catalogInformationSchema {
		return db.listColumnsInformationSchema(ctx, table)
	}
	return db.listColumnsSQLite(ctx, table)
}

func (db *DB) listColumnsSQLite(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+QuoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("table info %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]ColumnInfo, 0)
	for rows.Next() {
		var (
			cid       int
			column    ColumnInfo
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &column.Name, &column.Type, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column of %q: %w", table, err)
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %q: %w", table, err)
	}
	return columns, nil
}

func (db *DB) listColumnsInformationSchema(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = ` + db.Dialect.Placeholder(1) + `
ORDER BY ordinal_position`
	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]ColumnInfo, 0)
	for rows.Next() {
		var column ColumnInfo
		if err := rows.Scan(&column.Name, &column.Type); err != nil {
			return nil, fmt.Errorf("scan column of %q: %w", table, err)
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %q: %w", table, err)
	}
	return columns, nil
}
