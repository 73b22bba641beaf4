package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "sqlite"})
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("Open() error = %v, want ErrUnknownDriver", err)
	}
}

func TestLookupDialectAliases(t *testing.T) {
	cases := map[string]string{
		"sqlite":     "sqlite",
		"SQLite3":    "sqlite",
		"duckdb":     "duckdb",
		"postgresql": "postgres",
		"pgx":        "postgres",
	}
	for driver, want := range cases {
		dialect, err := LookupDialect(driver)
		if err != nil {
			t.Fatalf("LookupDialect(%q) error = %v", driver, err)
		}
		if dialect.Name != want {
			t.Fatalf("LookupDialect(%q).Name = %q, want %q", driver, dialect.Name, want)
		}
	}
}

func TestPlaceholdersAndTypeNames(t *testing.T) {
	if got := SQLite.Placeholder(3); got != "?" {
		t.Fatalf("SQLite.Placeholder(3) = %q", got)
	}
	if got := Postgres.Placeholder(3); got != "$3" {
		t.Fatalf("Postgres.Placeholder(3) = %q", got)
	}
	if got := DuckDB.TypeName(KindReal); got != "DOUBLE" {
		t.Fatalf("DuckDB.TypeName(KindReal) = %q", got)
	}
	if got := Postgres.TypeName(KindReal); got != "DOUBLE PRECISION" {
		t.Fatalf("Postgres.TypeName(KindReal) = %q", got)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := QuoteIdent(`we"ird`); got != `"we""ird"` {
		t.Fatalf("QuoteIdent() = %q", got)
	}
}

func TestReplaceTableSQLiteRoundTrip(t *testing.T) {
	db := openSQLite(t)
	columns := []Column{{Name: "name", Kind: KindText}, {Name: "age", Kind: KindInteger}, {Name: "score", Kind: KindReal}}
	rows := [][]any{{"Homer Simpson", int64(39), 1.5}, {"Marge Simpson", nil, nil}}

	for i := 0; i < 2; i++ {
		written, err := db.ReplaceTable(context.Background(), "characters", columns, rows)
		if err != nil {
			t.Fatalf("ReplaceTable() run %d error = %v", i, err)
		}
		if written != 2 {
			t.Fatalf("ReplaceTable() written = %d", written)
		}
	}

	var count int
	if err := db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM characters`).Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d after two replaces, want 2", count)
	}

	tables, err := db.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 1 || tables[0] != "characters" {
		t.Fatalf("ListTables() = %#v", tables)
	}

	got, err := db.ListColumns(context.Background(), "characters")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	want := []ColumnInfo{{Name: "name", Type: "TEXT"}, {Name: "age", Type: "INTEGER"}, {Name: "score", Type: "REAL"}}
	if len(got) != len(want) {
		t.Fatalf("ListColumns() = %#v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListColumns()[%d] = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestReplaceTableRollsBackOnInsertFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	db := Wrap(sqlDB, SQLite)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "episodes"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "episodes" ("id" INTEGER, "title" TEXT)`)).WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "episodes" ("id", "title") VALUES (?, ?)`))
	prep.ExpectExec().WithArgs(int64(1), "Simpsons Roasting on an Open Fire").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(int64(2), "Bart the Genius").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = db.ReplaceTable(context.Background(), "episodes",
		[]Column{{Name: "id", Kind: KindInteger}, {Name: "title", Kind: KindText}},
		[][]any{{int64(1), "Simpsons Roasting on an Open Fire"}, {int64(2), "Bart the Genius"}},
	)
	if err == nil {
		t.Fatal("expected insert failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestReplaceTableUsesNumberedPlaceholdersForPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	db := Wrap(sqlDB, Postgres)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "locations"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "locations" ("id" BIGINT, "name" TEXT)`)).WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "locations" ("id", "name") VALUES ($1, $2)`))
	prep.ExpectExec().WithArgs(int64(1), "Springfield").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	written, err := db.ReplaceTable(context.Background(), "locations",
		[]Column{{Name: "id", Kind: KindInteger}, {Name: "name", Kind: KindText}},
		[][]any{{int64(1), "Springfield"}},
	)
	if err != nil {
		t.Fatalf("ReplaceTable() error = %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d", written)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestListColumnsInformationSchema(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	db := Wrap(sqlDB, Postgres)

	mock.ExpectQuery(regexp.QuoteMeta(`
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`)).
		WithArgs("characters").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("id", "bigint").
			AddRow("name", "text"))

	columns, err := db.ListColumns(context.Background(), "characters")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	if len(columns) != 2 || columns[0].Name != "id" || columns[1].Type != "text" {
		t.Fatalf("ListColumns() = %#v", columns)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestListTablesKeepsTablesNamedLikeInternalOnes(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	columns := []Column{{Name: "value", Kind: KindInteger}}
	for _, name := range []string{"sqlitexstats", "sqlite", "characters"} {
		if _, err := db.ReplaceTable(ctx, name, columns, [][]any{{int64(1)}}); err != nil {
			t.Fatalf("ReplaceTable(%q) error = %v", name, err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE counters (id INTEGER PRIMARY KEY AUTOINCREMENT, n INTEGER)`); err != nil {
		t.Fatalf("create counters error = %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO counters (n) VALUES (1)`); err != nil {
		t.Fatalf("insert counters error = %v", err)
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	want := []string{"characters", "counters", "sqlite", "sqlitexstats"}
	if len(tables) != len(want) {
		t.Fatalf("tables = %#v, want %#v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Fatalf("tables = %#v, want %#v", tables, want)
		}
	}
}

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
