package schema

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nlsql/nlsql/internal/loader"
	"github.com/nlsql/nlsql/internal/storage/local"
	"github.com/nlsql/nlsql/internal/store"
)

func TestRenderWithoutTablesIsHeaderOnly(t *testing.T) {
	got := Document{}.Render()
	if got != "--- SIMPSONS DATABASE SCHEMA ---\n" {
		t.Fatalf("Render() = %q", got)
	}
}

func TestRenderListsColumnsInOrder(t *testing.T) {
	doc := Document{
		Title: "TEST",
		Tables: []Table{
			{Name: "characters", Columns: []store.ColumnInfo{{Name: "id", Type: "INTEGER"}, {Name: "name", Type: "TEXT"}}},
			{Name: "locations", Columns: []store.ColumnInfo{{Name: "name", Type: "TEXT"}}},
		},
	}
	want := "--- TEST ---\n" +
		"\nTable: characters\nColumns:\n  - id (INTEGER)\n  - name (TEXT)\n" +
		"\nTable: locations\nColumns:\n  - name (TEXT)\n"
	if got := doc.Render(); got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestExtractUsesCatalogAndClosesConnection(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	mock.ExpectQuery("FROM sqlite_master").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("characters"))
	mock.ExpectQuery(`PRAGMA table_info\("characters"\)`).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "name", "TEXT", 0, nil, 0).
			AddRow(1, "relation", "TEXT", 0, nil, 0))
	mock.ExpectClose()

	extractor := &Extractor{Open: mockOpener(db), Title: "T"}
	doc, err := extractor.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Tables) != 1 || len(doc.Tables[0].Columns) != 2 || doc.Tables[0].Columns[1].Name != "relation" {
		t.Fatalf("doc = %#v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestExtractClosesConnectionOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	mock.ExpectQuery("FROM sqlite_master").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectClose()

	extractor := &Extractor{Open: mockOpener(db)}
	if _, err := extractor.Extract(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWriteFileOverwritesDocument(t *testing.T) {
	dir := t.TempDir()
	cfg := store.Config{Driver: "sqlite", DSN: filepath.Join(dir, "simpsons.db")}
	seed, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	columns := []store.Column{{Name: "name", Kind: store.KindText}, {Name: "age", Kind: store.KindInteger}}
	if _, err := seed.ReplaceTable(context.Background(), "characters", columns, [][]any{{"Homer", int64(39)}}); err != nil {
		t.Fatalf("ReplaceTable() error = %v", err)
	}
	_ = seed.Close()

	path := filepath.Join(dir, "database_schema.txt")
	if err := os.WriteFile(path, []byte("stale content"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	extractor := &Extractor{Open: store.Opener(cfg), Title: DefaultTitle}
	if _, err := extractor.WriteFile(context.Background(), path); err != nil {
		t.Fatalf("Extractor.WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "--- SIMPSONS DATABASE SCHEMA ---\n\nTable: characters\nColumns:\n  - name (TEXT)\n  - age (INTEGER)\n"
	if string(data) != want {
		t.Fatalf("document = %q, want %q", data, want)
	}
	if strings.Contains(string(data), "stale") {
		t.Fatal("document was not overwritten")
	}
}

func TestExtractIncludesTablesNamedLikeCatalogTables(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "raw")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	files := map[string]string{
		"sqlitexstats.csv":        "stat,value\nrows,2\n",
		"simpsons_characters.csv": "name,relation\nMarge Simpson,wife of Homer\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	source, err := local.New(dataDir)
	if err != nil {
		t.Fatalf("local.New() error = %v", err)
	}
	open := store.Opener(store.Config{Driver: "sqlite", DSN: filepath.Join(dir, "simpsons.db")})
	report, err := (&loader.Loader{Source: source, Open: open, TablePrefix: "simpsons_"}).Run(context.Background())
	if err != nil {
		t.Fatalf("Loader.Run() error = %v", err)
	}
	if len(report.Imported) != 2 {
		t.Fatalf("imported = %d, want 2", len(report.Imported))
	}

	doc, err := (&Extractor{Open: open}).Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Tables) != 2 {
		t.Fatalf("schema tables = %d, want 2", len(doc.Tables))
	}
	if doc.Tables[0].Name != "characters" || doc.Tables[1].Name != "sqlitexstats" {
		t.Fatalf("tables = %#v", doc.Tables)
	}
	if !strings.Contains(doc.Render(), "\nTable: sqlitexstats\nColumns:\n  - stat (TEXT)\n  - value (INTEGER)\n") {
		t.Fatalf("Render() = %q", doc.Render())
	}
}

func TestWriteFileForEmptyStoreIsHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database_schema.txt")
	extractor := &Extractor{Open: store.Opener(store.Config{Driver: "sqlite", DSN: filepath.Join(dir, "empty.db")})}

	doc, err := extractor.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Tables) != 0 {
		t.Fatalf("tables = %#v, want none", doc.Tables)
	}
	if _, err := extractor.WriteFile(context.Background(), path); err != nil {
		t.Fatalf("Extractor.WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "--- SIMPSONS DATABASE SCHEMA ---\n" {
		t.Fatalf("document = %q", data)
	}
}

func mockOpener(db *sql.DB) store.OpenFunc {
	return func(context.Context) (*store.DB, error) {
		return store.Wrap(db, store.SQLite), nil
	}
}
