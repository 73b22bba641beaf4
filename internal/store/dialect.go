package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Kind is the storage class of an imported column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	default:
		return "text"
	}
}

type Dialect struct {
	Name       string
	DriverName string
	typeNames  map[Kind]string
	numbered   bool
	catalog    catalogStyle
}

type catalogStyle int

const (
	catalogSQLite catalogStyle = iota
	catalogInformationSchema
)

var (
	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite3",
		typeNames:  map[Kind]string{KindText: "TEXT", KindInteger: "INTEGER", KindReal: "REAL"},
		catalog:    catalogSQLite,
	}
	DuckDB = Dialect{
		Name:       "duckdb",
		DriverName: "duckdb",
		typeNames:  map[Kind]string{KindText: "VARCHAR", KindInteger: "BIGINT", KindReal: "DOUBLE"},
		catalog:    catalogInformationSchema,
	}
	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		typeNames:  map[Kind]string{KindText: "TEXT", KindInteger: "BIGINT", KindReal: "DOUBLE PRECISION"},
		numbered:   true,
		catalog:    catalogInformationSchema,
	}
)

func LookupDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "duckdb":
		return DuckDB, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func (d Dialect) TypeName(kind Kind) string {
	if name, ok := d.typeNames[kind]; ok {
		return name
	}
	return d.typeNames[KindText]
}

// Placeholder returns the bind marker for the 1-based argument position.
func (d Dialect) Placeholder(position int) string {
	if d.numbered {
		return "$" + strconv.Itoa(position)
	}
	return "?"
}

func QuoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
