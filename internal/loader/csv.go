package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nlsql/nlsql/internal/store"
)

// parseCSV reads a header plus data records. Records with more fields than
// the header, or that fail to parse, are skipped and counted; short records
// are padded with NULL.
func parseCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("no columns to parse from file")
		}
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) == 1 && strings.TrimSpace(header[0]) == "" {
		return Table{}, fmt.Errorf("no columns to parse from file")
	}
	names := headerNames(header)

	skipped := 0
	records := make([][]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return Table{}, fmt.Errorf("read record: %w", err)
		}
		if len(record) > len(names) {
			skipped++
			continue
		}
		for len(record) < len(names) {
			record = append(record, "")
		}
		records = append(records, record)
	}

	columns := make([]store.Column, len(names))
	for i, name := range names {
		columns[i] = store.Column{Name: name, Kind: inferKind(records, i)}
	}
	rows := make([][]any, len(records))
	for r, record := range records {
		row := make([]any, len(columns))
		for c, column := range columns {
			row[c] = convertCell(record[c], column.Kind)
		}
		rows[r] = row
	}
	return Table{Columns: columns, Rows: rows, Skipped: skipped}, nil
}
