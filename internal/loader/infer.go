package loader

import (
	"strconv"
	"strings"

	"github.com/nlsql/nlsql/internal/store"
)

// Table is a parsed source file ready to be written to the store.
type Table struct {
	Columns []store.Column
	Rows    [][]any
	Skipped int
}

// missingMarkers are the cell spellings read as NULL.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isMissing(cell string) bool {
	_, ok := missingMarkers[cell]
	return ok
}

// inferKind picks the narrowest kind that every non-missing cell of column
// parses as. Columns with no values are text.
func inferKind(records [][]string, column int) store.Kind {
	kind := store.KindInteger
	seen := false
	for _, record := range records {
		cell := record[column]
		if isMissing(cell) {
			continue
		}
		seen = true
		trimmed := strings.TrimSpace(cell)
		if kind == store.KindInteger {
			if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				continue
			}
			kind = store.KindReal
		}
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return store.KindText
		}
	}
	if !seen {
		return store.KindText
	}
	return kind
}

func convertCell(cell string, kind store.Kind) any {
	if isMissing(cell) {
		return nil
	}
	switch kind {
	case store.KindInteger:
		value, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err == nil {
			return value
		}
	case store.KindReal:
		value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err == nil {
			return value
		}
	}
	return cell
}

// headerNames fills blank header cells and disambiguates repeats with a
// numeric suffix: a, a -> a, a.1.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	counts := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for {
			if _, taken := used[candidate]; !taken {
				break
			}
			counts[name]++
			candidate = name + "." + strconv.Itoa(counts[name])
		}
		used[candidate] = struct{}{}
		names[i] = candidate
	}
	return names
}
