package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusRows    Status = "rows"
	StatusFailure Status = "failure"
)

// Result is either the rows a statement produced or the message describing
// why it did not run.
type Result struct {
	Status  Status
	Columns []string
	Rows    [][]any
	Message string
	Elapsed time.Duration
}

func Rows(columns []string, rows [][]any) Result {
	if rows == nil {
		rows = [][]any{}
	}
	return Result{Status: StatusRows, Columns: columns, Rows: rows}
}

func Failure(message string) Result {
	return Result{Status: StatusFailure, Message: message}
}

func (r Result) Failed() bool {
	return r.Status == StatusFailure
}

// Text renders the rows as a bracketed list of tuples, or the failure
// message.
func (r Result) Text() string {
	if r.Failed() {
		return r.Message
	}
	parts := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		parts = append(parts, FormatRow(row))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatRow renders a row as a tuple: (1, 'Homer', None). A single value
// keeps a trailing comma.
func FormatRow(row []any) string {
	parts := make([]string, 0, len(row))
	for _, value := range row {
		parts = append(parts, formatValue(value))
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "None"
	case string:
		return quoteString(typed)
	case []byte:
		return quoteString(string(typed))
	case bool:
		if typed {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(typed, 10)
	case int:
		return strconv.Itoa(typed)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case float32:
		return formatFloat(float64(typed))
	case float64:
		return formatFloat(typed)
	case time.Time:
		return quoteString(typed.Format(time.RFC3339Nano))
	case interface{ String() string }:
		return quoteString(typed.String())
	default:
		return fmt.Sprint(typed)
	}
}

func formatFloat(value float64) string {
	switch {
	case math.IsNaN(value):
		return "nan"
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	}
	text := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.ContainsAny(text, ".e") {
		text += ".0"
	}
	return text
}

// quoteString uses single quotes unless the value holds a single quote and
// no double quote.
func quoteString(value string) string {
	if strings.Contains(value, "'") && !strings.Contains(value, `"`) {
		return `"` + strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(value) + `"`
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`).Replace(value) + "'"
}
