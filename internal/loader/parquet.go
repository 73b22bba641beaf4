package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/nlsql/nlsql/internal/store"
)

const parquetReadBatch = 128

// parseParquet reads a flat parquet file. Nested or repeated columns are
// rejected.
func parseParquet(data []byte) (Table, error) {
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Table{}, fmt.Errorf("open parquet: %w", err)
	}

	fields := file.Schema().Fields()
	if len(fields) == 0 {
		return Table{}, fmt.Errorf("parquet schema has no columns")
	}
	columns := make([]store.Column, len(fields))
	for i, field := range fields {
		if !field.Leaf() || field.Repeated() {
			return Table{}, fmt.Errorf("column %q is nested or repeated", field.Name())
		}
		columns[i] = store.Column{Name: field.Name(), Kind: parquetKind(field.Type().Kind())}
	}

	rows := make([][]any, 0, file.NumRows())
	buf := make([]parquet.Row, parquetReadBatch)
	for _, group := range file.RowGroups() {
		groupRows := group.Rows()
		for {
			n, err := groupRows.ReadRows(buf)
			for _, raw := range buf[:n] {
				row := make([]any, len(columns))
				for _, value := range raw {
					index := value.Column()
					if index < 0 || index >= len(columns) {
						continue
					}
					row[index] = parquetValue(value)
				}
				rows = append(rows, row)
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = groupRows.Close()
				return Table{}, fmt.Errorf("read parquet rows: %w", err)
			}
		}
		if err := groupRows.Close(); err != nil {
			return Table{}, fmt.Errorf("close parquet row group: %w", err)
		}
	}
	return Table{Columns: columns, Rows: rows}, nil
}

func parquetKind(kind parquet.Kind) store.Kind {
	switch kind {
	case parquet.Boolean, parquet.Int32, parquet.Int64:
		return store.KindInteger
	case parquet.Float, parquet.Double:
		return store.KindReal
	default:
		return store.KindText
	}
}

func parquetValue(value parquet.Value) any {
	if value.IsNull() {
		return nil
	}
	switch value.Kind() {
	case parquet.Boolean:
		if value.Boolean() {
			return int64(1)
		}
		return int64(0)
	case parquet.Int32:
		return int64(value.Int32())
	case parquet.Int64:
		return value.Int64()
	case parquet.Float:
		return float64(value.Float())
	case parquet.Double:
		return value.Double()
	case parquet.Int96:
		return value.Int96().String()
	default:
		return string(value.ByteArray())
	}
}
