package normalize

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
)

const utf8BOM = "\ufeff"

// ReadRows reads a CSV stream with a header row into raw records. Only
// retained columns are kept on each record. Ragged rows are tolerated: short
// rows leave trailing columns absent.
//
// Returns core.ErrSourceRead for unreadable or empty input and core.ErrSchema
// when a required column is missing from the header.
func ReadRows(ctx context.Context, r io.Reader) ([]core.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", core.ErrSourceRead)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", core.ErrSourceRead, err)
	}

	positions, err := retainedPositions(header)
	if err != nil {
		return nil, err
	}

	var rows []core.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrSourceRead, err)
		}

		line, _ := reader.FieldPos(0)
		row := core.RawRecord{Line: line, Fields: make(map[string]string, len(positions))}
		for column, pos := range positions {
			if pos < len(fields) {
				row.Fields[column] = fields[pos]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// retainedPositions maps each retained column present in header to its index.
// The first occurrence wins when a header repeats a column name.
func retainedPositions(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(schema.RetainedColumns))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if !schema.IsRetained(name) {
			continue
		}
		if _, ok := positions[name]; !ok {
			positions[name] = i
		}
	}

	for _, required := range schema.RequiredColumns {
		if _, ok := positions[required]; !ok {
			return nil, fmt.Errorf("%w: required column %q missing from header", core.ErrSchema, required)
		}
	}
	return positions, nil
}
