package normalize

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
)

// DefaultSnapshotPath is where the cleaned snapshot is written by default.
const DefaultSnapshotPath = "data/processed/processed_csv/train_processed.csv"

// WriteSnapshot writes records as CSV with schema.RetainedColumns as header.
// The file is written to a temporary sibling and renamed over path, so a
// reader never sees a partial snapshot.
func WriteSnapshot(path string, records []core.CleanRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.csv")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(schema.RetainedColumns); err != nil {
		tmp.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(snapshotRow(rec)); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// snapshotRow orders record fields like schema.RetainedColumns.
func snapshotRow(rec core.CleanRecord) []string {
	return []string{
		rec.PetID,
		rec.Type,
		rec.Name,
		strconv.Itoa(rec.Age),
		rec.Breed,
		rec.Gender,
		rec.Color,
		rec.Description,
		strconv.Itoa(rec.PhotoAmount),
	}
}

// ReadSnapshot loads a snapshot written by WriteSnapshot. Labels are taken
// as is; numeric columns are coerced again since they went through text.
func ReadSnapshot(path string) ([]core.CleanRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSourceRead, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrSourceRead, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: empty snapshot", core.ErrSourceRead, path)
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}
	for _, column := range schema.RetainedColumns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("%w: snapshot column %q missing", core.ErrSchema, column)
		}
	}

	cell := func(row []string, column string) string {
		if i := index[column]; i < len(row) {
			return row[i]
		}
		return ""
	}

	records := make([]core.CleanRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, core.CleanRecord{
			PetID:       cell(row, schema.ColumnPetID),
			Type:        cell(row, schema.ColumnType),
			Name:        cell(row, schema.ColumnName),
			Age:         CoerceInt(cell(row, schema.ColumnAge)),
			Breed:       cell(row, schema.ColumnBreed),
			Gender:      cell(row, schema.ColumnGender),
			Color:       cell(row, schema.ColumnColor),
			Description: cell(row, schema.ColumnDescription),
			PhotoAmount: CoerceInt(cell(row, schema.ColumnPhotoAmount)),
		})
	}
	return records, nil
}
