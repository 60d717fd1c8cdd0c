package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
)

// missingMarkers are cell values read as missing data, as common CSV tooling does.
var missingMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell value represents missing data.
func IsMissing(value string) bool {
	_, ok := missingMarkers[strings.TrimSpace(value)]
	return ok
}

// CleanText trims value; empty or missing becomes schema.Unknown.
func CleanText(value string) string {
	if IsMissing(value) {
		return schema.Unknown
	}
	return strings.TrimSpace(value)
}

// CoerceInt parses value as a number truncated toward zero. Unparseable,
// missing, non-finite or out of range values become 0; negatives are kept.
func CoerceInt(value string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0
	}
	return int(f)
}

// decodeCell decodes a categorical cell, treating missing markers as unknown.
func decodeCell(decode func(string) string, value string) string {
	if IsMissing(value) {
		return schema.Unknown
	}
	return decode(value)
}

// CleanRow converts a raw row into a clean record. Absent optional columns
// take their defaults. The identifier is trimmed but otherwise kept verbatim.
func CleanRow(raw core.RawRecord) core.CleanRecord {
	get := func(column string) string {
		v, _ := raw.Get(column)
		return v
	}

	return core.CleanRecord{
		PetID:       strings.TrimSpace(get(schema.ColumnPetID)),
		Type:        decodeCell(schema.DecodeType, get(schema.ColumnType)),
		Name:        CleanText(get(schema.ColumnName)),
		Age:         CoerceInt(get(schema.ColumnAge)),
		Breed:       CleanText(get(schema.ColumnBreed)),
		Gender:      decodeCell(schema.DecodeGender, get(schema.ColumnGender)),
		Color:       decodeCell(schema.DecodeColor, get(schema.ColumnColor)),
		Description: CleanText(get(schema.ColumnDescription)),
		PhotoAmount: CoerceInt(get(schema.ColumnPhotoAmount)),
	}
}

// Dedup is the outcome of cleaning and deduplicating a row set.
type Dedup struct {
	Records    []core.CleanRecord
	Duplicates int
	Invalid    int
}

// CleanRows cleans every row, drops rows with a blank identifier, and keeps
// only the first occurrence of each identifier, preserving first-seen order.
func CleanRows(rows []core.RawRecord) Dedup {
	out := Dedup{Records: make([]core.CleanRecord, 0, len(rows))}
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		rec := CleanRow(row)
		if IsMissing(rec.PetID) {
			out.Invalid++
			continue
		}
		if _, dup := seen[rec.PetID]; dup {
			out.Duplicates++
			continue
		}
		seen[rec.PetID] = struct{}{}
		out.Records = append(out.Records, rec)
	}
	return out
}
