package schema

import (
	"math"
	"strconv"
	"strings"
)

// Unknown is the label used for any missing or undecodable value.
const Unknown = "Unknown"

// Code tables for the categorical columns of the source dataset.
var (
	TypeLabels = map[int]string{
		1: "Dog",
		2: "Cat",
	}

	GenderLabels = map[int]string{
		1: "Male",
		2: "Female",
		3: "Mixed",
	}

	ColorLabels = map[int]string{
		1: "Black",
		2: "Brown",
		3: "Golden",
		4: "Yellow",
		5: "Cream",
		6: "Gray",
		7: "White",
	}
)

// DecodeType maps a type code to its label.
func DecodeType(code string) string {
	return decode(TypeLabels, code)
}

// DecodeGender maps a gender code to its label.
func DecodeGender(code string) string {
	return decode(GenderLabels, code)
}

// DecodeColor maps a color code to its label.
func DecodeColor(code string) string {
	return decode(ColorLabels, code)
}

// decode never fails: anything that is not an integral code present in the
// table yields Unknown. "2.0" decodes like "2" since numeric columns with
// gaps are often exported as floats.
func decode(table map[int]string, code string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(code), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Unknown
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return Unknown
	}
	if label, ok := table[int(f)]; ok {
		return label
	}
	return Unknown
}
