package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery applies NFKC normalization, collapses runs of whitespace and
// trims the result.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(query)), " ")
}
