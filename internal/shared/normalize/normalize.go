package normalize

import "strings"

// Text trims s and collapses inner runs of whitespace into a single space.
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Optional is Text for nullable columns: blank input becomes nil.
func Optional(s string) *string {
	n := Text(s)
	if n == "" {
		return nil
	}
	return &n
}
