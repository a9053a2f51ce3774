package database

import "strings"

// prefixColumns qualifies each name in a comma-separated column list with a
// table alias, for use in joined queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i := range parts {
		parts[i] = alias + "." + parts[i]
	}
	return strings.Join(parts, ", ")
}
