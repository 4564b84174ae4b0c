package sqlname

import (
	"fmt"
	"strings"
)

const (
	ACCESS = "access"
	SQLITE = "sqlite"
	DUCKDB = "duckdb"
)

// Quote returns the table or column name quoted for use in a query against the given source type.
func Quote(s string, dbType string) string {
	switch dbType {
	case ACCESS:
		// Jet SQL has no escape for ']' inside brackets other than doubling it.
		return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
	case SQLITE, DUCKDB:
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	default:
		panic(fmt.Sprintf("unknown source db type %q", dbType))
	}
}

// Lookup finds name in names. An exact match wins; otherwise a single
// case-insensitive match is accepted, since Access and SQLite resolve table
// names case-insensitively.
func Lookup(names []string, name string) (string, bool) {
	var folded []string
	for _, n := range names {
		if n == name {
			return n, true
		}
		if strings.EqualFold(n, name) {
			folded = append(folded, n)
		}
	}
	if len(folded) == 1 {
		return folded[0], true
	}
	return "", false
}
