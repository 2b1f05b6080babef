package core

import (
	"strings"
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrderings parses "a,-b" into orderings, dropping fields not in `allowed` (a map of
// public field name to column).
func ParseOrderings(s string, allowed map[string]string) []DBOrdering {
	var ords []DBOrdering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		col, ok := allowed[field]
		if !ok {
			continue
		}
		ords = append(ords, DBOrdering{Field: col, Ascending: !descending})
	}
	return ords
}

// OrderByClause renders orderings as an SQL ORDER BY clause, or `fallback` when empty.
func OrderByClause(ords []DBOrdering, fallback string) string {
	if len(ords) == 0 {
		return " ORDER BY " + fallback
	}
	parts := make([]string, 0, len(ords))
	for _, ord := range ords {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
