package table

import "strings"

// Filters maps a column key to a substring query. Empty queries impose no constraint.
type Filters map[string]string

// Active reports whether any filter constrains the rows.
func (f Filters) Active() bool {
	for _, q := range f {
		if q != "" {
			return true
		}
	}
	return false
}

// With returns a copy of f with the query of key replaced.
func (f Filters) With(key, query string) Filters {
	nf := make(Filters, len(f)+1)
	for k, q := range f {
		nf[k] = q
	}
	if query == "" {
		delete(nf, key)
	} else {
		nf[key] = query
	}
	return nf
}

// FilterRows returns the rows whose value at every filtered column contains
// the query, compared case-insensitively. Filters combine with AND.
func FilterRows(rows []Row, f Filters) []Row {
	if !f.Active() {
		filtered := make([]Row, len(rows))
		copy(filtered, rows)
		return filtered
	}

	queries := make(map[string]string, len(f))
	for k, q := range f {
		if q != "" {
			queries[k] = strings.ToLower(q)
		}
	}

	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matches(row, queries) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func matches(row Row, queries map[string]string) bool {
	for key, q := range queries {
		if !strings.Contains(strings.ToLower(Text(row[key])), q) {
			return false
		}
	}
	return true
}
