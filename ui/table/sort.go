package table

import (
	"sort"
	"strings"
	"time"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortState is the single active sort. A nil *SortState means unsorted.
type SortState struct {
	Key       string
	Direction Direction
}

// ToggleSort returns the sort state after the header of column key is clicked:
// an ascending column becomes descending, anything else becomes ascending.
func ToggleSort(current *SortState, key string) *SortState {
	if current != nil && current.Key == key && current.Direction == Ascending {
		return &SortState{Key: key, Direction: Descending}
	}
	return &SortState{Key: key, Direction: Ascending}
}

// SortRows returns a copy of rows ordered by s. Equal values keep their relative order.
func SortRows(rows []Row, s *SortState) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	if s == nil || s.Key == "" {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := Compare(sorted[i][s.Key], sorted[j][s.Key])
		if s.Direction == Descending {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

// Compare orders two cell values using their native ordering.
// It returns -1, 0 or 1. nil sorts first; values of different kinds are compared as text.
func Compare(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmpFloat(fa, fb)
		}
	}

	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb)
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			switch {
			case va.Before(vb):
				return -1
			case va.After(vb):
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(Text(a), Text(b))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
