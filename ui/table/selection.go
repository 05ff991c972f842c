package table

import "sort"

// Selection is a set of row identifiers. It is treated as an immutable value:
// every operation returns a new set.
type Selection map[string]struct{}

func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Selection) Len() int { return len(s) }

// IDs returns the identifiers in ascending order.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Toggle returns a copy of s with the membership of id flipped.
func (s Selection) Toggle(id string) Selection {
	ns := make(Selection, len(s)+1)
	for k := range s {
		ns[k] = struct{}{}
	}
	if _, ok := ns[id]; ok {
		delete(ns, id)
	} else {
		ns[id] = struct{}{}
	}
	return ns
}

// SelectionChange is emitted on every selection change. Rows are the selected
// rows found on the visible page.
type SelectionChange struct {
	IDs  []string
	Rows []Row
}

// AllSelected reports whether every visible row is selected. An empty page is never all selected.
func AllSelected(visible []Row, key KeyFunc, selected Selection) bool {
	if len(visible) == 0 {
		return false
	}
	for _, row := range visible {
		if !selected.Has(key(row)) {
			return false
		}
	}
	return true
}

// SomeSelected reports whether some, but not all, visible rows are selected.
func SomeSelected(visible []Row, key KeyFunc, selected Selection) bool {
	var n int
	for _, row := range visible {
		if selected.Has(key(row)) {
			n++
		}
	}
	return n > 0 && n < len(visible)
}

// ToggleSelectAll clears the selection when every visible row is selected and
// otherwise replaces it with exactly the visible rows. Selections on other pages
// are not kept.
func ToggleSelectAll(visible []Row, key KeyFunc, selected Selection) Selection {
	if AllSelected(visible, key, selected) {
		return NewSelection()
	}
	ids := make([]string, 0, len(visible))
	for _, row := range visible {
		ids = append(ids, key(row))
	}
	return NewSelection(ids...)
}

// ToggleRow flips the membership of a single identifier.
func ToggleRow(selected Selection, id string) Selection {
	return selected.Toggle(id)
}

// Resolve builds the SelectionChange of s, looking rows up in visible.
func Resolve(s Selection, visible []Row, key KeyFunc) SelectionChange {
	rows := make([]Row, 0, len(s))
	for _, row := range visible {
		if s.Has(key(row)) {
			rows = append(rows, row)
		}
	}
	return SelectionChange{IDs: s.IDs(), Rows: rows}
}
