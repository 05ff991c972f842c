package table

// Expansion tracks the rows whose detail panel is open.
type Expansion struct {
	open Selection
	// Expandable may disallow expanding a row. nil allows every row.
	Expandable func(Row) bool
}

func NewExpansion(expandable func(Row) bool, ids ...string) *Expansion {
	return &Expansion{open: NewSelection(ids...), Expandable: expandable}
}

// CanExpand reports whether row may be expanded.
func (e *Expansion) CanExpand(row Row) bool {
	return e.Expandable == nil || e.Expandable(row)
}

func (e *Expansion) IsExpanded(id string) bool {
	return e.open.Has(id)
}

// Toggle flips the expansion of the row identified by id.
// It returns false, leaving the state unchanged, when the row cannot be expanded.
func (e *Expansion) Toggle(id string, row Row) bool {
	if !e.IsExpanded(id) && !e.CanExpand(row) {
		return false
	}
	e.open = e.open.Toggle(id)
	return true
}

// IDs returns the expanded identifiers in ascending order.
func (e *Expansion) IDs() []string {
	return e.open.IDs()
}
