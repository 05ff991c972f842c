package table

// State is the transient UI state owned by the table.
type State struct {
	Sort    *SortState
	Filters Filters
}

// View is the derived view of a table.
type View struct {
	Rows       []Row       // rows of the current page
	Filtered   int         // number of rows left after filtering
	Sort       *SortState  // active sort, nil when unsorted
	Pagination *Pagination // nil when the table is not paginated; Total is Filtered
}

// Derive computes the view of rows: sort, then filter, then paginate.
// The pagination total is replaced by the filtered count. rows is never modified.
func Derive(rows []Row, st State, p *Pagination) View {
	sorted := SortRows(rows, st.Sort)
	filtered := FilterRows(sorted, st.Filters)

	v := View{
		Filtered: len(filtered),
		Sort:     st.Sort,
	}
	if p != nil {
		pg := *p
		pg.Total = len(filtered)
		v.Pagination = &pg
	}
	v.Rows = Paginate(filtered, v.Pagination)
	return v
}

// Handlers receive the change requests for the state owned by the caller.
type Handlers struct {
	OnSelectionChange func(SelectionChange)
	OnPageChange      func(PageChange)
}

// Options configure a Table.
type Options struct {
	Columns []Column
	// Key identifies rows; defaults to KeyField("id").
	Key KeyFunc
	// Selectable enables the selection checkboxes.
	Selectable bool
	// Expandable rows render a detail panel. RowExpandable may disallow single rows.
	Expandable    bool
	RowExpandable func(Row) bool
	EmptyText     string
	Handlers      Handlers
}

// Table combines the internal state (sort, filters, expansion) with the
// caller-owned pagination and selection.
type Table struct {
	opts      Options
	state     State
	expansion *Expansion
}

func New(opts Options) *Table {
	if opts.Key == nil {
		opts.Key = KeyField("id")
	}
	if opts.EmptyText == "" {
		opts.EmptyText = "No data available"
	}
	return &Table{
		opts:      opts,
		state:     State{Filters: Filters{}},
		expansion: NewExpansion(opts.RowExpandable),
	}
}

func (t *Table) Columns() []Column { return t.opts.Columns }
func (t *Table) Key() KeyFunc      { return t.opts.Key }
func (t *Table) State() State      { return t.state }
func (t *Table) Selectable() bool  { return t.opts.Selectable }
func (t *Table) Expandable() bool  { return t.opts.Expandable }
func (t *Table) EmptyText() string { return t.opts.EmptyText }

// Column returns the descriptor of key.
func (t *Table) Column(key string) (Column, bool) {
	for _, c := range t.opts.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// SetState replaces the internal sort and filters, e.g. when restored from a request.
// Sorts and filters on unknown, unsortable or unfilterable columns are dropped.
func (t *Table) SetState(st State) {
	t.state = State{Filters: Filters{}}
	if st.Sort != nil {
		if c, ok := t.Column(st.Sort.Key); ok && c.Sortable {
			s := *st.Sort
			t.state.Sort = &s
		}
	}
	for k, q := range st.Filters {
		if c, ok := t.Column(k); ok && c.Filterable && q != "" {
			t.state.Filters[k] = q
		}
	}
}

// Sort toggles the sort on column key. Unsortable columns are ignored.
func (t *Table) Sort(key string) {
	if c, ok := t.Column(key); !ok || !c.Sortable {
		return
	}
	t.state.Sort = ToggleSort(t.state.Sort, key)
}

// Filter sets the query of column key. Unfilterable columns are ignored.
func (t *Table) Filter(key, query string) {
	if c, ok := t.Column(key); !ok || !c.Filterable {
		return
	}
	t.state.Filters = t.state.Filters.With(key, query)
}

// Expansion returns the internally owned expansion tracker.
func (t *Table) Expansion() *Expansion { return t.expansion }

// Expand restores the expanded rows, e.g. from a request.
func (t *Table) Expand(ids ...string) {
	t.expansion = NewExpansion(t.opts.RowExpandable, ids...)
}

// ToggleExpand flips the detail panel of row.
func (t *Table) ToggleExpand(row Row) bool {
	if !t.opts.Expandable {
		return false
	}
	return t.expansion.Toggle(t.opts.Key(row), row)
}

// View derives the visible rows.
func (t *Table) View(rows []Row, p *Pagination) View {
	return Derive(rows, t.state, p)
}

// ToggleSelectAll proposes the selection after the header checkbox is clicked.
func (t *Table) ToggleSelectAll(visible []Row, selected Selection) SelectionChange {
	return t.emitSelection(ToggleSelectAll(visible, t.opts.Key, selected), visible)
}

// ToggleRow proposes the selection after the checkbox of row id is clicked.
func (t *Table) ToggleRow(visible []Row, selected Selection, id string) SelectionChange {
	return t.emitSelection(ToggleRow(selected, id), visible)
}

func (t *Table) emitSelection(s Selection, visible []Row) SelectionChange {
	change := Resolve(s, visible, t.opts.Key)
	if t.opts.Handlers.OnSelectionChange != nil {
		t.opts.Handlers.OnSelectionChange(change)
	}
	return change
}

// ChangePage forwards a page change request to the caller.
func (t *Table) ChangePage(change PageChange) {
	if t.opts.Handlers.OnPageChange != nil {
		t.opts.Handlers.OnPageChange(change)
	}
}
