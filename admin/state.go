package admin

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/masomo-admin/ui/table"
)

// Query parameters of the page state.
const (
	ParamSort     = "sort"
	ParamFilter   = "filter."
	ParamPage     = "page"
	ParamPageSize = "page_size"
	ParamSelected = "selected"
	ParamExpanded = "expanded"
	ParamModal    = "modal"
	ParamID       = "id"
)

// Modals
const (
	ModalCreate = "create"
	ModalEdit   = "edit"
	ModalDelete = "delete"
)

// PageState is the complete state of an admin page. It is carried in the query string,
// so every control links to the state it requests.
type PageState struct {
	Sort     *table.SortState
	Filters  table.Filters
	Page     int
	PageSize int
	Selected table.Selection
	Expanded []string
	Modal    string
	ID       string
}

// ParseState decodes the page state from query parameters.
// Invalid page numbers and sizes fall back to 1 and defaultPageSize.
func ParseState(q url.Values, defaultPageSize int, pageSizes ...int) PageState {
	st := PageState{
		Filters:  table.Filters{},
		Page:     1,
		PageSize: defaultPageSize,
		Selected: table.NewSelection(nonEmpty(q[ParamSelected])...),
		Expanded: sortedUnique(nonEmpty(q[ParamExpanded])),
	}

	if s := strings.TrimSpace(q.Get(ParamSort)); s != "" {
		st.Sort = parseSort(s)
	}
	for key, vals := range q {
		if !strings.HasPrefix(key, ParamFilter) || len(vals) == 0 {
			continue
		}
		if col, val := strings.TrimPrefix(key, ParamFilter), strings.TrimSpace(vals[0]); col != "" && val != "" {
			st.Filters[col] = val
		}
	}
	if n, err := strconv.Atoi(q.Get(ParamPage)); err == nil && n > 0 {
		st.Page = n
	}
	if n, err := strconv.Atoi(q.Get(ParamPageSize)); err == nil && n > 0 && allowedPageSize(n, pageSizes) {
		st.PageSize = n
	}

	switch m := q.Get(ParamModal); m {
	case ModalCreate, ModalEdit, ModalDelete:
		st.Modal = m
		st.ID = strings.TrimSpace(q.Get(ParamID))
	}
	if st.Modal == ModalEdit && st.ID == "" {
		st.Modal = ""
	}
	return st
}

func parseSort(s string) *table.SortState {
	dir := table.Ascending
	if strings.HasPrefix(s, "-") {
		dir = table.Descending
		s = s[1:]
	}
	if s == "" {
		return nil
	}
	return &table.SortState{Key: s, Direction: dir}
}

func formatSort(s *table.SortState) string {
	if s == nil {
		return ""
	}
	if s.Direction == table.Descending {
		return "-" + s.Key
	}
	return s.Key
}

func allowedPageSize(n int, sizes []int) bool {
	if len(sizes) == 0 {
		return true
	}
	for _, s := range sizes {
		if s == n {
			return true
		}
	}
	return false
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sortedUnique(vals []string) []string {
	return table.NewSelection(vals...).IDs()
}

// Query encodes the state; zero values are omitted.
func (st PageState) Query() url.Values {
	q := make(url.Values)
	if s := formatSort(st.Sort); s != "" {
		q.Set(ParamSort, s)
	}
	keys := make([]string, 0, len(st.Filters))
	for k := range st.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := st.Filters[k]; v != "" {
			q.Set(ParamFilter+k, v)
		}
	}
	if st.Page > 1 {
		q.Set(ParamPage, strconv.Itoa(st.Page))
	}
	if st.PageSize > 0 {
		q.Set(ParamPageSize, strconv.Itoa(st.PageSize))
	}
	for _, id := range st.Selected.IDs() {
		q.Add(ParamSelected, id)
	}
	for _, id := range st.Expanded {
		q.Add(ParamExpanded, id)
	}
	if st.Modal != "" {
		q.Set(ParamModal, st.Modal)
		if st.ID != "" {
			q.Set(ParamID, st.ID)
		}
	}
	return q
}

// URL returns path with the encoded state.
func (st PageState) URL(path string) string {
	if q := st.Query().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func (st PageState) WithSort(s *table.SortState) PageState {
	st.Sort = s
	return st
}

// WithFilters replaces the filters and goes back to the first page.
func (st PageState) WithFilters(f table.Filters) PageState {
	st.Filters = f
	st.Page = 1
	return st
}

func (st PageState) WithPage(change table.PageChange) PageState {
	st.Page = change.Page
	if change.PageSize > 0 {
		st.PageSize = change.PageSize
	}
	return st
}

func (st PageState) WithSelection(ids ...string) PageState {
	st.Selected = table.NewSelection(ids...)
	return st
}

func (st PageState) WithExpanded(ids ...string) PageState {
	st.Expanded = sortedUnique(ids)
	return st
}

// WithModal opens modal for the record id; an empty modal closes it.
func (st PageState) WithModal(modal, id string) PageState {
	st.Modal = modal
	st.ID = id
	if modal == "" {
		st.ID = ""
	}
	return st
}

// TableState is the part of the state owned by the table.
func (st PageState) TableState() table.State {
	return table.State{Sort: st.Sort, Filters: st.Filters}
}

// Pagination returns the requested pagination; Total is set by the table derivation.
func (st PageState) Pagination() *table.Pagination {
	return &table.Pagination{Current: st.Page, PageSize: st.PageSize}
}
