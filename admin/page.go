package admin

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/ui/breadcrumb"
	"github.com/trezcool/masomo-admin/ui/button"
	"github.com/trezcool/masomo-admin/ui/form"
	"github.com/trezcool/masomo-admin/ui/modal"
	"github.com/trezcool/masomo-admin/ui/table"
)

// Options configure the pages built for a resource.
type Options struct {
	// BasePath is the path of the resource list page, e.g. "/admin/students".
	BasePath  string
	Home      breadcrumb.Crumb
	PageSizes []int
}

type (
	HeaderCell struct {
		Column    table.Column
		Sorted    bool
		Direction table.Direction
		// SortURL requests the toggled sort; empty for unsortable columns.
		SortURL string
		Filter  string
	}

	Cell struct {
		Text  string
		Class string
	}

	RowView struct {
		ID        string
		Row       table.Row
		Cells     []Cell
		Selected  bool
		SelectURL string
		Expanded  bool
		CanExpand bool
		ExpandURL string
		Details   []Detail
		EditURL   string
		DeleteURL string
	}

	SelectAll struct {
		Checked       bool
		Indeterminate bool
		URL           string
	}

	PageLink struct {
		Number  int
		URL     string
		Current bool
	}

	PageSizeOption struct {
		Size     int
		URL      string
		Selected bool
	}

	Pager struct {
		table.Pagination
		Pages     []PageLink
		PrevURL   string
		NextURL   string
		PageSizes []PageSizeOption
	}

	// Param is a hidden input of a form.
	Param struct {
		Name  string
		Value string
	}

	// Page is the view model of an admin resource page.
	Page struct {
		Resource    string
		Title       string
		Path        string
		State       PageState
		Breadcrumbs []breadcrumb.Crumb
		Actions     []button.Button

		Header    []HeaderCell
		Rows      []RowView
		SelectAll SelectAll
		Selection []string
		Filtered  int
		Empty     bool
		EmptyText string
		Pager     Pager

		// FilterURL resets the filters while keeping the rest of the state.
		FilterURL string
		// FilterParams carry the rest of the state through the filter form.
		FilterParams []Param

		// create/edit modal
		Modal      *modal.Modal
		FormAction string
		Fields     []form.Field

		// delete confirmation
		Confirm   *modal.Modal
		DeleteIDs []string
	}
)

func (p *Page) url(st PageState) string {
	return st.URL(p.Path)
}

// BuildPage loads the records of res and derives the page requested by st.
func BuildPage(ctx context.Context, res Resource, st PageState, opts Options) (*Page, error) {
	rows, err := res.List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", res.Name())
	}

	_, isDetailer := res.(Detailer)
	tbl := table.New(table.Options{
		Columns:    res.Columns(),
		Key:        table.KeyField(res.KeyField()),
		Selectable: true,
		Expandable: isDetailer,
		EmptyText:  fmt.Sprintf("No %s found", res.Title()),
	})
	tbl.SetState(st.TableState())
	tbl.Expand(st.Expanded...)

	// the state keeps only what the table accepted
	st.Sort = tbl.State().Sort
	st.Filters = tbl.State().Filters

	view := tbl.View(rows, st.Pagination())
	if clamped := view.Pagination.Clamp(); clamped.Current != st.Page {
		st.Page = clamped.Current
		view = tbl.View(rows, st.Pagination())
	}

	p := &Page{
		Resource:  res.Name(),
		Title:     res.Title(),
		Path:      opts.BasePath,
		State:     st,
		Selection: st.Selected.IDs(),
		Filtered:  view.Filtered,
		Empty:     len(view.Rows) == 0,
		EmptyText: tbl.EmptyText(),
		FilterURL: st.WithFilters(table.Filters{}).URL(opts.BasePath),
	}
	p.FilterParams = hiddenParams(st.WithModal("", "").WithFilters(table.Filters{}))
	p.Breadcrumbs = breadcrumb.Build(opts.BasePath, breadcrumb.Options{
		Home:   opts.Home,
		Labels: map[string]string{res.Name(): res.Title()},
	})
	p.Actions = p.actions(res)
	p.Header = p.header(tbl)
	p.Rows = p.rows(res, tbl, view)
	p.SelectAll = p.selectAll(tbl, view)
	p.Pager = p.pager(*view.Pagination, opts.PageSizes)

	if err := p.modals(ctx, res); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) actions(res Resource) []button.Button {
	n := len(p.Selection)
	return []button.Button{
		{
			Label:   "Add " + singularTitle(res),
			Variant: button.Primary,
			Href:    p.url(p.State.WithModal(ModalCreate, "")),
		},
		{
			Label:    fmt.Sprintf("Delete selected (%d)", n),
			Variant:  button.Danger,
			Disabled: n == 0,
			Href:     p.url(p.State.WithModal(ModalDelete, "")),
		},
	}
}

func (p *Page) header(tbl *table.Table) []HeaderCell {
	cols := tbl.Columns()
	cells := make([]HeaderCell, 0, len(cols))
	for _, c := range cols {
		hc := HeaderCell{Column: c, Filter: p.State.Filters[c.Key]}
		if s := p.State.Sort; s != nil && s.Key == c.Key {
			hc.Sorted = true
			hc.Direction = s.Direction
		}
		if c.Sortable {
			hc.SortURL = p.url(p.State.WithSort(table.ToggleSort(p.State.Sort, c.Key)))
		}
		cells = append(cells, hc)
	}
	return cells
}

func (p *Page) rows(res Resource, tbl *table.Table, view table.View) []RowView {
	detailer, _ := res.(Detailer)
	exp := tbl.Expansion()
	out := make([]RowView, 0, len(view.Rows))
	for _, row := range view.Rows {
		id := tbl.Key()(row)
		rv := RowView{
			ID:        id,
			Row:       row,
			Selected:  p.State.Selected.Has(id),
			EditURL:   p.url(p.State.WithModal(ModalEdit, id)),
			DeleteURL: p.url(p.State.WithModal(ModalDelete, id)),
		}
		for _, c := range tbl.Columns() {
			rv.Cells = append(rv.Cells, Cell{Text: c.Cell(row), Class: c.Align.Class()})
		}

		change := tbl.ToggleRow(view.Rows, p.State.Selected, id)
		rv.SelectURL = p.url(p.State.WithSelection(change.IDs...))

		if detailer != nil {
			rv.Expanded = exp.IsExpanded(id)
			rv.CanExpand = rv.Expanded || exp.CanExpand(row)
			if rv.CanExpand {
				toggled := table.NewSelection(p.State.Expanded...).Toggle(id)
				rv.ExpandURL = p.url(p.State.WithExpanded(toggled.IDs()...))
			}
			if rv.Expanded {
				rv.Details = detailer.Details(row)
			}
		}
		out = append(out, rv)
	}
	return out
}

func (p *Page) selectAll(tbl *table.Table, view table.View) SelectAll {
	change := tbl.ToggleSelectAll(view.Rows, p.State.Selected)
	return SelectAll{
		Checked:       table.AllSelected(view.Rows, tbl.Key(), p.State.Selected),
		Indeterminate: table.SomeSelected(view.Rows, tbl.Key(), p.State.Selected),
		URL:           p.url(p.State.WithSelection(change.IDs...)),
	}
}

func (p *Page) pager(pg table.Pagination, sizes []int) Pager {
	pager := Pager{Pagination: pg}
	for _, n := range pg.PageNumbers() {
		pager.Pages = append(pager.Pages, PageLink{
			Number:  n,
			URL:     p.url(p.State.WithPage(pg.GoTo(n))),
			Current: n == pg.Current,
		})
	}
	if change, ok := pg.Prev(); ok {
		pager.PrevURL = p.url(p.State.WithPage(change))
	}
	if change, ok := pg.Next(); ok {
		pager.NextURL = p.url(p.State.WithPage(change))
	}
	for _, size := range sizes {
		pager.PageSizes = append(pager.PageSizes, PageSizeOption{
			Size:     size,
			URL:      p.url(p.State.WithPage(pg.SetPageSize(size))),
			Selected: size == pg.PageSize,
		})
	}
	return pager
}

func (p *Page) modals(ctx context.Context, res Resource) error {
	closed := p.State.WithModal("", "")
	switch p.State.Modal {
	case ModalCreate:
		p.Modal = modal.New("record-form", "Add "+singularTitle(res))
		p.Modal.Footer = formButtons("Create")
		p.Modal.CloseTo(p.url(closed))
		p.FormAction = p.url(closed)
		p.Fields = res.Form(false)
		p.Modal.Show()

	case ModalEdit:
		row, err := res.Get(ctx, p.State.ID)
		if err != nil {
			return errors.Wrapf(err, "getting %s %s", res.Name(), p.State.ID)
		}
		p.Modal = modal.New("record-form", "Edit "+singularTitle(res))
		p.Modal.Footer = formButtons("Save")
		p.Modal.CloseTo(p.url(closed))
		p.FormAction = closed.URL(p.Path + "/" + p.State.ID)
		fields := res.Form(true)
		p.Fields = (&form.Form{Fields: fields}).Bind(RowValues(row, fields), nil)
		p.Modal.Show()

	case ModalDelete:
		ids := p.Selection
		if p.State.ID != "" {
			ids = []string{p.State.ID}
		}
		if len(ids) == 0 {
			return nil
		}
		title := singularTitle(res)
		if len(ids) > 1 {
			title = strconv.Itoa(len(ids)) + " " + res.Title()
		}
		p.Confirm = modal.Confirm(
			"confirm-delete",
			"Delete "+title,
			fmt.Sprintf("Are you sure you want to delete %s? This cannot be undone.", title),
			"Delete",
		)
		p.Confirm.CloseTo(p.url(closed))
		p.DeleteIDs = ids
		p.FormAction = closed.WithSelection().URL(p.Path + "/delete")
		p.Confirm.Show()
	}
	return nil
}

// BindForm re-renders the open form with the submitted values and their errors.
func (p *Page) BindForm(res Resource, values map[string]string, errs form.Errors) {
	if p.Modal == nil {
		return
	}
	p.Fields = (&form.Form{Fields: res.Form(p.State.Modal == ModalEdit)}).Bind(values, errs)
}

func hiddenParams(st PageState) []Param {
	q := st.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var params []Param
	for _, k := range keys {
		for _, v := range q[k] {
			params = append(params, Param{Name: k, Value: v})
		}
	}
	return params
}

func formButtons(submit string) []button.Button {
	return []button.Button{
		{Label: "Cancel", Variant: button.Secondary, Name: "action", Value: "cancel"},
		{Label: submit, Type: "submit", Variant: button.Primary},
	}
}

// RowValues returns the form values of row for fields.
func RowValues(row table.Row, fields []form.Field) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := row[f.Name]; ok {
			values[f.Name] = table.Text(v)
		}
	}
	return values
}

// ColSpan is the number of table columns, including the select, expand and action ones.
func (p *Page) ColSpan() int {
	return len(p.Header) + 3
}
