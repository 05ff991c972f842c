package admin

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-admin/ui/breadcrumb"
	"github.com/trezcool/masomo-admin/ui/form"
	"github.com/trezcool/masomo-admin/ui/table"
)

// courses is a static resource used to exercise the pages.
type courses struct {
	name string
	rows []table.Row
	cols []table.Column
}

func newCourses(n int) *courses {
	c := &courses{
		name: "courses",
		cols: []table.Column{
			{Key: "code", Title: "Code", Sortable: true, Filterable: true},
			{Key: "title", Title: "Title", Sortable: true, Filterable: true},
			{Key: "credits", Title: "Credits", Align: table.AlignRight},
		},
	}
	for i := 0; i < n; i++ {
		c.rows = append(c.rows, table.Row{
			"code":    "C" + string(rune('A'+i)),
			"title":   "Course " + string(rune('a'+i)),
			"credits": i,
		})
	}
	return c
}

func (c *courses) Name() string            { return c.name }
func (c *courses) Title() string           { return "Courses" }
func (c *courses) Columns() []table.Column { return c.cols }
func (c *courses) KeyField() string        { return "code" }
func (c *courses) Form(bool) []form.Field {
	return []form.Field{{Name: "title", Label: "Title", Rules: form.Rules{Required: true}}}
}
func (c *courses) List(context.Context) ([]table.Row, error) { return c.rows, nil }
func (c *courses) Get(_ context.Context, id string) (table.Row, error) {
	for _, r := range c.rows {
		if r["code"] == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}
func (c *courses) Create(context.Context, map[string]string) (table.Row, error) { return nil, nil }
func (c *courses) Update(context.Context, string, map[string]string) (table.Row, error) {
	return nil, nil
}
func (c *courses) Delete(_ context.Context, ids ...string) (int, error) { return len(ids), nil }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newCourses(1)))

	other := newCourses(1)
	other.name = "classes"
	require.NoError(t, reg.Register(other))

	err := reg.Register(newCourses(1))
	assert.Error(t, err)

	noName := newCourses(1)
	noName.name = ""
	assert.Error(t, reg.Register(noName))

	noCols := newCourses(1)
	noCols.name = "rooms"
	noCols.cols = nil
	assert.Error(t, reg.Register(noCols))

	assert.Error(t, reg.Register(nil))

	res, err := reg.Get("courses")
	require.NoError(t, err)
	assert.Equal(t, "courses", res.Name())

	_, err = reg.Get("rooms")
	assert.Equal(t, ErrUnknownResource, err)

	names := make([]string, 0, 2)
	for _, r := range reg.Resources() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"classes", "courses"}, names)
}

func TestParseState(t *testing.T) {
	q := url.Values{
		"sort":           {"-title"},
		"filter.title":   {" course "},
		"filter.credits": {""},
		"page":           {"3"},
		"page_size":      {"25"},
		"selected":       {"CB", "CA", ""},
		"expanded":       {"CC", "CA", "CC"},
		"modal":          {"edit"},
		"id":             {"CA"},
	}
	st := ParseState(q, 10, 10, 25)

	require.NotNil(t, st.Sort)
	assert.Equal(t, table.SortState{Key: "title", Direction: table.Descending}, *st.Sort)
	assert.Equal(t, table.Filters{"title": "course"}, st.Filters)
	assert.Equal(t, 3, st.Page)
	assert.Equal(t, 25, st.PageSize)
	assert.Equal(t, []string{"CA", "CB"}, st.Selected.IDs())
	assert.Equal(t, []string{"CA", "CC"}, st.Expanded)
	assert.Equal(t, ModalEdit, st.Modal)
	assert.Equal(t, "CA", st.ID)

	back := ParseState(st.Query(), 10, 10, 25)
	assert.Equal(t, st, back)
}

func TestParseState_Invalid(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
		want PageState
	}{
		{
			name: "defaults",
			q:    url.Values{},
			want: PageState{Filters: table.Filters{}, Page: 1, PageSize: 10, Selected: table.NewSelection(), Expanded: []string{}},
		},
		{
			name: "bad numbers",
			q:    url.Values{"page": {"-2"}, "page_size": {"7"}},
			want: PageState{Filters: table.Filters{}, Page: 1, PageSize: 10, Selected: table.NewSelection(), Expanded: []string{}},
		},
		{
			name: "unknown modal",
			q:    url.Values{"modal": {"explode"}, "id": {"x"}},
			want: PageState{Filters: table.Filters{}, Page: 1, PageSize: 10, Selected: table.NewSelection(), Expanded: []string{}},
		},
		{
			name: "edit without id",
			q:    url.Values{"modal": {"edit"}},
			want: PageState{Filters: table.Filters{}, Page: 1, PageSize: 10, Selected: table.NewSelection(), Expanded: []string{}},
		},
		{
			name: "bare dash sort",
			q:    url.Values{"sort": {"-"}},
			want: PageState{Filters: table.Filters{}, Page: 1, PageSize: 10, Selected: table.NewSelection(), Expanded: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseState(tt.q, 10, 10, 25))
		})
	}
}

func TestPageState_URL(t *testing.T) {
	st := PageState{PageSize: 10, Page: 1}
	assert.Equal(t, "/admin/courses?page_size=10", st.URL("/admin/courses"))
	assert.Equal(t, "/admin/courses", PageState{}.URL("/admin/courses"))

	st = st.WithSort(&table.SortState{Key: "code", Direction: table.Descending}).WithPage(table.PageChange{Page: 2})
	assert.Equal(t, "/admin/courses?page=2&page_size=10&sort=-code", st.URL("/admin/courses"))

	st = st.WithFilters(table.Filters{"code": "a"})
	assert.Equal(t, 1, st.Page, "filtering resets the page")
}

func buildPage(t *testing.T, res Resource, rawQuery string) *Page {
	t.Helper()
	q, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	p, err := BuildPage(context.Background(), res, ParseState(q, 3, 3, 5), Options{
		BasePath:  "/admin/courses",
		Home:      breadcrumb.Crumb{Label: "Home", Href: "/"},
		PageSizes: []int{3, 5},
	})
	require.NoError(t, err)
	return p
}

func parseURL(t *testing.T, u string) PageState {
	t.Helper()
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	return ParseState(parsed.Query(), 3, 3, 5)
}

func TestBuildPage(t *testing.T) {
	p := buildPage(t, newCourses(7), "sort=-code")

	assert.Equal(t, "Courses", p.Title)
	assert.Equal(t, []breadcrumb.Crumb{
		{Label: "Home", Href: "/"},
		{Label: "Admin", Href: "/admin"},
		{Label: "Courses", Current: true},
	}, p.Breadcrumbs)

	// rows: CG CF CE on page 1 of 3
	require.Len(t, p.Rows, 3)
	assert.Equal(t, []string{"CG", "CF", "CE"}, []string{p.Rows[0].ID, p.Rows[1].ID, p.Rows[2].ID})
	assert.Equal(t, 7, p.Filtered)
	assert.Equal(t, 3, p.Pager.TotalPages())
	assert.Equal(t, Cell{Text: "6", Class: "text-right"}, p.Rows[0].Cells[2])

	// header: sorted desc on code; toggling goes back to ascending
	assert.True(t, p.Header[0].Sorted)
	assert.Equal(t, table.Descending, p.Header[0].Direction)
	assert.Equal(t, &table.SortState{Key: "code", Direction: table.Ascending}, parseURL(t, p.Header[0].SortURL).Sort)
	assert.Equal(t, &table.SortState{Key: "title", Direction: table.Ascending}, parseURL(t, p.Header[1].SortURL).Sort)
	assert.Empty(t, p.Header[2].SortURL, "credits is not sortable")

	// pager
	assert.Empty(t, p.Pager.PrevURL)
	assert.Equal(t, 2, parseURL(t, p.Pager.NextURL).Page)
	require.Len(t, p.Pager.Pages, 3)
	assert.True(t, p.Pager.Pages[0].Current)
	assert.Equal(t, 3, parseURL(t, p.Pager.Pages[2].URL).Page)
	require.Len(t, p.Pager.PageSizes, 2)
	size5 := parseURL(t, p.Pager.PageSizes[1].URL)
	assert.Equal(t, 5, size5.PageSize)
	assert.Equal(t, 1, size5.Page)

	// no modal
	assert.Nil(t, p.Modal)
	assert.Nil(t, p.Confirm)
	assert.True(t, p.Actions[1].Disabled, "nothing selected")
}

func TestBuildPage_Selection(t *testing.T) {
	p := buildPage(t, newCourses(7), "selected=CA&selected=CZ")

	assert.False(t, p.SelectAll.Checked)
	assert.True(t, p.SelectAll.Indeterminate)
	assert.Equal(t, []string{"CA", "CB", "CC"}, parseURL(t, p.SelectAll.URL).Selected.IDs(), "select-all replaces the selection")

	assert.True(t, p.Rows[0].Selected)
	assert.Equal(t, []string{"CZ"}, parseURL(t, p.Rows[0].SelectURL).Selected.IDs())
	assert.Equal(t, []string{"CA", "CB", "CZ"}, parseURL(t, p.Rows[1].SelectURL).Selected.IDs())
	assert.False(t, p.Actions[1].Disabled)

	all := buildPage(t, newCourses(7), "selected=CA&selected=CB&selected=CC")
	assert.True(t, all.SelectAll.Checked)
	assert.Empty(t, parseURL(t, all.SelectAll.URL).Selected.IDs())
}

func TestBuildPage_FilterAndClamp(t *testing.T) {
	p := buildPage(t, newCourses(7), "filter.title=COURSE+B&filter.credits=1&page=9")

	assert.Equal(t, table.Filters{"title": "COURSE B"}, p.State.Filters, "credits is not filterable")
	assert.Equal(t, 1, p.Filtered)
	assert.Equal(t, 1, p.State.Page)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, "CB", p.Rows[0].ID)
	assert.Empty(t, parseURL(t, p.FilterURL).Filters)
	assert.Equal(t, []Param{{Name: "page_size", Value: "3"}}, p.FilterParams)

	empty := buildPage(t, newCourses(7), "filter.code=zzz")
	assert.True(t, empty.Empty)
	assert.Equal(t, "No Courses found", empty.EmptyText)
	assert.Empty(t, empty.Pager.Pages)
}

func TestBuildPage_Modals(t *testing.T) {
	res := newCourses(4)

	p := buildPage(t, res, "modal=create&page=2")
	require.NotNil(t, p.Modal)
	assert.True(t, p.Modal.Open)
	assert.Equal(t, "Add Course", p.Modal.Title)
	assert.Equal(t, "/admin/courses?page=2&page_size=3", p.FormAction)
	assert.Len(t, p.Fields, 1)
	assert.Equal(t, "/admin/courses?page=2&page_size=3", p.Modal.Footer[0].Href, "cancel closes the modal")

	p = buildPage(t, res, "modal=edit&id=CB")
	require.NotNil(t, p.Modal)
	assert.Equal(t, "Edit Course", p.Modal.Title)
	assert.True(t, strings.HasPrefix(p.FormAction, "/admin/courses/CB?"))
	assert.Equal(t, "Course b", p.Fields[0].Value)

	p.BindForm(res, map[string]string{"title": ""}, form.Errors{"title": "this field is required"})
	assert.Equal(t, "this field is required", p.Fields[0].Error)

	_, err := BuildPage(context.Background(), res, ParseState(url.Values{"modal": {"edit"}, "id": {"XX"}}, 3), Options{BasePath: "/admin/courses"})
	assert.Error(t, err)

	p = buildPage(t, res, "modal=delete&selected=CA&selected=CB")
	require.NotNil(t, p.Confirm)
	assert.Equal(t, "Delete 2 Courses", p.Confirm.Title)
	assert.Equal(t, []string{"CA", "CB"}, p.DeleteIDs)
	assert.Equal(t, "/admin/courses/delete?page_size=3", p.FormAction)

	p = buildPage(t, res, "modal=delete&id=CD&selected=CA")
	assert.Equal(t, []string{"CD"}, p.DeleteIDs)

	p = buildPage(t, res, "modal=delete")
	assert.Nil(t, p.Confirm)
}

func TestBuildPage_Expansion(t *testing.T) {
	res := newCourses(2)
	p := buildPage(t, res, "expanded=CA")
	for _, r := range p.Rows {
		assert.False(t, r.CanExpand, "courses have no details")
	}
}

func TestList(t *testing.T) {
	q := url.Values{"sort": {"-code"}, "filter.title": {"course"}, "filter.credits": {"2"}, "page": {"2"}}
	got, err := List(context.Background(), newCourses(7), ParseState(q, 3))
	require.NoError(t, err)

	assert.Equal(t, "courses", got.Resource)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, 7, got.Filtered)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 3, got.TotalPages)
	assert.Equal(t, "-code", got.Sort)
	assert.Equal(t, table.Filters{"title": "course"}, got.Filters)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "CD", got.Rows[0]["code"])
}

func TestList_ClampsPage(t *testing.T) {
	got, err := List(context.Background(), newCourses(4), ParseState(url.Values{"page": {"9"}}, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Page)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "CD", got.Rows[0]["code"])
}
