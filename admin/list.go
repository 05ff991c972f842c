package admin

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/ui/table"
)

// ListResult is the derived table view of a resource, as served to API clients.
type ListResult struct {
	Resource   string        `json:"resource"`
	Rows       []table.Row   `json:"rows"`
	Total      int           `json:"total"`
	Filtered   int           `json:"filtered"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	Sort       string        `json:"sort,omitempty"`
	Filters    table.Filters `json:"filters"`
}

// List derives the rows of res requested by st; unknown sorts and filters are ignored
// and an out of range page is clamped.
func List(ctx context.Context, res Resource, st PageState) (ListResult, error) {
	rows, err := res.List(ctx)
	if err != nil {
		return ListResult{}, errors.Wrapf(err, "listing %s", res.Name())
	}

	tbl := table.New(table.Options{Columns: res.Columns(), Key: table.KeyField(res.KeyField())})
	tbl.SetState(st.TableState())
	view := tbl.View(rows, st.Pagination())
	if clamped := view.Pagination.Clamp(); clamped.Current != st.Page {
		st.Page = clamped.Current
		view = tbl.View(rows, st.Pagination())
	}

	return ListResult{
		Resource:   res.Name(),
		Rows:       view.Rows,
		Total:      len(rows),
		Filtered:   view.Filtered,
		Page:       view.Pagination.Current,
		PageSize:   view.Pagination.PageSize,
		TotalPages: view.Pagination.TotalPages(),
		Sort:       formatSort(view.Sort),
		Filters:    tbl.State().Filters,
	}, nil
}
