package table

// MaxPageButtons is the number of page-number buttons shown by the pagination control.
const MaxPageButtons = 5

// Pagination is owned by the caller. Total is the filtered row count.
type Pagination struct {
	Current  int // 1-based
	PageSize int
	Total    int
}

// PageChange is a request to show page Page with PageSize rows per page.
type PageChange struct {
	Page     int
	PageSize int
}

// TotalPages returns ceil(Total / PageSize); 0 when there are no rows.
func (p Pagination) TotalPages() int {
	if p.Total <= 0 || p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Clamp returns p with Current within [1, TotalPages] (1 when there are no pages).
func (p Pagination) Clamp() Pagination {
	last := p.TotalPages()
	if p.Current > last {
		p.Current = last
	}
	if p.Current < 1 {
		p.Current = 1
	}
	return p
}

// Bounds returns the [start, end) indexes of the current page within n rows.
func (p Pagination) Bounds(n int) (int, int) {
	if p.PageSize <= 0 {
		return 0, n
	}
	start := (p.Current - 1) * p.PageSize
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + p.PageSize
	if end > n {
		end = n
	}
	return start, end
}

// PageNumbers returns up to MaxPageButtons page numbers centred on the current page,
// sliding the window at the boundaries.
func (p Pagination) PageNumbers() []int {
	total := p.TotalPages()
	if total == 0 {
		return nil
	}

	start := p.Current - MaxPageButtons/2
	if start < 1 {
		start = 1
	}
	end := start + MaxPageButtons - 1
	if end > total {
		end = total
		start = end - MaxPageButtons + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}
	return pages
}

func (p Pagination) HasPrev() bool { return p.Current > 1 }
func (p Pagination) HasNext() bool { return p.Current < p.TotalPages() }

// Prev requests the previous page; ok is false on the first page.
func (p Pagination) Prev() (PageChange, bool) {
	if !p.HasPrev() {
		return PageChange{}, false
	}
	return PageChange{Page: p.Current - 1, PageSize: p.PageSize}, true
}

// Next requests the next page; ok is false on the last page.
func (p Pagination) Next() (PageChange, bool) {
	if !p.HasNext() {
		return PageChange{}, false
	}
	return PageChange{Page: p.Current + 1, PageSize: p.PageSize}, true
}

func (p Pagination) GoTo(page int) PageChange {
	return PageChange{Page: page, PageSize: p.PageSize}
}

// SetPageSize requests a new page size, always starting over at page 1.
func (p Pagination) SetPageSize(size int) PageChange {
	return PageChange{Page: 1, PageSize: size}
}

// FirstItem and LastItem are the 1-based positions of the rows shown on the
// current page, for "Showing 11 to 20 of 25" labels.
func (p Pagination) FirstItem() int {
	if p.Total == 0 {
		return 0
	}
	start, _ := p.Bounds(p.Total)
	return start + 1
}

func (p Pagination) LastItem() int {
	_, end := p.Bounds(p.Total)
	return end
}

// Paginate returns the rows of the current page. A nil pagination returns every row.
func Paginate(rows []Row, p *Pagination) []Row {
	if p == nil {
		page := make([]Row, len(rows))
		copy(page, rows)
		return page
	}
	start, end := p.Bounds(len(rows))
	page := make([]Row, end-start)
	copy(page, rows[start:end])
	return page
}
