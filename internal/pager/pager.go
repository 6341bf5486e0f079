// Package pager sorts, filters and pages a search result set.
package pager

import (
	"fmt"
	"sort"
	"strings"

	"commentarchive/internal/search"
)

// DefaultPageSize is the number of results shown per page.
const DefaultPageSize = 5

// DefaultPrivilegedAuthors lists the authors kept by the special filter.
var DefaultPrivilegedAuthors = []string{"andy", "李宗恩"}

// SortOrder orders results by their sortable time string.
type SortOrder string

const (
	SortDefault    SortOrder = "default"
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// AuthorFilter narrows results by author.
type AuthorFilter string

const (
	FilterAll     AuthorFilter = "all"
	FilterSpecial AuthorFilter = "special"
)

// ParseSortOrder accepts "", default, asc/ascending and desc/descending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SortDefault, nil
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// ParseAuthorFilter accepts "", all and special.
func ParseAuthorFilter(s string) (AuthorFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "special":
		return FilterSpecial, nil
	default:
		return "", fmt.Errorf("unknown author filter %q", s)
	}
}

// Page is one page of a view.
type Page struct {
	Items      []search.Result `json:"items"`
	Number     int             `json:"page"`
	Size       int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
}

// View is the paged, sorted and filtered projection of one result set.
// Results themselves are never modified.
type View struct {
	results  []search.Result
	pageSize int
	sort     SortOrder
	filter   AuthorFilter
	page     int
	allow    map[string]struct{}

	visible []search.Result
}

// New returns a view on page 1 with default sort and no author filter.
// A nil allow list selects DefaultPrivilegedAuthors.
func New(results []search.Result, pageSize int, allow []string) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if allow == nil {
		allow = DefaultPrivilegedAuthors
	}

	v := &View{
		results:  results,
		pageSize: pageSize,
		sort:     SortDefault,
		filter:   FilterAll,
		page:     1,
		allow:    make(map[string]struct{}, len(allow)),
	}
	for _, a := range allow {
		v.allow[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}

	v.recompute()

	return v
}

// IsPrivileged reports whether author is on the allow list.
func (v *View) IsPrivileged(author string) bool {
	_, ok := v.allow[strings.ToLower(author)]

	return ok
}

func (v *View) Sort() SortOrder      { return v.sort }
func (v *View) Filter() AuthorFilter { return v.filter }
func (v *View) PageSize() int        { return v.pageSize }

// SetSort changes the sort order and re-applies page bounds.
func (v *View) SetSort(o SortOrder) {
	v.sort = o
	v.recompute()
}

// SetFilter changes the author filter and re-applies page bounds.
func (v *View) SetFilter(f AuthorFilter) {
	v.filter = f
	v.recompute()
}

// SetPage moves to page n, clamped to the valid range.
func (v *View) SetPage(n int) {
	v.page = n
	v.clamp()
}

// Next advances one page if possible.
func (v *View) Next() {
	v.SetPage(v.page + 1)
}

// Prev goes back one page if possible.
func (v *View) Prev() {
	v.SetPage(v.page - 1)
}

// TotalPages returns the page count of the visible results.
func (v *View) TotalPages() int {
	return (len(v.visible) + v.pageSize - 1) / v.pageSize
}

// Page returns the current page.
func (v *View) Page() Page {
	start := (v.page - 1) * v.pageSize
	end := min(start+v.pageSize, len(v.visible))

	items := []search.Result{}
	if start < end {
		items = v.visible[start:end]
	}

	return Page{
		Items:      items,
		Number:     v.page,
		Size:       v.pageSize,
		TotalPages: v.TotalPages(),
		Total:      len(v.visible),
	}
}

func (v *View) recompute() {
	visible := make([]search.Result, 0, len(v.results))
	for _, r := range v.results {
		if v.filter == FilterSpecial && !v.IsPrivileged(r.Author) {
			continue
		}
		visible = append(visible, r)
	}

	switch v.sort {
	case SortAscending:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].SortableTime < visible[j].SortableTime
		})
	case SortDescending:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].SortableTime > visible[j].SortableTime
		})
	}

	v.visible = visible
	v.clamp()
}

func (v *View) clamp() {
	total := v.TotalPages()
	if v.page > total {
		v.page = total
	}
	if v.page < 1 {
		v.page = 1
	}
}
