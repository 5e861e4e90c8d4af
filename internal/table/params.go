package table

import (
	"net/url"
	"strconv"
	"strings"
)

// Params carries the list-view parameters a host passes through from an HTTP
// request: free-text search, per-filter values, sort and pagination.
type Params struct {
	Search  string
	Filters map[string]string
	SortBy  string
	Order   SortOrder
	Page    int
	PerPage int
}

// ParamsFromQuery extracts table parameters from URL query values. Filter
// values are read from keys with a "filter." prefix, so hosts can pass
// arbitrary filter ids without colliding with the reserved keys.
func ParamsFromQuery(values url.Values) Params {
	p := Params{
		Search:  values.Get("search"),
		SortBy:  values.Get("sort_by"),
		Filters: map[string]string{},
	}
	switch values.Get("order") {
	case string(SortDesc):
		p.Order = SortDesc
	default:
		p.Order = SortAsc
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		p.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("per_page")); err == nil && perPage > 0 {
		p.PerPage = perPage
	}
	for key := range values {
		if id, ok := strings.CutPrefix(key, "filter."); ok && id != "" {
			p.Filters[id] = values.Get(key)
		}
	}
	return p
}

// Apply pushes the parameters into the store: search term, filter values,
// sorting and pagination, in that order.
func (s *Store) Apply(p Params) {
	if p.Search != "" {
		s.SetSearchTerm(p.Search)
	}
	for id, value := range p.Filters {
		s.SetFilter(id, value)
	}
	if p.SortBy != "" {
		s.SetSorting(p.SortBy, p.Order)
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	s.SetPagination(page, p.PerPage)
}
