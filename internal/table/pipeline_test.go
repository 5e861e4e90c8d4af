package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fruitRows() []Row {
	return []Row{
		{"id": 1, "name": "Apple", "price": 10},
		{"id": 2, "name": "Banana", "price": 5},
		{"id": 3, "name": "Cherry", "price": 20},
	}
}

func fruitConfig() Config {
	return Config{
		ID: "fruits",
		Columns: []Column{
			{ID: "name", Type: ColumnText, Sortable: true},
			{ID: "price", Type: ColumnNumber, Sortable: true},
		},
		Filters: []Filter{
			{ID: "price", Type: FilterNumber},
			{ID: "name", Type: FilterText},
		},
		Pagination: PaginationOptions{Enabled: true, PerPage: 10},
		Sorting:    SortingOptions{Enabled: true},
		Search:     SearchOptions{Enabled: true, Fields: []Accessor{Field("name")}},
	}
}

func rowIDs(cfg Config, rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, cfg.RowID(row))
	}
	return ids
}

func TestNumberFilterInclusiveLowerBound(t *testing.T) {
	cfg := fruitConfig()
	st := State{Rows: fruitRows(), FilterValues: map[string]any{"price": "8"}, Page: 1, PerPage: 10}

	view := Compute(cfg, st)
	assert.Equal(t, []string{"1", "3"}, rowIDs(cfg, view.Filtered))
}

func TestSortThenPaginate(t *testing.T) {
	cfg := fruitConfig()
	st := State{
		Rows:         fruitRows(),
		FilterValues: map[string]any{"price": 8},
		SortBy:       "price",
		SortOrder:    SortAsc,
		Page:         1,
		PerPage:      1,
	}

	view := Compute(cfg, st)
	require.Equal(t, 2, view.TotalPages)
	assert.Equal(t, []string{"1"}, rowIDs(cfg, view.Page))

	st.Page = 2
	view = Compute(cfg, st)
	assert.Equal(t, []string{"3"}, rowIDs(cfg, view.Page))
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	cfg := fruitConfig()
	st := State{Rows: fruitRows(), SearchTerm: "an", Page: 1, PerPage: 10}

	view := Compute(cfg, st)
	require.Len(t, view.Filtered, 1)
	assert.Equal(t, "Banana", view.Filtered[0]["name"])
}

func TestFilterMonotonicity(t *testing.T) {
	cfg := fruitConfig()
	base := State{Rows: fruitRows(), FilterValues: map[string]any{}, Page: 1, PerPage: 10}
	before := Compute(cfg, base)

	narrowed := base
	narrowed.FilterValues = map[string]any{"price": 8, "name": "a"}
	after := Compute(cfg, narrowed)

	beforeIDs := map[string]bool{}
	for _, id := range rowIDs(cfg, before.Filtered) {
		beforeIDs[id] = true
	}
	for _, id := range rowIDs(cfg, after.Filtered) {
		assert.True(t, beforeIDs[id], "row %s appeared after narrowing filters", id)
	}
	assert.LessOrEqual(t, len(after.Filtered), len(before.Filtered))
}

func TestSortOrderAndStability(t *testing.T) {
	cfg := Config{
		ID: "t",
		Columns: []Column{
			{ID: "rank", Type: ColumnNumber, Sortable: true},
		},
		Sorting: SortingOptions{Enabled: true},
	}
	rows := []Row{
		{"id": "a", "rank": 2},
		{"id": "b", "rank": 1},
		{"id": "c", "rank": 2},
		{"id": "d", "rank": 1},
	}
	st := State{Rows: rows, SortBy: "rank", SortOrder: SortAsc, Page: 1, PerPage: 10}

	view := Compute(cfg, st)
	// Equal keys keep their prior relative order.
	assert.Equal(t, []string{"b", "d", "a", "c"}, rowIDs(cfg, view.Filtered))

	st.SortOrder = SortDesc
	view = Compute(cfg, st)
	assert.Equal(t, []string{"a", "c", "b", "d"}, rowIDs(cfg, view.Filtered))
}

func TestDateSortUsesEpochComparison(t *testing.T) {
	cfg := Config{
		ID:      "t",
		Columns: []Column{{ID: "at", Type: ColumnDate, Sortable: true}},
		Sorting: SortingOptions{Enabled: true},
	}
	rows := []Row{
		{"id": 1, "at": time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"id": 2, "at": "2025-12-31"},
		{"id": 3, "at": time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	st := State{Rows: rows, SortBy: "at", SortOrder: SortAsc, Page: 1, PerPage: 10}

	view := Compute(cfg, st)
	assert.Equal(t, []string{"2", "3", "1"}, rowIDs(cfg, view.Filtered))
}

func TestPaginationCoversFilteredSetExactly(t *testing.T) {
	cfg := fruitConfig()
	rows := make([]Row, 0, 23)
	for i := 1; i <= 23; i++ {
		rows = append(rows, Row{"id": i, "name": "item", "price": i})
	}
	st := State{Rows: rows, Page: 1, PerPage: 5}

	first := Compute(cfg, st)
	require.Equal(t, 5, first.TotalPages)

	var reassembled []string
	for page := 1; page <= first.TotalPages; page++ {
		st.Page = page
		view := Compute(cfg, st)
		reassembled = append(reassembled, rowIDs(cfg, view.Page)...)
	}
	assert.Equal(t, rowIDs(cfg, first.Filtered), reassembled)
}

func TestEmptyDataYieldsOnePage(t *testing.T) {
	cfg := fruitConfig()
	view := Compute(cfg, State{Page: 1, PerPage: 10})
	assert.Empty(t, view.Filtered)
	assert.Empty(t, view.Page)
	assert.Equal(t, 1, view.TotalPages)
}

func TestPageBeyondEndIsEmptyNotClamped(t *testing.T) {
	cfg := fruitConfig()
	st := State{Rows: fruitRows(), Page: 9, PerPage: 10}
	view := Compute(cfg, st)
	assert.Empty(t, view.Page)
	assert.Equal(t, 9, view.PageNumber)
	assert.Equal(t, 1, view.TotalPages)
}

func TestUnknownFilterIDIgnored(t *testing.T) {
	cfg := fruitConfig()
	st := State{Rows: fruitRows(), FilterValues: map[string]any{"ghost": "x"}, Page: 1, PerPage: 10}
	view := Compute(cfg, st)
	assert.Len(t, view.Filtered, 3)
}

func TestBooleanAndSelectFilters(t *testing.T) {
	cfg := Config{
		ID: "t",
		Filters: []Filter{
			{ID: "active", Type: FilterBoolean},
			{ID: "status", Type: FilterSelect, Options: []FilterOption{{Value: "paid"}, {Value: "pending"}}},
		},
	}
	rows := []Row{
		{"id": 1, "active": true, "status": "paid"},
		{"id": 2, "active": false, "status": "paid"},
		{"id": 3, "active": true, "status": "pending"},
	}

	view := Compute(cfg, State{Rows: rows, FilterValues: map[string]any{"active": "true"}, Page: 1, PerPage: 10})
	assert.Equal(t, []string{"1", "3"}, rowIDs(cfg, view.Filtered))

	view = Compute(cfg, State{Rows: rows, FilterValues: map[string]any{"status": "paid"}, Page: 1, PerPage: 10})
	assert.Equal(t, []string{"1", "2"}, rowIDs(cfg, view.Filtered))
}

func TestMissingAccessorFieldDoesNotPanic(t *testing.T) {
	cfg := fruitConfig()
	rows := append(fruitRows(), Row{"id": 4})
	st := State{Rows: rows, SortBy: "price", SortOrder: SortAsc, Page: 1, PerPage: 10}
	view := Compute(cfg, st)
	assert.Len(t, view.Filtered, 4)
}
