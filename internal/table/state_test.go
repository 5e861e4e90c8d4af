package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFruitStore(t *testing.T) *Store {
	t.Helper()
	cfg := fruitConfig()
	if _, err := cfg.Validate(); err != nil {
		t.Fatalf("config invalid: %v", err)
	}
	store := NewStore(cfg, nil)
	store.SetData(fruitRows())
	return store
}

func TestClearFiltersIdempotent(t *testing.T) {
	store := newFruitStore(t)
	store.SetSearchTerm("an")
	store.SetFilter("price", 8)
	store.SetPagination(2, 0)

	store.ClearFilters()
	once := store.Snapshot()

	store.ClearFilters()
	twice := store.Snapshot()

	assert.Equal(t, "", once.SearchTerm)
	assert.Empty(t, once.FilterValues)
	assert.Equal(t, 1, once.Page)
	assert.Equal(t, once.SearchTerm, twice.SearchTerm)
	assert.Equal(t, once.FilterValues, twice.FilterValues)
	assert.Equal(t, once.Page, twice.Page)
}

func TestMutationsResetPage(t *testing.T) {
	store := newFruitStore(t)

	store.SetPagination(3, 0)
	store.SetSearchTerm("a")
	assert.Equal(t, 1, store.Snapshot().Page)

	store.SetPagination(3, 0)
	store.SetFilter("price", 8)
	assert.Equal(t, 1, store.Snapshot().Page)

	store.SetPagination(3, 0)
	store.SetSorting("price", SortDesc)
	assert.Equal(t, 1, store.Snapshot().Page)
}

func TestDeleteRowPrunesSelection(t *testing.T) {
	store := newFruitStore(t)
	store.SelectRow("2")
	store.SelectRow("3")

	store.DeleteRow("2")

	snap := store.Snapshot()
	assert.False(t, snap.Selected["2"])
	assert.True(t, snap.Selected["3"])
	assert.Len(t, snap.Rows, 2)
}

func TestSetDataPrunesStaleSelection(t *testing.T) {
	store := newFruitStore(t)
	store.SelectAll()
	require.Len(t, store.Snapshot().Selected, 3)

	store.SetData([]Row{{"id": 1, "name": "Apple", "price": 10}})

	snap := store.Snapshot()
	assert.Equal(t, map[string]bool{"1": true}, snap.Selected)
}

func TestSelectAllVersusSelectVisible(t *testing.T) {
	store := newFruitStore(t)
	store.SetFilter("price", 8)

	store.SelectAll()
	assert.Len(t, store.Snapshot().Selected, 3, "SelectAll covers the full raw collection")

	store.SelectVisible()
	snap := store.Snapshot()
	assert.Equal(t, map[string]bool{"1": true, "3": true}, snap.Selected)
}

func TestToggleRow(t *testing.T) {
	store := newFruitStore(t)
	store.ToggleRow("2")
	assert.True(t, store.Snapshot().Selected["2"])
	store.ToggleRow("2")
	assert.False(t, store.Snapshot().Selected["2"])
}

func TestUpdateRowMergesFields(t *testing.T) {
	store := newFruitStore(t)
	store.UpdateRow("2", Row{"price": 7})

	var banana Row
	for _, row := range store.Snapshot().Rows {
		if store.Config().RowID(row) == "2" {
			banana = row
		}
	}
	require.NotNil(t, banana)
	assert.Equal(t, 7, banana["price"])
	assert.Equal(t, "Banana", banana["name"])
}

func TestSnapshotIsIsolated(t *testing.T) {
	store := newFruitStore(t)
	store.SelectRow("1")

	snap := store.Snapshot()
	snap.Selected["99"] = true
	snap.FilterValues["price"] = 100

	after := store.Snapshot()
	assert.False(t, after.Selected["99"])
	assert.Empty(t, after.FilterValues)
}

func TestSetConfigKeepsDataAndSelection(t *testing.T) {
	store := newFruitStore(t)
	store.SelectRow("1")

	cfg := fruitConfig()
	cfg.Sorting.Default = &DefaultSort{Column: "price", Order: SortDesc}
	cfg.Pagination.PerPage = 25
	store.SetConfig(cfg)

	snap := store.Snapshot()
	assert.Len(t, snap.Rows, 3)
	assert.True(t, snap.Selected["1"])
	assert.Equal(t, "price", snap.SortBy)
	assert.Equal(t, SortDesc, snap.SortOrder)
	assert.Equal(t, 25, snap.PerPage)
}

func TestApplyParams(t *testing.T) {
	store := newFruitStore(t)
	store.Apply(Params{
		Search:  "a",
		Filters: map[string]string{"price": "8"},
		SortBy:  "price",
		Order:   SortDesc,
		Page:    2,
		PerPage: 1,
	})

	snap := store.Snapshot()
	assert.Equal(t, "a", snap.SearchTerm)
	assert.Equal(t, "8", snap.FilterValues["price"])
	assert.Equal(t, "price", snap.SortBy)
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, 1, snap.PerPage)
}
