package table

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	cfg := Config{
		ID: "t",
		Columns: []Column{
			{ID: "name"},
			{ID: "name"},
		},
	}
	_, err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column id")

	cfg = Config{
		ID:      "t",
		Filters: []Filter{{ID: "status"}, {ID: "status"}},
	}
	_, err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate filter id")

	cfg = Config{
		ID:          "t",
		Actions:     []Action{{ID: "view"}},
		BulkActions: []Action{{ID: "view"}},
	}
	_, err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate action id")
}

func TestValidateWarnsOnUnknownIcon(t *testing.T) {
	cfg := Config{
		ID:      "t",
		Columns: []Column{{ID: "status", Icon: "sparkle-unicorn"}},
	}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "sparkle-unicorn")

	cfg.Columns[0].Icon = "eye"
	warnings, err = cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestFilterIDMayOverlapColumnID(t *testing.T) {
	cfg := Config{
		ID:      "t",
		Columns: []Column{{ID: "price", Type: ColumnNumber}},
		Filters: []Filter{{ID: "price", Type: FilterNumber}},
	}
	_, err := cfg.Validate()
	assert.NoError(t, err)
}

func TestRowIDFallsBackToIDField(t *testing.T) {
	cfg := Config{ID: "t"}
	assert.Equal(t, "42", cfg.RowID(Row{"id": 42}))

	cfg.IDField = "sku"
	assert.Equal(t, "ABC-1", cfg.RowID(Row{"sku": "ABC-1", "id": 42}))
	assert.Equal(t, "", cfg.RowID(Row{"other": 1}))
}

func TestDeriveAccessor(t *testing.T) {
	full := Derive(func(r Row) any {
		return toString(r["first"]) + " " + toString(r["last"])
	})
	assert.Equal(t, "Ana Cruz", full.Value(Row{"first": "Ana", "last": "Cruz"}))
	assert.Nil(t, Field("missing").Value(Row{}))
}

func TestParamsFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("search", "mango")
	values.Set("sort_by", "price")
	values.Set("order", "desc")
	values.Set("page", "3")
	values.Set("per_page", "25")
	values.Set("filter.status", "paid")
	values.Set("filter.price", "100")

	p := ParamsFromQuery(values)
	assert.Equal(t, "mango", p.Search)
	assert.Equal(t, "price", p.SortBy)
	assert.Equal(t, SortDesc, p.Order)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, map[string]string{"status": "paid", "price": "100"}, p.Filters)
}
