package table

import (
	"context"
	"fmt"
)

// ColumnType describes how a column's values are rendered and compared.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnNumber  ColumnType = "number"
	ColumnDate    ColumnType = "date"
	ColumnImage   ColumnType = "image"
	ColumnBadge   ColumnType = "badge"
	ColumnActions ColumnType = "actions"
	ColumnCustom  ColumnType = "custom"
)

// FilterType describes the matching semantics of a filter.
type FilterType string

const (
	FilterText    FilterType = "text"
	FilterNumber  FilterType = "number"
	FilterSelect  FilterType = "select"
	FilterDate    FilterType = "date"
	FilterBoolean FilterType = "boolean"
)

// ActionKind describes where an action surfaces in the table UI.
type ActionKind string

const (
	ActionButton   ActionKind = "button"
	ActionDropdown ActionKind = "dropdown"
	ActionBulk     ActionKind = "bulk"
)

// SortOrder is the direction of a column sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Column declares one table column. Accessor defaults to a field lookup under
// the column ID when nil.
type Column struct {
	ID       string
	Title    string
	Type     ColumnType
	Accessor Accessor
	Render   func(Row) string
	Sortable bool
	Align    string
	Width    string
	Icon     string
}

// FilterOption is one selectable value for a select filter.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Filter declares one filter control. Its ID may overlap a column ID; the two
// are looked up independently.
type Filter struct {
	ID       string
	Label    string
	Type     FilterType
	Accessor Accessor
	Options  []FilterOption
}

// ActionFunc is the callback invoked when an action fires. Row is non-nil for
// single-row actions; selected carries the materialized selection for bulk
// actions.
type ActionFunc func(ctx context.Context, row *Row, selected []Row) error

// Action declares a single-row or bulk operation.
type Action struct {
	ID                string
	Label             string
	Kind              ActionKind
	Icon              string
	Handler           ActionFunc
	Visible           func(Row) bool
	Disabled          func(Row) bool
	RequiresSelection bool
}

// PaginationOptions toggles pagination.
type PaginationOptions struct {
	Enabled bool
	PerPage int
}

// DefaultSort is the initial sort applied when a config is attached.
type DefaultSort struct {
	Column string
	Order  SortOrder
}

// SortingOptions toggles column sorting.
type SortingOptions struct {
	Enabled bool
	Default *DefaultSort
}

// SearchOptions toggles free-text search across the given accessors.
type SearchOptions struct {
	Enabled     bool
	Placeholder string
	Fields      []Accessor
}

// AuditOptions toggles the in-memory audit trail of dispatched actions.
type AuditOptions struct {
	Enabled bool
}

// ExportOptions toggles data export.
type ExportOptions struct {
	Enabled  bool
	Filename string
}

// DefaultPerPage is used when pagination is enabled without a page size.
const DefaultPerPage = 10

// Config is the declarative description of a table: columns, filters, actions
// and feature toggles. It carries no behavior beyond validation. The ID stays
// stable for the lifetime of a table instance even when columns are swapped at
// runtime.
type Config struct {
	ID          string
	Title       string
	Source      string
	IDField     string
	Columns     []Column
	Filters     []Filter
	Actions     []Action
	BulkActions []Action
	Pagination  PaginationOptions
	Sorting     SortingOptions
	Search      SearchOptions
	Audit       AuditOptions
	Export      ExportOptions
}

// RowID returns the stable identifier of a row as a string. The identifier
// field defaults to "id" when IDField is unset.
func (c Config) RowID(row Row) string {
	field := c.IDField
	if field == "" {
		field = "id"
	}
	v, ok := row[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (c Config) column(id string) (Column, bool) {
	for _, col := range c.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

func (c Config) filter(id string) (Filter, bool) {
	for _, f := range c.Filters {
		if f.ID == id {
			return f, true
		}
	}
	return Filter{}, false
}

func (c Config) action(id string) (Action, bool) {
	for _, a := range c.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

func (c Config) bulkAction(id string) (Action, bool) {
	for _, a := range c.BulkActions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Validate checks structural invariants: column, filter and action IDs must
// each be unique within their list. Unknown icon names are reported as
// warnings rather than errors so a partially specified config still renders,
// just without the icon.
func (c Config) Validate() ([]string, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("table: config requires an id")
	}

	var warnings []string

	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if col.ID == "" {
			return warnings, fmt.Errorf("table %s: column with empty id", c.ID)
		}
		if seen[col.ID] {
			return warnings, fmt.Errorf("table %s: duplicate column id %q", c.ID, col.ID)
		}
		seen[col.ID] = true
		if col.Icon != "" && !KnownIcon(col.Icon) {
			warnings = append(warnings, fmt.Sprintf("column %s: unknown icon %q", col.ID, col.Icon))
		}
	}

	seen = make(map[string]bool, len(c.Filters))
	for _, f := range c.Filters {
		if f.ID == "" {
			return warnings, fmt.Errorf("table %s: filter with empty id", c.ID)
		}
		if seen[f.ID] {
			return warnings, fmt.Errorf("table %s: duplicate filter id %q", c.ID, f.ID)
		}
		seen[f.ID] = true
		if f.Type == FilterSelect && len(f.Options) == 0 {
			warnings = append(warnings, fmt.Sprintf("filter %s: select filter without options", f.ID))
		}
	}

	seen = make(map[string]bool, len(c.Actions)+len(c.BulkActions))
	for _, a := range append(append([]Action{}, c.Actions...), c.BulkActions...) {
		if a.ID == "" {
			return warnings, fmt.Errorf("table %s: action with empty id", c.ID)
		}
		if seen[a.ID] {
			return warnings, fmt.Errorf("table %s: duplicate action id %q", c.ID, a.ID)
		}
		seen[a.ID] = true
		if a.Handler == nil {
			warnings = append(warnings, fmt.Sprintf("action %s: no handler attached", a.ID))
		}
		if a.Icon != "" && !KnownIcon(a.Icon) {
			warnings = append(warnings, fmt.Sprintf("action %s: unknown icon %q", a.ID, a.Icon))
		}
	}

	return warnings, nil
}
