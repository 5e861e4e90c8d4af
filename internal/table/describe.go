package table

// ConfigDescriptor is the JSON-serializable description of a table that the
// SPA consumes to render columns, filter controls and action buttons.
// Callbacks and accessors stay server-side; only declarative fields cross the
// wire.
type ConfigDescriptor struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Source  string             `json:"source,omitempty"`
	Columns []ColumnDescriptor `json:"columns"`
	Filters []FilterDescriptor `json:"filters,omitempty"`
	Actions []ActionDescriptor `json:"actions,omitempty"`
	Bulk    []ActionDescriptor `json:"bulk_actions,omitempty"`

	Pagination bool   `json:"pagination"`
	PerPage    int    `json:"per_page,omitempty"`
	Sorting    bool   `json:"sorting"`
	Search     bool   `json:"search"`
	SearchHint string `json:"search_hint,omitempty"`
	Export     bool   `json:"export"`
}

// ColumnDescriptor describes one column for the SPA.
type ColumnDescriptor struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Type     ColumnType `json:"type"`
	Sortable bool       `json:"sortable,omitempty"`
	Align    string     `json:"align,omitempty"`
	Width    string     `json:"width,omitempty"`
	Icon     string     `json:"icon,omitempty"`
}

// FilterDescriptor describes one filter control for the SPA.
type FilterDescriptor struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Type    FilterType     `json:"type"`
	Options []FilterOption `json:"options,omitempty"`
}

// ActionDescriptor describes one action for the SPA.
type ActionDescriptor struct {
	ID                string     `json:"id"`
	Label             string     `json:"label"`
	Kind              ActionKind `json:"kind"`
	Icon              string     `json:"icon,omitempty"`
	RequiresSelection bool       `json:"requires_selection,omitempty"`
}

// Describe projects the config into its wire form.
func (c Config) Describe() ConfigDescriptor {
	d := ConfigDescriptor{
		ID:         c.ID,
		Title:      c.Title,
		Source:     c.Source,
		Pagination: c.Pagination.Enabled,
		PerPage:    c.Pagination.PerPage,
		Sorting:    c.Sorting.Enabled,
		Search:     c.Search.Enabled,
		SearchHint: c.Search.Placeholder,
		Export:     c.Export.Enabled,
	}
	for _, col := range c.Columns {
		d.Columns = append(d.Columns, ColumnDescriptor{
			ID:       col.ID,
			Title:    col.Title,
			Type:     col.Type,
			Sortable: col.Sortable,
			Align:    col.Align,
			Width:    col.Width,
			Icon:     IconClass(col.Icon),
		})
	}
	for _, f := range c.Filters {
		d.Filters = append(d.Filters, FilterDescriptor{
			ID:      f.ID,
			Label:   f.Label,
			Type:    f.Type,
			Options: f.Options,
		})
	}
	for _, a := range c.Actions {
		d.Actions = append(d.Actions, describeAction(a))
	}
	for _, a := range c.BulkActions {
		d.Bulk = append(d.Bulk, describeAction(a))
	}
	return d
}

func describeAction(a Action) ActionDescriptor {
	return ActionDescriptor{
		ID:                a.ID,
		Label:             a.Label,
		Kind:              a.Kind,
		Icon:              IconClass(a.Icon),
		RequiresSelection: a.RequiresSelection,
	}
}
