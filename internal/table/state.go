package table

import (
	"log/slog"
	"sync"
	"time"
)

// AuditEntry records one dispatched action in the in-memory trail.
type AuditEntry struct {
	Action string    `json:"action"`
	Target string    `json:"target"`
	At     time.Time `json:"at"`
}

// State is the mutable table state owned exclusively by a Store. Callers only
// ever see snapshots; mutating a snapshot has no effect on the store.
type State struct {
	Rows         []Row
	Loading      bool
	Err          string
	SearchTerm   string
	FilterValues map[string]any
	SortBy       string
	SortOrder    SortOrder
	Page         int
	PerPage      int
	Selected     map[string]bool
	Audit        []AuditEntry
}

// Store owns a table's state and applies mutations one at a time. Every
// mutation replaces the affected parts wholesale, so concurrent readers see
// either the old state or the new one, never a partial update.
type Store struct {
	mu     sync.RWMutex
	cfg    Config
	state  State
	logger *slog.Logger
}

// NewStore attaches a configuration and returns a store with default state.
func NewStore(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{logger: logger}
	s.state = State{
		FilterValues: map[string]any{},
		Selected:     map[string]bool{},
		Page:         1,
	}
	s.applyConfig(cfg)
	return s
}

// Config returns the active configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig replaces the active configuration, re-initializing the default
// sort and page size. Row data and selection are left untouched.
func (s *Store) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyConfig(cfg)
}

func (s *Store) applyConfig(cfg Config) {
	s.cfg = cfg
	if cfg.Sorting.Default != nil {
		s.state.SortBy = cfg.Sorting.Default.Column
		s.state.SortOrder = cfg.Sorting.Default.Order
	} else {
		s.state.SortBy = ""
		s.state.SortOrder = SortAsc
	}
	if cfg.Pagination.PerPage > 0 {
		s.state.PerPage = cfg.Pagination.PerPage
	} else {
		s.state.PerPage = DefaultPerPage
	}
}

// SetData replaces the raw row collection. Page, search and filters are kept
// as-is; selected ids that no longer resolve to a row are pruned so a bulk
// action can never target a row that was dropped by a refresh.
func (s *Store) SetData(rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Rows = rows
	if len(s.state.Selected) == 0 {
		return
	}
	present := make(map[string]bool, len(rows))
	for _, row := range rows {
		if id := s.cfg.RowID(row); id != "" {
			present[id] = true
		}
	}
	selected := make(map[string]bool, len(s.state.Selected))
	for id := range s.state.Selected {
		if present[id] {
			selected[id] = true
		}
	}
	s.state.Selected = selected
}

// SetLoading flips the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
}

// SetError records a host-surfaced error message, or clears it when empty.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = msg
}

// AddRow appends a row to the raw collection.
func (s *Store) AddRow(row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Rows = append(s.state.Rows, row)
}

// UpdateRow merges the given fields into the row with the given id. Unknown
// ids are a no-op.
func (s *Store) UpdateRow(id string, fields Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.state.Rows {
		if s.cfg.RowID(row) != id {
			continue
		}
		merged := make(Row, len(row)+len(fields))
		for k, v := range row {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		s.state.Rows[i] = merged
		return
	}
}

// DeleteRow removes the row with the given id and drops the id from the
// selection if present.
func (s *Store) DeleteRow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]Row, 0, len(s.state.Rows))
	for _, row := range s.state.Rows {
		if s.cfg.RowID(row) == id {
			continue
		}
		rows = append(rows, row)
	}
	s.state.Rows = rows
	if s.state.Selected[id] {
		s.state.Selected = cloneSelection(s.state.Selected, id)
	}
}

// SetSearchTerm sets the search term and resets to page 1.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchTerm = term
	s.state.Page = 1
}

// SetFilter sets one filter value, or clears it when the value is nil or an
// empty string. The page resets to 1 either way.
func (s *Store) SetFilter(filterID string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[string]any, len(s.state.FilterValues)+1)
	for k, v := range s.state.FilterValues {
		values[k] = v
	}
	if value == nil || value == "" {
		delete(values, filterID)
	} else {
		values[filterID] = value
	}
	s.state.FilterValues = values
	s.state.Page = 1
}

// ClearFilters resets the search term and all filter values and returns to
// page 1. Calling it twice yields the same state as calling it once.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchTerm = ""
	s.state.FilterValues = map[string]any{}
	s.state.Page = 1
}

// SetSorting sets the sort column and direction and resets to page 1.
func (s *Store) SetSorting(columnID string, order SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SortBy = columnID
	s.state.SortOrder = order
	s.state.Page = 1
}

// SetPagination sets the current page and, when perPage is positive, the page
// size. The store does not clamp: a page beyond the end simply computes an
// empty slice.
func (s *Store) SetPagination(page, perPage int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page > 0 {
		s.state.Page = page
	}
	if perPage > 0 {
		s.state.PerPage = perPage
	}
}

// SelectRow adds a row id to the selection.
func (s *Store) SelectRow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Selected[id] {
		return
	}
	s.state.Selected = cloneSelection(s.state.Selected, "")
	s.state.Selected[id] = true
}

// DeselectRow removes a row id from the selection.
func (s *Store) DeselectRow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Selected[id] {
		return
	}
	s.state.Selected = cloneSelection(s.state.Selected, id)
}

// ToggleRow flips a row id's selection state.
func (s *Store) ToggleRow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Selected[id] {
		s.state.Selected = cloneSelection(s.state.Selected, id)
		return
	}
	s.state.Selected = cloneSelection(s.state.Selected, "")
	s.state.Selected[id] = true
}

// SelectAll selects every row in the full raw collection, including rows
// hidden by the active filters. Use SelectVisible to select only the
// filtered view.
func (s *Store) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := make(map[string]bool, len(s.state.Rows))
	for _, row := range s.state.Rows {
		if id := s.cfg.RowID(row); id != "" {
			selected[id] = true
		}
	}
	s.state.Selected = selected
}

// SelectVisible selects exactly the rows that survive the active search and
// filters.
func (s *Store) SelectVisible() {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := applyFilters(s.cfg, s.state.Rows, s.state.SearchTerm, s.state.FilterValues)
	selected := make(map[string]bool, len(filtered))
	for _, row := range filtered {
		if id := s.cfg.RowID(row); id != "" {
			selected[id] = true
		}
	}
	s.state.Selected = selected
}

// DeselectAll clears the selection.
func (s *Store) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = map[string]bool{}
}

// SelectedRows materializes the selection as the subset of the raw collection
// whose ids are selected, preserving the raw data's relative order.
func (s *Store) SelectedRows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedRowsLocked()
}

func (s *Store) selectedRowsLocked() []Row {
	if len(s.state.Selected) == 0 {
		return nil
	}
	rows := make([]Row, 0, len(s.state.Selected))
	for _, row := range s.state.Rows {
		if s.state.Selected[s.cfg.RowID(row)] {
			rows = append(rows, row)
		}
	}
	return rows
}

// Snapshot returns a copy of the current state. The row maps themselves are
// shared; views must not mutate them.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.state
	snap.Rows = append([]Row(nil), s.state.Rows...)
	snap.FilterValues = make(map[string]any, len(s.state.FilterValues))
	for k, v := range s.state.FilterValues {
		snap.FilterValues[k] = v
	}
	snap.Selected = make(map[string]bool, len(s.state.Selected))
	for k := range s.state.Selected {
		snap.Selected[k] = true
	}
	snap.Audit = append([]AuditEntry(nil), s.state.Audit...)
	return snap
}

// View computes the filtered, sorted, paginated view of the current state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Compute(s.cfg, s.state)
}

func (s *Store) appendAudit(entry AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Audit = append(s.state.Audit, entry)
}

// AuditTrail returns a copy of the audit log in append order.
func (s *Store) AuditTrail() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuditEntry(nil), s.state.Audit...)
}

// cloneSelection copies a selection map, omitting the given id. Pass an empty
// id to copy everything.
func cloneSelection(src map[string]bool, omit string) map[string]bool {
	dst := make(map[string]bool, len(src))
	for id := range src {
		if id == omit {
			continue
		}
		dst[id] = true
	}
	return dst
}
