package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// View is the derived, read-only projection of a table state: the filtered
// row set, the current page slice and pagination metadata. It is recomputed
// from scratch on every call, never mutated incrementally.
type View struct {
	Filtered   []Row
	Page       []Row
	Total      int
	TotalPages int
	PageNumber int
	PerPage    int
}

// Compute derives a View from a state and its configuration. The stages run
// in a fixed order: search, filters, sort, paginate.
func Compute(cfg Config, st State) View {
	filtered := applyFilters(cfg, st.Rows, st.SearchTerm, st.FilterValues)
	sorted := applySort(cfg, filtered, st.SortBy, st.SortOrder)

	perPage := st.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := st.Page
	if page <= 0 {
		page = 1
	}

	view := View{
		Filtered:   sorted,
		Total:      len(sorted),
		PageNumber: page,
		PerPage:    perPage,
		TotalPages: 1,
	}

	if !cfg.Pagination.Enabled {
		view.Page = sorted
		return view
	}

	view.TotalPages = (len(sorted) + perPage - 1) / perPage
	if view.TotalPages < 1 {
		view.TotalPages = 1
	}

	// No clamping: a page past the end yields an empty slice.
	start := (page - 1) * perPage
	if start >= len(sorted) {
		view.Page = []Row{}
		return view
	}
	end := start + perPage
	if end > len(sorted) {
		end = len(sorted)
	}
	view.Page = sorted[start:end]
	return view
}

func applyFilters(cfg Config, rows []Row, searchTerm string, filterValues map[string]any) []Row {
	out := rows

	if cfg.Search.Enabled && strings.TrimSpace(searchTerm) != "" {
		term := strings.ToLower(searchTerm)
		matched := make([]Row, 0, len(out))
		for _, row := range out {
			for _, acc := range cfg.Search.Fields {
				if strings.Contains(strings.ToLower(toString(acc.Value(row))), term) {
					matched = append(matched, row)
					break
				}
			}
		}
		out = matched
	}

	for id, value := range filterValues {
		if value == nil || value == "" {
			continue
		}
		spec, ok := cfg.filter(id)
		if !ok {
			// Values without a matching filter spec are ignored.
			continue
		}
		acc := accessorOr(spec.Accessor, spec.ID)
		matched := make([]Row, 0, len(out))
		for _, row := range out {
			if matchFilter(spec.Type, acc.Value(row), value) {
				matched = append(matched, row)
			}
		}
		out = matched
	}

	return out
}

func matchFilter(kind FilterType, rowValue, filterValue any) bool {
	switch kind {
	case FilterNumber:
		rv, ok := toFloat(rowValue)
		if !ok {
			return false
		}
		fv, ok := toFloat(filterValue)
		if !ok {
			return false
		}
		// Inclusive lower bound, not equality.
		return rv >= fv
	case FilterSelect:
		return toString(rowValue) == toString(filterValue)
	case FilterBoolean:
		return toBool(rowValue) == toBool(filterValue)
	case FilterDate:
		rt, ok := toTime(rowValue)
		if !ok {
			return false
		}
		ft, ok := toTime(filterValue)
		if !ok {
			return false
		}
		return !rt.Before(ft)
	default:
		return strings.Contains(
			strings.ToLower(toString(rowValue)),
			strings.ToLower(toString(filterValue)),
		)
	}
}

func applySort(cfg Config, rows []Row, sortBy string, order SortOrder) []Row {
	if !cfg.Sorting.Enabled || sortBy == "" {
		return rows
	}
	col, ok := cfg.column(sortBy)
	if !ok {
		return rows
	}
	acc := accessorOr(col.Accessor, col.ID)

	out := append([]Row(nil), rows...)
	desc := order == SortDesc
	// SliceStable keeps equal keys in their pre-sort relative order.
	sort.SliceStable(out, func(i, j int) bool {
		less := compareValues(col.Type, acc.Value(out[i]), acc.Value(out[j]))
		if desc {
			return less > 0
		}
		return less < 0
	})
	return out
}

func compareValues(kind ColumnType, a, b any) int {
	switch kind {
	case ColumnNumber:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if aok && bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	case ColumnDate:
		at, aok := toTime(a)
		bt, bok := toTime(b)
		if aok && bok {
			am, bm := at.UnixMilli(), bt.UnixMilli()
			switch {
			case am < bm:
				return -1
			case am > bm:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(toString(a), toString(b))
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case int64:
		return time.UnixMilli(t), true
	case float64:
		return time.UnixMilli(int64(t)), true
	default:
		return time.Time{}, false
	}
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	default:
		return v != nil
	}
}
