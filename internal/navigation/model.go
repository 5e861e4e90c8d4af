package navigation

import "time"

// Item is one entry in the admin sidebar registry. Items are grouped into
// sections and ordered by position within their section.
type Item struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Icon      string    `json:"icon"`
	Path      string    `json:"path"`
	Section   string    `json:"section"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Section groups items for the SPA's sidebar rendering.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}
