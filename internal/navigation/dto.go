package navigation

// CreateItemRequest registers a sidebar entry.
type CreateItemRequest struct {
	Label    string `json:"label" validate:"required,max=64"`
	Icon     string `json:"icon" validate:"omitempty,max=32"`
	Path     string `json:"path" validate:"required,startswith=/,max=255"`
	Section  string `json:"section" validate:"required,max=64"`
	Position int    `json:"position" validate:"gte=0"`
}

// UpdateItemRequest is a partial sidebar-entry update.
type UpdateItemRequest struct {
	Label    *string `json:"label" validate:"omitempty,max=64"`
	Icon     *string `json:"icon" validate:"omitempty,max=32"`
	Path     *string `json:"path" validate:"omitempty,startswith=/,max=255"`
	Section  *string `json:"section" validate:"omitempty,max=64"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
	IsActive *bool   `json:"is_active"`
}
