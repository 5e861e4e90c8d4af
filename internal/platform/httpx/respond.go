// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/palengke-app/palengke/internal/table"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ListEnvelope is the JSON shape of a table-driven list endpoint.
type ListEnvelope struct {
	Data       []table.Row `json:"data"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// TableView sends the computed view of a table store as a list envelope.
func TableView(w http.ResponseWriter, view table.View) {
	page := view.Page
	if page == nil {
		page = []table.Row{}
	}
	JSON(w, http.StatusOK, ListEnvelope{
		Data:       page,
		Total:      view.Total,
		TotalPages: view.TotalPages,
		Page:       view.PageNumber,
		PerPage:    view.PerPage,
	})
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
