package template

import "time"

// Template is a LaTeX document skeleton with named placeholders, selected
// by project type.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Body        string    `json:"latex_template,omitempty"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}
