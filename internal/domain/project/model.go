package project

import "time"

// Status is the lifecycle state of a project. Projects are never hard-deleted.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Settings is the free-form key-value bag stored with a project.
// Only the keys read by the assembler and the book service have meaning.
type Settings map[string]any

// String returns the value for key when it is a string.
func (s Settings) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// Bool returns the value for key when it is a boolean.
func (s Settings) Bool(key string) (bool, bool) {
	v, ok := s[key].(bool)
	return v, ok
}

// Merge returns a copy of s with every key of overrides applied on top.
func (s Settings) Merge(overrides Settings) Settings {
	out := make(Settings, len(s)+len(overrides))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Project is a single book generation unit and the owner of ordered content.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Settings  Settings  `json:"settings"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Statistics summarizes store contents. Only active projects are counted.
type Statistics struct {
	ProjectsByType map[string]int `json:"projects_by_type"`
	TotalProjects  int            `json:"total_projects"`
	TotalContent   int            `json:"total_content"`
	ContentByType  map[string]int `json:"content_by_type"`
}
