package content

import "time"

// Type identifies the kind of generated material an item holds.
type Type string

const (
	TypeText  Type = "text"
	TypeImage Type = "image"
	TypeAudio Type = "audio"
)

// Valid reports whether t is a known content type.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeAudio:
		return true
	}
	return false
}

// Metadata is the free-form key-value bag stored with an item.
type Metadata map[string]any

// Item is one ordered unit of generated material belonging to a project.
//
// Only the fields relevant to Type are populated: text items carry Text,
// image items carry ImagePath, and audio items carry AudioPath plus an
// optional narration transcript in Text.
type Item struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Type       Type      `json:"type"`
	Text       string    `json:"content_text,omitempty"`
	ImagePath  string    `json:"image_path,omitempty"`
	AudioPath  string    `json:"audio_path,omitempty"`
	OrderIndex int       `json:"order_index"`
	Metadata   Metadata  `json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

// Caption returns the caption stored in metadata, if any.
func (i Item) Caption() string {
	c, _ := i.Metadata["caption"].(string)
	return c
}
