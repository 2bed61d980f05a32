package book

import (
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/generation"
)

// CreateBookRequest describes a book to generate.
type CreateBookRequest struct {
	Title           string
	Type            string
	CharacterName   string
	CharacterFriend string
	Setting         string
	Moral           string
	ArtStyle        string
	// GenerateAudio overrides the configured default when set.
	GenerateAudio *bool
	VoiceID       string
	Consistency   *generation.CharacterConsistency
	// Settings are stored on the project alongside the generation inputs.
	Settings project.Settings
}

// SceneResult reports what was persisted for one scene. Image and audio
// failures are recorded here and never abort the book.
type SceneResult struct {
	Index         int    `json:"index"`
	Title         string `json:"title"`
	TextContentID string `json:"text_content_id,omitempty"`
	ImagePath     string `json:"image_path,omitempty"`
	AudioPath     string `json:"audio_path,omitempty"`
	TextError     string `json:"text_error,omitempty"`
	ImageError    string `json:"image_error,omitempty"`
	AudioError    string `json:"audio_error,omitempty"`
}

// CreateBookResult is the outcome of CreateBook.
type CreateBookResult struct {
	Project *project.Project  `json:"project"`
	Story   *generation.Story `json:"story"`
	Scenes  []SceneResult     `json:"scenes"`
}

// Failures counts scenes with at least one failed step.
func (r *CreateBookResult) Failures() int {
	n := 0
	for _, s := range r.Scenes {
		if s.TextError != "" || s.ImageError != "" || s.AudioError != "" {
			n++
		}
	}
	return n
}

// RenderOptions adjust a single render.
type RenderOptions struct {
	// TemplateID selects a template. Empty picks one by project type.
	TemplateID string
	// Settings override the project's stored settings for this render.
	Settings     project.Settings
	CompileTwice *bool
}

// RenderResult describes a compiled document.
type RenderResult struct {
	ProjectID  string `json:"project_id"`
	TemplateID string `json:"template_id"`
	Path       string `json:"path"`
}

// Source is filled LaTeX that has not been compiled.
type Source struct {
	ProjectID  string `json:"project_id"`
	TemplateID string `json:"template_id"`
	LaTeX      string `json:"latex"`
}

// Estimate is the expected duration of a book generation.
type Estimate struct {
	Seconds   int            `json:"seconds"`
	Minutes   float64        `json:"minutes"`
	Breakdown map[string]int `json:"breakdown"`
}

// ImageResult is a standalone generated image and the project holding it.
type ImageResult struct {
	ProjectID string `json:"project_id"`
	ContentID string `json:"content_id"`
	ImagePath string `json:"image_path"`
}

// SystemStatus reports external dependencies.
type SystemStatus struct {
	LaTeXAvailable bool            `json:"latex_available"`
	Providers      map[string]bool `json:"providers"`
}
