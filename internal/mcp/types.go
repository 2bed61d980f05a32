package mcp

import (
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/generation"
)

type CreateProjectParams struct {
	Name     string         `json:"name" jsonschema:"project display name"`
	Type     string         `json:"type" jsonschema:"project type: story, educational, comic or ecommerce"`
	Settings map[string]any `json:"settings,omitempty" jsonschema:"rendering settings such as author, book_type, image_width, center_images, cover_style, cover_image"`
}

type ListProjectsParams struct {
	Type string `json:"type,omitempty" jsonschema:"only list projects of this type"`
}

type ProjectIDParams struct {
	ID string `json:"id" jsonschema:"project ID"`
}

type UpdateProjectParams struct {
	ID       string          `json:"id" jsonschema:"project ID"`
	Name     *string         `json:"name,omitempty" jsonschema:"new name"`
	Type     *string         `json:"type,omitempty" jsonschema:"new type"`
	Status   *string         `json:"status,omitempty" jsonschema:"active or deleted"`
	Settings *map[string]any `json:"settings,omitempty" jsonschema:"replacement settings"`
}

type AddContentParams struct {
	ProjectID  string         `json:"project_id" jsonschema:"owning project ID"`
	Type       string         `json:"type" jsonschema:"text, image or audio"`
	Text       string         `json:"content_text,omitempty" jsonschema:"text body, or the transcript of an audio item"`
	ImagePath  string         `json:"image_path,omitempty" jsonschema:"path of the image file"`
	AudioPath  string         `json:"audio_path,omitempty" jsonschema:"path of the audio file"`
	OrderIndex int            `json:"order_index,omitempty" jsonschema:"position; items sharing order_index / 10 form one scene"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"free-form metadata; caption is used for image captions"`
}

type ListContentParams struct {
	ProjectID string `json:"project_id" jsonschema:"project ID"`
}

type ContentIDParams struct {
	ID string `json:"id" jsonschema:"content item ID"`
}

type UpdateContentParams struct {
	ID         string          `json:"id" jsonschema:"content item ID"`
	Text       *string         `json:"content_text,omitempty" jsonschema:"new text"`
	ImagePath  *string         `json:"image_path,omitempty" jsonschema:"new image path"`
	AudioPath  *string         `json:"audio_path,omitempty" jsonschema:"new audio path"`
	OrderIndex *int            `json:"order_index,omitempty" jsonschema:"new position"`
	Metadata   *map[string]any `json:"metadata,omitempty" jsonschema:"replacement metadata"`
}

type ListTemplatesParams struct {
	Type string `json:"type,omitempty" jsonschema:"only list templates of this type"`
}

type TemplateIDParams struct {
	ID string `json:"id" jsonschema:"template ID"`
}

type CreateBookParams struct {
	Title           string                           `json:"title" jsonschema:"book title"`
	Type            string                           `json:"type,omitempty" jsonschema:"story (default), educational or comic"`
	CharacterName   string                           `json:"character_name" jsonschema:"main character"`
	CharacterFriend string                           `json:"character_friend,omitempty" jsonschema:"companion character"`
	Setting         string                           `json:"setting,omitempty" jsonschema:"where the story takes place"`
	Moral           string                           `json:"moral,omitempty" jsonschema:"lesson of the story"`
	ArtStyle        string                           `json:"art_style,omitempty" jsonschema:"illustration style, see the styles resource"`
	GenerateAudio   *bool                            `json:"generate_audio,omitempty" jsonschema:"narrate every scene"`
	VoiceID         string                           `json:"voice_id,omitempty" jsonschema:"narration voice"`
	Consistency     *generation.CharacterConsistency `json:"character_consistency,omitempty" jsonschema:"appearance and clothing kept across scenes"`
	Settings        map[string]any                   `json:"settings,omitempty" jsonschema:"rendering settings stored on the project"`
}

type GenerateImageParams struct {
	Prompt string `json:"prompt" jsonschema:"what to draw"`
	Style  string `json:"style,omitempty" jsonschema:"illustration style"`
}

type RenderParams struct {
	ProjectID    string         `json:"project_id" jsonschema:"project ID"`
	TemplateID   string         `json:"template_id,omitempty" jsonschema:"template to use; defaults to the project type's template"`
	Settings     map[string]any `json:"settings,omitempty" jsonschema:"settings overriding the project's for this render"`
	CompileTwice *bool          `json:"compile_twice,omitempty" jsonschema:"run a second pass for cross-references"`
}

type AudiobookParams struct {
	ProjectID string `json:"project_id" jsonschema:"project ID"`
	Name      string `json:"name,omitempty" jsonschema:"output file stem; defaults to project_{id}"`
}

type EstimateParams struct {
	Scenes        *int  `json:"scenes,omitempty" jsonschema:"number of scenes (default 10)"`
	IncludeAudio  *bool `json:"include_audio,omitempty" jsonschema:"include narration (default true)"`
	IncludeImages *bool `json:"include_images,omitempty" jsonschema:"include illustrations (default true)"`
}

type NoParams struct{}

type ProjectResponse struct {
	Project *project.Project `json:"project"`
}

type ListProjectsResponse struct {
	Projects []project.Project `json:"projects"`
}

type ContentResponse struct {
	Content *content.Item `json:"content"`
}

type ListContentResponse struct {
	Items []content.Item `json:"items"`
}

type ListTemplatesResponse struct {
	Templates []template.Template `json:"templates"`
}

type TemplateResponse struct {
	Template *template.Template `json:"template"`
}

type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type DocumentResponse struct {
	ProjectID  string `json:"project_id"`
	TemplateID string `json:"template_id,omitempty"`
	Path       string `json:"path"`
}
