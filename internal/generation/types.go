// Package generation talks to the story, image and narration providers.
package generation

import (
	"context"
	"encoding/json"
	"strings"
)

// StoryRequest describes the story to outline.
type StoryRequest struct {
	CharacterName   string
	CharacterFriend string
	Setting         string
	Moral           string
	SceneCount      int
}

// Story is a validated outline returned by the story model.
type Story struct {
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Scenes  []Scene `json:"scenes"`
}

// Scene is one step of a story outline.
type Scene struct {
	SceneNumber int      `json:"scene_number"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	ImagePrompt string   `json:"image_prompt"`
	KeyEmotions []string `json:"key_emotions,omitempty"`
	Dialogue    Dialogue `json:"dialogue,omitempty"`
}

// Dialogue accepts either a single string or a list of lines.
type Dialogue string

func (d *Dialogue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = Dialogue(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*d = Dialogue(strings.Join(lines, "\n"))
	return nil
}

// CharacterConsistency pins a character's look across scenes.
type CharacterConsistency struct {
	Appearance string `json:"appearance,omitempty"`
	Clothing   string `json:"clothing,omitempty"`
}

// ImageRequest describes one illustration.
type ImageRequest struct {
	Prompt      string
	Style       string
	Consistency *CharacterConsistency
}

// VoiceSettings overrides narration defaults. Nil fields keep the default.
type VoiceSettings struct {
	VoiceID         string   `json:"voice_id,omitempty"`
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarity_boost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
}

// StoryGenerator produces story outlines.
type StoryGenerator interface {
	GenerateStory(ctx context.Context, req StoryRequest) (*Story, error)
}

// ImageGenerator produces raster images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)
}

// NarrationGenerator produces spoken audio.
type NarrationGenerator interface {
	GenerateNarration(ctx context.Context, text string, settings *VoiceSettings) ([]byte, error)
}

// Provider is a configured upstream service.
type Provider interface {
	Name() string
	Configured() bool
}

// ConfiguredProviders reports which providers have credentials.
func ConfiguredProviders(providers ...Provider) map[string]bool {
	out := make(map[string]bool, len(providers))
	for _, p := range providers {
		out[p.Name()] = p.Configured()
	}
	return out
}
