// Package generationtest provides an in-process stand-in for the generation
// providers.
package generationtest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/rpggio/storyforge/internal/generation"
)

// Fake implements the story, image and narration generators. Zero value
// generates a three-scene story and small PNG illustrations.
type Fake struct {
	mu sync.Mutex

	Story        *generation.Story
	StoryErr     error
	ImageErr     error
	NarrationErr error
	// FailPrompts fails image generation for these prompts only.
	FailPrompts map[string]bool

	StoryCalls     int
	ImageCalls     int
	NarrationCalls int
}

func (f *Fake) GenerateStory(_ context.Context, req generation.StoryRequest) (*generation.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StoryCalls++
	if f.StoryErr != nil {
		return nil, f.StoryErr
	}
	if f.Story != nil {
		return f.Story, nil
	}
	return Story(req.CharacterName, 3), nil
}

func (f *Fake) GenerateImage(_ context.Context, req generation.ImageRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ImageCalls++
	if f.ImageErr != nil {
		return nil, f.ImageErr
	}
	if f.FailPrompts[req.Prompt] {
		return nil, &generation.ProviderError{Provider: "fake", StatusCode: 500, Message: "image failed"}
	}
	return PNG(4, 3), nil
}

func (f *Fake) GenerateNarration(_ context.Context, text string, _ *generation.VoiceSettings) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NarrationCalls++
	if f.NarrationErr != nil {
		return nil, f.NarrationErr
	}
	return []byte("ID3" + text), nil
}

// Story returns a valid outline with n scenes about character.
func Story(character string, n int) *generation.Story {
	story := &generation.Story{
		Title:   character + "'s Adventure",
		Summary: "A short adventure",
	}
	for i := range n {
		story.Scenes = append(story.Scenes, generation.Scene{
			SceneNumber: i + 1,
			Title:       fmt.Sprintf("Part %d", i+1),
			Text:        fmt.Sprintf("%s takes step %d & smiles.", character, i+1),
			ImagePrompt: fmt.Sprintf("%s, scene %d", character, i+1),
		})
	}
	return story
}

// PNG encodes a w by h image.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 200, G: 80, B: 20, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
