package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseStory decodes and validates a story outline.
func ParseStory(text string) (*Story, error) {
	var story Story
	if err := json.Unmarshal([]byte(stripFences(text)), &story); err != nil {
		return nil, malformed("story is not valid JSON", err)
	}
	if err := validateStory(&story); err != nil {
		return nil, err
	}
	for i := range story.Scenes {
		if story.Scenes[i].SceneNumber == 0 {
			story.Scenes[i].SceneNumber = i + 1
		}
	}
	return &story, nil
}

func validateStory(story *Story) error {
	if strings.TrimSpace(story.Title) == "" {
		return malformed("story has no title", nil)
	}
	if len(story.Scenes) == 0 {
		return malformed("story has no scenes", nil)
	}
	for i, scene := range story.Scenes {
		switch {
		case strings.TrimSpace(scene.Title) == "":
			return malformed(fmt.Sprintf("scene %d has no title", i+1), nil)
		case strings.TrimSpace(scene.Text) == "":
			return malformed(fmt.Sprintf("scene %d has no text", i+1), nil)
		case strings.TrimSpace(scene.ImagePrompt) == "":
			return malformed(fmt.Sprintf("scene %d has no image prompt", i+1), nil)
		}
	}
	return nil
}
