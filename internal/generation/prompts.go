package generation

import (
	"fmt"
	"strings"
)

const storyPromptFormat = `Create a sophisticated %d-scene story with these elements:

Main Character: %s
Friend/Companion: %s
Setting: %s
Theme/Moral: %s

Please format your response as a JSON object with this exact structure:
{
    "title": "An engaging and powerful story title",
    "summary": "A brief, compelling summary of the story",
    "scenes": [
        {
            "scene_number": 1,
            "title": "Scene title",
            "text": "The narrative text for this scene, written with engaging and sophisticated language.",
            "image_prompt": "A highly detailed, vivid, and powerful visual description for an advanced AI image generator. The prompt should specify character appearances, intricate setting details, dramatic mood, a specific art style (e.g., photorealistic, digital painting, cinematic), and camera angle. Aim for a prompt that will produce an 8K resolution masterpiece.",
            "key_emotions": ["emotion1", "emotion2"],
            "dialogue": "Any dialogue in this scene"
        }
    ]
}

Guidelines:
- Use rich, evocative language.
- Each scene must powerfully advance the story and its theme.
- Image prompts must be exceptionally detailed and consistent with character descriptions to generate cinematic, high-quality visuals.
- Include vivid sensory details to create an immersive experience.
- Ensure the theme is woven naturally and thoughtfully into the narrative.`

// StoryPrompt renders the outline prompt sent to the story model.
func StoryPrompt(req StoryRequest) string {
	return fmt.Sprintf(storyPromptFormat, req.SceneCount, req.CharacterName, req.CharacterFriend, req.Setting, req.Moral)
}

// DefaultStyle is used for unknown art styles.
const DefaultStyle = "realistic"

var styleGuides = map[string]string{
	"watercolor":   "hyperrealistic watercolor painting, intricate details, vibrant and rich colors, dramatic lighting, masterful brush strokes, professional art",
	"comic":        "gritty comic book art style, cinematic panels, detailed line work by a master artist like Jim Lee, dynamic action poses, atmospheric coloring",
	"realistic":    "hyperrealistic photograph, 8K resolution, shot on a professional DSLR camera with a prime lens, cinematic lighting, ultra-detailed textures, photorealistic",
	"cartoon":      "feature film animation style, 3D render like Pixar or DreamWorks, expressive characters, beautiful lighting and shading, cinematic composition",
	"oil-painting": "masterpiece oil painting in the style of the old masters, rich textures, dramatic chiaroscuro lighting, classical composition, incredible detail",
	"digital-art":  "trending on ArtStation, epic digital painting, concept art, highly detailed, by a world-renowned digital artist, volumetric lighting, matte painting",
}

// Styles lists the art styles with a dedicated guide.
func Styles() []string {
	return []string{"watercolor", "comic", "realistic", "cartoon", "oil-painting", "digital-art"}
}

const qualitySuffix = `. 
**Technical Quality**: Masterpiece, 8K resolution, ultra-high definition, photorealistic, hyper-detailed, sharp focus, professional color grading, Unreal Engine 5 render.
**Artistic Elements**: Cinematic lighting, epic composition, dramatic angle, breathtaking, award-winning photography, professional concept art.
**Negative Prompt**: Avoid blurry, low-quality, cartoonish, simple, amateurish, deformed, disfigured, watermark, signature.`

// ImagePrompt appends character consistency, the style guide and the
// quality requirements to a scene's image prompt.
func ImagePrompt(req ImageRequest) string {
	var b strings.Builder
	b.WriteString(req.Prompt)

	if c := req.Consistency; c != nil {
		var details []string
		if c.Appearance != "" {
			details = append(details, "The character must have these features: "+c.Appearance)
		}
		if c.Clothing != "" {
			details = append(details, "The character must be wearing: "+c.Clothing)
		}
		if len(details) > 0 {
			b.WriteString(". ")
			b.WriteString(strings.Join(details, ". "))
		}
	}

	guide, ok := styleGuides[req.Style]
	if !ok {
		guide = styleGuides[DefaultStyle]
	}
	b.WriteString(". Art Style: ")
	b.WriteString(guide)
	b.WriteString(qualitySuffix)
	return b.String()
}

var enhancements = map[string]string{
	"quality":   "masterpiece, 8K, ultra high definition, intricate details, professional grade, sharp focus",
	"artistic":  "artistically composed, award-winning, stunningly beautiful lighting, aesthetically perfect, emotionally resonant",
	"realistic": "hyperrealistic, photorealistic, Unreal Engine 5 render, lifelike textures, natural lighting, accurate physics",
	"stylized":  "highly stylized digital painting, unique and coherent art style, creative masterpiece, vibrant color theory",
	"dramatic":  "dramatic cinematic lighting, volumetric light, epic and dynamic composition, high emotional impact, intense atmosphere",
}

// EnhancePrompt appends an enhancement phrase to a prompt. Unknown kinds use
// "quality".
func EnhancePrompt(prompt, kind string) string {
	e, ok := enhancements[kind]
	if !ok {
		e = enhancements["quality"]
	}
	return prompt + ", " + e + "."
}
