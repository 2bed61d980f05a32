package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rpggio/storyforge/internal/ratelimit"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultStoryModel    = "gemini-2.5-flash"
	DefaultImageModel    = "gemini-2.5-flash-image-preview"

	maxErrorBody = 4 << 10
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	StoryModel string
	ImageModel string
}

// Gemini generates story outlines and illustrations through the
// generateContent REST endpoint.
type Gemini struct {
	cfg    GeminiConfig
	caller caller
}

// NewGemini creates a Gemini client.
func NewGemini(cfg GeminiConfig, opts Options) *Gemini {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.StoryModel == "" {
		cfg.StoryModel = DefaultStoryModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gemini{cfg: cfg, caller: newCaller("gemini", opts)}
}

func (g *Gemini) Name() string     { return "gemini" }
func (g *Gemini) Configured() bool { return g.cfg.APIKey != "" }

type geminiPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *geminiInline `json:"inlineData,omitempty"`
}

type geminiInline struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateStory asks the story model for an outline and validates it.
func (g *Gemini) GenerateStory(ctx context.Context, req StoryRequest) (*Story, error) {
	if !g.Configured() {
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}
	if req.SceneCount <= 0 {
		req.SceneCount = 3
	}

	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: StoryPrompt(req)}}}},
		GenerationConfig: &geminiGenerationConfig{ResponseMimeType: "application/json"},
	}

	var story *Story
	err := g.caller.do(ctx, "generate_story", ratelimit.CategoryText, func(ctx context.Context) error {
		resp, err := g.generate(ctx, g.cfg.StoryModel, body)
		if err != nil {
			return err
		}
		text := firstText(resp)
		if text == "" {
			return malformed("story response has no text", nil)
		}
		story, err = ParseStory(text)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.caller.logger.Info("story generated", "title", story.Title, "scenes", len(story.Scenes))
	return story, nil
}

// GenerateImage renders one illustration and returns the decoded image
// bytes from the first inline data part.
func (g *Gemini) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	if !g.Configured() {
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: ImagePrompt(req)}}}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}

	var image []byte
	err := g.caller.do(ctx, "generate_image", ratelimit.CategoryImage, func(ctx context.Context) error {
		resp, err := g.generate(ctx, g.cfg.ImageModel, body)
		if err != nil {
			return err
		}
		inline := firstInline(resp)
		if inline == nil {
			return malformed("image response has no image part", nil)
		}
		image, err = base64.StdEncoding.DecodeString(inline.Data)
		if err != nil {
			return malformed("image data is not base64", err)
		}
		if len(image) == 0 {
			return malformed("image data is empty", nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (g *Gemini) generate(ctx context.Context, model string, body geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := g.cfg.BaseURL + "/models/" + model + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.cfg.APIKey)

	res, err := g.caller.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return nil, geminiStatusError(res)
	}

	var out geminiResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, malformed("response is not valid JSON", err)
	}
	return &out, nil
}

func geminiStatusError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	var apiErr geminiError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}
	return &ProviderError{Provider: "gemini", StatusCode: res.StatusCode, Message: msg}
}

func firstText(resp *geminiResponse) string {
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

func firstInline(resp *geminiResponse) *geminiInline {
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData
			}
		}
	}
	return nil
}
