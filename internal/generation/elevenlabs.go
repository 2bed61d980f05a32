package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rpggio/storyforge/internal/ratelimit"
)

const (
	DefaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID           = "21m00Tcm4TlvDq8ikWAM"
	DefaultNarrationModel    = "eleven_multilingual_v2"
	narrationOutputFormat    = "mp3_22050_32"
)

// ElevenLabsConfig configures the ElevenLabs client.
type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
	BaseURL string
	Model   string
}

// ElevenLabs narrates text through the text-to-speech endpoint.
type ElevenLabs struct {
	cfg    ElevenLabsConfig
	caller caller
}

// NewElevenLabs creates an ElevenLabs client.
func NewElevenLabs(cfg ElevenLabsConfig, opts Options) *ElevenLabs {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultElevenLabsBaseURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}
	if cfg.Model == "" {
		cfg.Model = DefaultNarrationModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ElevenLabs{cfg: cfg, caller: newCaller("elevenlabs", opts)}
}

func (e *ElevenLabs) Name() string     { return "elevenlabs" }
func (e *ElevenLabs) Configured() bool { return e.cfg.APIKey != "" }

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// defaultVoiceSettings are tuned for storytelling.
func defaultVoiceSettings() voiceSettings {
	return voiceSettings{
		Stability:       0.6,
		SimilarityBoost: 0.8,
		Style:           0.2,
		UseSpeakerBoost: true,
	}
}

func (v voiceSettings) merge(o *VoiceSettings) voiceSettings {
	if o == nil {
		return v
	}
	if o.Stability != nil {
		v.Stability = *o.Stability
	}
	if o.SimilarityBoost != nil {
		v.SimilarityBoost = *o.SimilarityBoost
	}
	if o.Style != nil {
		v.Style = *o.Style
	}
	if o.UseSpeakerBoost != nil {
		v.UseSpeakerBoost = *o.UseSpeakerBoost
	}
	return v
}

// GenerateNarration returns MP3 audio for text.
func (e *ElevenLabs) GenerateNarration(ctx context.Context, text string, settings *VoiceSettings) ([]byte, error) {
	if !e.Configured() {
		return nil, fmt.Errorf("elevenlabs: %w", ErrNotConfigured)
	}

	voice := e.cfg.VoiceID
	if settings != nil && settings.VoiceID != "" {
		voice = settings.VoiceID
	}

	payload, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       e.cfg.Model,
		VoiceSettings: defaultVoiceSettings().merge(settings),
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	endpoint := e.cfg.BaseURL + "/v1/text-to-speech/" + url.PathEscape(voice) + "?output_format=" + narrationOutputFormat

	var audio []byte
	err = e.caller.do(ctx, "generate_narration", ratelimit.CategoryAudio, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "audio/mpeg")
		req.Header.Set("xi-api-key", e.cfg.APIKey)

		res, err := e.caller.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode/100 != 2 {
			raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
			return &ProviderError{Provider: "elevenlabs", StatusCode: res.StatusCode, Message: strings.TrimSpace(string(raw))}
		}

		audio, err = io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if len(audio) == 0 {
			return malformed("narration response is empty", nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}
