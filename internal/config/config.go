package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Transport   TransportConfig   `yaml:"transport"`
	DB          DBConfig          `yaml:"db"`
	Log         LogConfig         `yaml:"log"`
	LaTeX       LaTeXConfig       `yaml:"latex"`
	Storage     StorageConfig     `yaml:"storage"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	ElevenLabs  ElevenLabsConfig  `yaml:"elevenlabs"`
	Generation  GenerationConfig  `yaml:"generation"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"STORYFORGE_SERVER_HOST"`
	Port int    `yaml:"port" env:"STORYFORGE_SERVER_PORT"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" env:"STORYFORGE_TRANSPORT"`
}

type DBConfig struct {
	Path string `yaml:"path" env:"STORYFORGE_DB_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"STORYFORGE_LOG_LEVEL"`
	Path  string `yaml:"path" env:"STORYFORGE_LOG_PATH"`
}

type LaTeXConfig struct {
	Compiler     string        `yaml:"compiler" env:"LATEX_COMPILER"`
	OutputDir    string        `yaml:"output_dir" env:"LATEX_OUTPUT_DIR"`
	Timeout      time.Duration `yaml:"timeout" env:"LATEX_TIMEOUT"`
	CompileTwice bool          `yaml:"compile_twice" env:"LATEX_COMPILE_TWICE"`
}

type StorageConfig struct {
	GeneratedDir  string `yaml:"generated_dir" env:"STORYFORGE_GENERATED_DIR"`
	MaxImageWidth int    `yaml:"max_image_width" env:"STORYFORGE_MAX_IMAGE_WIDTH"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"GEMINI_BASE_URL"`
}

type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key" env:"ELEVENLABS_API_KEY"`
	VoiceID string `yaml:"voice_id" env:"ELEVENLABS_VOICE_ID"`
	BaseURL string `yaml:"base_url" env:"ELEVENLABS_BASE_URL"`
}

type GenerationConfig struct {
	DefaultStyle      string         `yaml:"default_style" env:"STORYFORGE_DEFAULT_STYLE"`
	GenerateAudio     bool           `yaml:"generate_audio" env:"STORYFORGE_GENERATE_AUDIO"`
	SceneConcurrency  int            `yaml:"scene_concurrency" env:"STORYFORGE_SCENE_CONCURRENCY"`
	SceneCounts       map[string]int `yaml:"scene_counts"`
	RequestsPerSecond float64        `yaml:"requests_per_second" env:"STORYFORGE_REQUESTS_PER_SECOND"`
	HTTPTimeout       time.Duration  `yaml:"http_timeout" env:"STORYFORGE_HTTP_TIMEOUT"`
}

// WindowConfig is one sliding window.
type WindowConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

type RateLimitConfig struct {
	Image    WindowConfig `yaml:"image"`
	Text     WindowConfig `yaml:"text"`
	Audio    WindowConfig `yaml:"audio"`
	RedisURL string       `yaml:"redis_url" env:"STORYFORGE_REDIS_URL"`
}

type MaintenanceConfig struct {
	Enabled         bool          `yaml:"enabled" env:"STORYFORGE_MAINTENANCE_ENABLED"`
	SessionSchedule string        `yaml:"session_schedule"`
	SessionMaxAge   time.Duration `yaml:"session_max_age"`
	SweepSchedule   string        `yaml:"sweep_schedule"`
	BuildDirMaxAge  time.Duration `yaml:"build_dir_max_age"`
	StatsSchedule   string        `yaml:"stats_schedule"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" env:"STORYFORGE_OTEL_ENABLED"`
	Endpoint string `yaml:"endpoint" env:"STORYFORGE_OTEL_ENDPOINT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "storyforge.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		LaTeX: LaTeXConfig{
			Compiler:     "pdflatex",
			OutputDir:    "static/exports",
			Timeout:      60 * time.Second,
			CompileTwice: true,
		},
		Storage: StorageConfig{
			GeneratedDir:  "static/generated",
			MaxImageWidth: 1600,
		},
		Gemini: GeminiConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
		ElevenLabs: ElevenLabsConfig{
			VoiceID: "21m00Tcm4TlvDq8ikWAM",
			BaseURL: "https://api.elevenlabs.io",
		},
		Generation: GenerationConfig{
			DefaultStyle:     "watercolor",
			GenerateAudio:    true,
			SceneConcurrency: 3,
			SceneCounts: map[string]int{
				"story":       10,
				"educational": 15,
				"comic":       20,
			},
			RequestsPerSecond: 2,
			HTTPTimeout:       120 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Image: WindowConfig{MaxRequests: 20, Window: time.Minute},
			Text:  WindowConfig{MaxRequests: 50, Window: time.Minute},
			Audio: WindowConfig{MaxRequests: 10, Window: time.Minute},
		},
		Maintenance: MaintenanceConfig{
			Enabled:         true,
			SessionSchedule: "0 0 3 * * *",
			SessionMaxAge:   30 * 24 * time.Hour,
			SweepSchedule:   "0 */15 * * * *",
			BuildDirMaxAge:  time.Hour,
			StatsSchedule:   "0 0 * * * *",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file, an optional
// .env file and environment variables, in that order.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STORYFORGE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	envFile := os.Getenv("STORYFORGE_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if c.Transport.Mode != "http" && c.Transport.Mode != "stdio" {
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.LaTeX.Compiler == "" {
		return errors.New("latex compiler must be set")
	}
	if c.LaTeX.Timeout <= 0 {
		return errors.New("latex timeout must be positive")
	}
	if c.Generation.SceneConcurrency < 1 {
		return errors.New("scene concurrency must be at least 1")
	}
	for name, w := range map[string]WindowConfig{
		"image": c.RateLimit.Image,
		"text":  c.RateLimit.Text,
		"audio": c.RateLimit.Audio,
	} {
		if w.MaxRequests < 1 || w.Window <= 0 {
			return fmt.Errorf("invalid %s rate limit window", name)
		}
	}
	return nil
}

// SceneCount returns the number of scenes generated for a project type.
func (g GenerationConfig) SceneCount(projectType string) int {
	if n, ok := g.SceneCounts[projectType]; ok && n > 0 {
		return n
	}
	return 10
}
