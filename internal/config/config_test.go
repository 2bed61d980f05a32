package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORYFORGE_CONFIG_PATH", "")
	t.Setenv("STORYFORGE_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "pdflatex", cfg.LaTeX.Compiler)
	require.Equal(t, "static/exports", cfg.LaTeX.OutputDir)
	require.Equal(t, 60*time.Second, cfg.LaTeX.Timeout)
	require.True(t, cfg.LaTeX.CompileTwice)
	require.Equal(t, 20, cfg.RateLimit.Image.MaxRequests)
	require.Equal(t, 50, cfg.RateLimit.Text.MaxRequests)
	require.Equal(t, 10, cfg.RateLimit.Audio.MaxRequests)
	require.Equal(t, "21m00Tcm4TlvDq8ikWAM", cfg.ElevenLabs.VoiceID)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
latex:
  compiler: xelatex
  timeout: 30s
generation:
  scene_counts:
    comic: 8
rate_limit:
  image:
    max_requests: 5
    window: 10s
`), 0o644))

	t.Setenv("STORYFORGE_CONFIG_PATH", path)
	t.Setenv("STORYFORGE_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("LATEX_COMPILER", "lualatex")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "lualatex", cfg.LaTeX.Compiler)
	require.Equal(t, 30*time.Second, cfg.LaTeX.Timeout)
	require.Equal(t, 5, cfg.RateLimit.Image.MaxRequests)
	require.Equal(t, 10*time.Second, cfg.RateLimit.Image.Window)
	require.Equal(t, 8, cfg.Generation.SceneCount("comic"))
	require.Equal(t, 10, cfg.Generation.SceneCount("story"))
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("STORYFORGE_DB_PATH_TEST_ONLY=1\n"), 0o644))

	t.Setenv("STORYFORGE_CONFIG_PATH", "")
	t.Setenv("STORYFORGE_ENV_FILE", envPath)

	_, err := Load()
	require.NoError(t, err)
	require.Equal(t, "1", os.Getenv("STORYFORGE_DB_PATH_TEST_ONLY"))
	os.Unsetenv("STORYFORGE_DB_PATH_TEST_ONLY")
}

func TestLoad_InvalidTransport(t *testing.T) {
	t.Setenv("STORYFORGE_CONFIG_PATH", "")
	t.Setenv("STORYFORGE_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("STORYFORGE_TRANSPORT", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
}

func TestSceneCount(t *testing.T) {
	g := Default().Generation
	require.Equal(t, 10, g.SceneCount("story"))
	require.Equal(t, 15, g.SceneCount("educational"))
	require.Equal(t, 20, g.SceneCount("comic"))
	require.Equal(t, 10, g.SceneCount("ecommerce"))
}
