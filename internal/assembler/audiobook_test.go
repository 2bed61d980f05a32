package assembler

import (
	"strings"
	"testing"

	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/stretchr/testify/require"
)

func TestAudiobookCompanion(t *testing.T) {
	transcript := strings.TrimSpace(strings.Repeat("word ", 300))
	items := []content.Item{
		{Type: content.TypeText, OrderIndex: 0, Text: "ignored"},
		{Type: content.TypeAudio, OrderIndex: 0, AudioPath: "static/generated/p_scene_0.mp3", Text: transcript},
		{Type: content.TypeAudio, OrderIndex: 10},
	}

	got, err := AudiobookCompanion("Tom & Jerry", items)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, `\documentclass[a5paper,12pt]{article}`))
	require.Contains(t, got, `\title{Audio Companion: Tom \& Jerry}`)
	require.Contains(t, got, `\author{StoryForge AI}`)
	require.Contains(t, got, "\\subsection*{Track 1}\n\\textbf{File:} p\\_scene\\_0.mp3\\\\\n\\textbf{Duration:} Approximately 2.0 minutes\\\\")
	require.Contains(t, got, "\\subsection*{Track 2}\n\\textbf{File:} track\\_2.mp3\\\\\n\\textbf{Duration:} Approximately 1.0 minutes\\\\")
	require.NotContains(t, got, "Track 3")
	require.True(t, strings.HasSuffix(got, "\n\\end{document}"))
}

func TestAudiobookCompanion_NoAudio(t *testing.T) {
	_, err := AudiobookCompanion("P", []content.Item{{Type: content.TypeText, Text: "x"}})
	require.ErrorIs(t, err, ErrNoAudioContent)
	require.EqualError(t, err, "No audio content found in project")
}

func TestEstimateDuration(t *testing.T) {
	require.Equal(t, 1.0, EstimateDuration(content.Item{}))
	require.Equal(t, 0.1, EstimateDuration(content.Item{Text: strings.Repeat("w ", 15)}))
	require.Equal(t, 0.0, EstimateDuration(content.Item{Text: "one two"}))
}
