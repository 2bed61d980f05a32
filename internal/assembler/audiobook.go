package assembler

import (
	"errors"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rpggio/storyforge/internal/domain/content"
)

// ErrNoAudioContent is returned when a project has no audio items to list.
var ErrNoAudioContent = errors.New("No audio content found in project") //nolint:staticcheck // user-facing message

// WordsPerMinute is the narration speed used for duration estimates.
const WordsPerMinute = 150

// AudiobookCompanion renders a standalone document listing each audio item
// of a project as a numbered track.
func AudiobookCompanion(projectName string, items []content.Item) (string, error) {
	var tracks []content.Item
	for _, item := range items {
		if item.Type == content.TypeAudio {
			tracks = append(tracks, item)
		}
	}
	if len(tracks) == 0 {
		return "", ErrNoAudioContent
	}

	lines := []string{
		`\documentclass[a5paper,12pt]{article}`,
		`\usepackage[utf8]{inputenc}`,
		`\usepackage{graphicx}`,
		`\usepackage[margin=1in]{geometry}`,
		`\usepackage{hyperref}`,
		`\usepackage{xcolor}`,
		``,
		`\title{Audio Companion: ` + Escape(projectName) + `}`,
		`\author{` + DefaultAuthor + `}`,
		`\date{\today}`,
		``,
		`\begin{document}`,
		`\maketitle`,
		`\newpage`,
		``,
		`\section*{How to Use This Audiobook}`,
		`This companion guide contains instructions for accessing the audio narration of your story.`,
		`\vspace{1em}`,
		``,
		`\section*{Audio Tracks}`,
	}

	for i, track := range tracks {
		n := strconv.Itoa(i + 1)
		file := "track_" + n + ".mp3"
		if track.AudioPath != "" {
			file = filepath.Base(track.AudioPath)
		}
		lines = append(lines,
			`\subsection*{Track `+n+`}`,
			`\textbf{File:} `+Escape(file)+`\\`,
			`\textbf{Duration:} Approximately `+formatMinutes(EstimateDuration(track))+` minutes\\`,
			`\vspace{1em}`,
		)
	}

	lines = append(lines, ``, `\end{document}`)
	return strings.Join(lines, "\n"), nil
}

// EstimateDuration returns the narration length of an item in minutes,
// rounded to one decimal. Items without a transcript count as one minute.
func EstimateDuration(item content.Item) float64 {
	if item.Text == "" {
		return 1.0
	}
	words := len(strings.Fields(item.Text))
	return math.Round(float64(words)/WordsPerMinute*10) / 10
}

func formatMinutes(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64)
}
