package assembler

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultAuthor is used when the project settings name no author.
	DefaultAuthor = "StoryForge AI"
	// DefaultImageWidth is the figure width as a fraction of \textwidth.
	DefaultImageWidth = "0.8"
)

// Options are the settings keys the assembler understands. Any other key in
// a project's settings is ignored.
type Options struct {
	BookType     string
	ImageWidth   string
	CenterImages bool
	Author       string
	CoverStyle   string
	CoverImage   string
}

// OptionsFromSettings reads recognized keys from a settings bag. The book
// type falls back to the project type.
func OptionsFromSettings(settings map[string]any, projectType string) Options {
	opts := Options{
		BookType:     projectType,
		ImageWidth:   DefaultImageWidth,
		CenterImages: true,
		Author:       DefaultAuthor,
	}

	if v, ok := stringSetting(settings, "book_type"); ok {
		opts.BookType = v
	}
	if v, ok := settings["image_width"]; ok {
		if w := formatWidth(v); w != "" {
			opts.ImageWidth = w
		}
	}
	if v, ok := boolSetting(settings, "center_images"); ok {
		opts.CenterImages = v
	}
	if v, ok := stringSetting(settings, "author"); ok {
		opts.Author = v
	}
	if v, ok := stringSetting(settings, "cover_style"); ok {
		opts.CoverStyle = v
	}
	if v, ok := stringSetting(settings, "cover_image"); ok {
		opts.CoverImage = v
	}
	return opts
}

func stringSetting(settings map[string]any, key string) (string, bool) {
	v, ok := settings[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func boolSetting(settings map[string]any, key string) (bool, bool) {
	switch v := settings[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}

// formatWidth accepts a finite fraction in (0, 1] as a number or a plain
// decimal string. Anything else yields "" and the default width applies.
func formatWidth(v any) string {
	var w float64
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if t == "" || strings.Trim(t, "0123456789.") != "" {
			return ""
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return ""
		}
		w = f
	case float64:
		w = t
	case int:
		w = float64(t)
	default:
		return ""
	}
	if math.IsNaN(w) || w <= 0 || w > 1 {
		return ""
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}
