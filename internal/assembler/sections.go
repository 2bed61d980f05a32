package assembler

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rpggio/storyforge/internal/domain/content"
)

// SceneStride is the order_index span covered by one scene. Book creation
// stores a scene's text and audio at 2i and its image at 2i+1, and callers
// that add content by hand group it in blocks of ten.
const SceneStride = 10

// Scene is one bucket of content items rendered under a single heading.
type Scene struct {
	Index int
	Items []content.Item
}

// Title is the heading text for the scene.
func (s Scene) Title() string {
	return fmt.Sprintf("Scene %d", s.Index+1)
}

// GroupByScene buckets items by order_index / SceneStride. Buckets are
// returned in ascending order and keep the input order of their items.
func GroupByScene(items []content.Item) []Scene {
	buckets := make(map[int][]content.Item)
	for _, item := range items {
		idx := floorDiv(item.OrderIndex, SceneStride)
		buckets[idx] = append(buckets[idx], item)
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	scenes := make([]Scene, 0, len(keys))
	for _, k := range keys {
		scenes = append(scenes, Scene{Index: k, Items: buckets[k]})
	}
	return scenes
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Assembler turns stored content into LaTeX sections.
type Assembler struct {
	fileExists func(path string) bool
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithFileCheck replaces the check used to decide whether an image or cover
// file is present.
func WithFileCheck(fn func(path string) bool) Option {
	return func(a *Assembler) {
		a.fileExists = fn
	}
}

// New returns an assembler that checks image files on the local filesystem.
func New(opts ...Option) *Assembler {
	a := &Assembler{fileExists: fileExists}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Sections renders each scene as a heading, its text paragraphs, its
// figures and a trailing vertical space. Audio items are not rendered.
func (a *Assembler) Sections(items []content.Item, opts Options) []string {
	scenes := GroupByScene(items)
	sections := make([]string, 0, len(scenes))
	for _, scene := range scenes {
		sections = append(sections, a.renderScene(scene, opts))
	}
	return sections
}

// Content joins the rendered sections, prepending a cover page when the
// options name a cover style.
func (a *Assembler) Content(title string, items []content.Item, opts Options) string {
	parts := a.Sections(items, opts)
	if opts.CoverStyle != "" {
		cover := a.CoverPage(title, opts.Author, opts.CoverImage, opts.CoverStyle)
		parts = append([]string{cover}, parts...)
	}
	return strings.Join(parts, "\n\n")
}

func (a *Assembler) renderScene(scene Scene, opts Options) string {
	lines := []string{heading(scene.Title(), opts.BookType)}

	for _, item := range scene.Items {
		if item.Type != content.TypeText || item.Text == "" {
			continue
		}
		if text := CleanText(item.Text); text != "" {
			lines = append(lines, text)
		}
	}

	for _, item := range scene.Items {
		if item.Type != content.TypeImage || item.ImagePath == "" {
			continue
		}
		if !a.fileExists(item.ImagePath) {
			continue
		}
		lines = append(lines, Figure(item.ImagePath, item.Caption(), opts))
	}

	lines = append(lines, `\vspace{1em}`)
	return strings.Join(lines, "\n\n")
}

func heading(title, bookType string) string {
	if bookType == "comic" {
		return `\section*{` + title + `}`
	}
	return `\chapter{` + title + `}`
}

// Figure renders one image as a LaTeX figure block.
func Figure(path, caption string, opts Options) string {
	width := opts.ImageWidth
	if width == "" {
		width = DefaultImageWidth
	}

	lines := []string{`\begin{figure}[h!]`}
	if opts.CenterImages {
		lines = append(lines, `\centering`)
	}
	lines = append(lines, includeGraphics(width, path))
	if caption != "" {
		lines = append(lines, `\caption{`+Escape(caption)+`}`)
	}
	lines = append(lines, `\end{figure}`, `\vspace{0.5em}`)
	return strings.Join(lines, "\n")
}
