package assembler

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// latexEscaper replaces every LaTeX control character in a single
// left-to-right pass, so replacements are never escaped again.
var latexEscaper = strings.NewReplacer(
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`\`, `\textbackslash{}`,
)

// Escape makes arbitrary text safe to place inside a LaTeX document body.
// It is not idempotent: escaping already escaped text escapes it again.
func Escape(text string) string {
	return pairQuotes(norm.NFC.String(latexEscaper.Replace(text)))
}

// pairQuotes turns straight and curly double quotes into alternating
// opening and closing typographic quotes.
func pairQuotes(text string) string {
	if !strings.ContainsAny(text, "\"“”") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	open := true
	for _, r := range text {
		switch r {
		case '"':
			if open {
				b.WriteString("``")
			} else {
				b.WriteString("''")
			}
			open = !open
		case '“':
			b.WriteString("``")
			open = false
		case '”':
			b.WriteString("''")
			open = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanText escapes text and lays it out as LaTeX paragraphs. Paragraphs are
// separated by a blank line in the input; each one is trimmed and prefixed
// with \noindent, and empty ones are dropped.
func CleanText(text string) string {
	escaped := Escape(text)

	paragraphs := strings.Split(escaped, "\n\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, `\noindent `+p)
	}
	return strings.Join(out, "\n\n")
}
