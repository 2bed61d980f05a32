package assembler

import "strings"

// Cover styles understood by CoverPage.
const (
	CoverModern   = "modern"
	CoverClassic  = "classic"
	CoverChildren = "children"
)

// CoverPage renders a title page followed by a page break. Unknown styles
// fall back to modern, and the cover image is only included when its file
// exists.
func (a *Assembler) CoverPage(title, author, coverImage, style string) string {
	title = Escape(title)
	author = Escape(author)
	hasImage := coverImage != "" && a.fileExists(coverImage)

	lines := []string{`\begin{titlepage}`, `\centering`}
	switch style {
	case CoverClassic:
		lines = append(lines,
			`\vspace*{3cm}`,
			`\rule{\linewidth}{0.5mm} \\[0.4cm]`,
			`{\huge\bfseries `+title+`\par}`,
			`\rule{\linewidth}{0.5mm} \\[1.5cm]`,
		)
		if hasImage {
			lines = append(lines, includeGraphics("0.5", coverImage), `\vspace{1cm}`)
		}
		lines = append(lines,
			`{\Large\itshape `+author+`\par}`,
			`\vfill`,
			`{\large \today\par}`,
		)
	case CoverChildren:
		lines = append(lines, `\vspace*{1cm}`)
		if hasImage {
			lines = append(lines, includeGraphics("0.8", coverImage), `\vspace{1cm}`)
		}
		lines = append(lines,
			`{\Huge\colorbox{yellow}{\textcolor{blue}{\textbf{`+title+`}}}\par}`,
			`\vspace{2cm}`,
			`{\LARGE\textcolor{purple}{\textbf{`+author+`}}\par}`,
			`\vfill`,
		)
	default:
		lines = append(lines, `\vspace*{2cm}`)
		if hasImage {
			lines = append(lines, includeGraphics("0.6", coverImage), `\vspace{2cm}`)
		}
		lines = append(lines,
			`{\Huge\bfseries `+title+`\par}`,
			`\vspace{1.5cm}`,
			`{\Large\itshape `+author+`\par}`,
			`\vfill`,
			`{\large \today\par}`,
		)
	}
	lines = append(lines, `\end{titlepage}`, `\newpage`)
	return strings.Join(lines, "\n")
}

func includeGraphics(width, path string) string {
	return `\includegraphics[width=` + width + `\textwidth]{` + strings.TrimLeft(path, "/") + `}`
}
