package template

// DefaultID is the template used when no template matches a project type.
const DefaultID = "children_storybook"

// Every literal brace in these bodies is doubled so that only the
// title, author, date and content placeholders are live.

const childrenStorybook = `\documentclass[a4paper,12pt]{{book}}
\usepackage[utf8]{{inputenc}}
\usepackage{{graphicx}}
\usepackage[margin=1in]{{geometry}}
\usepackage{{fancyhdr}}
\usepackage{{titlesec}}
\usepackage{{xcolor}}
\usepackage{{tcolorbox}}

\definecolor{{storyblue}}{{RGB}}{{102,126,234}}
\definecolor{{storypurple}}{{RGB}}{{118,75,162}}

\title{{\Huge\textcolor{{storyblue}}{{{title}}}}}
\author{{\Large\textcolor{{storypurple}}{{{author}}}}}
\date{{\textcolor{{gray}}{{{date}}}}}

\pagestyle{{fancy}}
\fancyhf{{}}
\fancyhead[C]{{\textcolor{{storyblue}}{{{title}}}}}
\fancyfoot[C]{{\thepage}}

\begin{{document}}
\maketitle
\newpage
\tableofcontents
\newpage

{content}

\end{{document}}`

const comicBook = `\documentclass[a4paper]{{article}}
\usepackage[utf8]{{inputenc}}
\usepackage{{graphicx}}
\usepackage[margin=0.75in]{{geometry}}
\usepackage{{multicol}}
\usepackage{{xcolor}}
\usepackage{{tikz}}
\usepackage{{tcolorbox}}

\definecolor{{comicred}}{{RGB}}{{220,20,60}}
\definecolor{{comicblue}}{{RGB}}{{30,144,255}}

\title{{\Huge\textbf{{\textcolor{{comicred}}{{{title}}}}}}}
\date{{\textcolor{{comicblue}}{{{date}}}}}

\begin{{document}}
\maketitle
\thispagestyle{{empty}}
\newpage

{content}

\end{{document}}`

const educationalBook = `\documentclass[a4paper,11pt]{{report}}
\usepackage[utf8]{{inputenc}}
\usepackage{{graphicx}}
\usepackage[margin=1.2in]{{geometry}}
\usepackage{{fancyhdr}}
\usepackage{{titlesec}}
\usepackage{{xcolor}}
\usepackage{{hyperref}}
\usepackage{{tcolorbox}}

\title{{\LARGE\textbf{{{title}}}}}
\author{{{author}}}
\date{{{date}}}

\pagestyle{{fancy}}
\fancyhf{{}}
\fancyhead[L]{{\leftmark}}
\fancyhead[R]{{{title}}}
\fancyfoot[C]{{\thepage}}

\begin{{document}}
\maketitle
\tableofcontents
\newpage

{content}

\end{{document}}`

const fallbackBody = `\documentclass[a4paper,12pt]{{report}}
\usepackage[utf8]{{inputenc}}
\usepackage{{graphicx}}
\usepackage[margin=1in]{{geometry}}
\usepackage{{xcolor}}

\title{{{title}}}
\author{{{author}}}
\date{{{date}}}

\begin{{document}}
\maketitle
\tableofcontents
\newpage

{content}

\end{{document}}`

// Defaults returns the templates seeded at startup.
func Defaults() []Template {
	return []Template{
		{
			ID:          "children_storybook",
			Name:        "Children's Storybook",
			Type:        "story",
			Body:        childrenStorybook,
			Description: "Colorful and engaging template for children's stories",
			IsDefault:   true,
		},
		{
			ID:          "comic_book",
			Name:        "Comic Book Style",
			Type:        "comic",
			Body:        comicBook,
			Description: "Dynamic layout perfect for comic-style stories",
			IsDefault:   true,
		},
		{
			ID:          "educational_book",
			Name:        "Educational Book",
			Type:        "educational",
			Body:        educationalBook,
			Description: "Clean and professional template for educational content",
			IsDefault:   true,
		},
	}
}

// Fallback returns the built-in template used when the store has none.
func Fallback() Template {
	return Template{
		ID:          "builtin_fallback",
		Name:        "Plain Book",
		Type:        "",
		Body:        fallbackBody,
		Description: "Built-in report layout",
	}
}
