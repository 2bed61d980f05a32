package template

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFill(t *testing.T) {
	out, err := Fill(`\title{{{title}}} by {author}`, Vars{"title": "Fox", "author": "Ada"})
	require.NoError(t, err)
	require.Equal(t, `\title{Fox} by Ada`, out)
}

func TestFill_ValuesAreNotRescanned(t *testing.T) {
	out, err := Fill("{content}", Vars{"content": `\textbf{title} {{x}}`})
	require.NoError(t, err)
	require.Equal(t, `\textbf{title} {{x}}`, out)
}

func TestFill_MissingVariable(t *testing.T) {
	_, err := Fill("{title} {subtitle}", Vars{"title": "Fox"})
	require.ErrorIs(t, err, ErrMissingVariable)

	var missing *MissingVariableError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "subtitle", missing.Name)
}

func TestFill_Malformed(t *testing.T) {
	for _, body := range []string{"{title", "title}", "{}", "{a{b}"} {
		_, err := Fill(body, Vars{"title": "x", "a": "y", "b": "z"})
		require.ErrorIs(t, err, ErrMalformedTemplate, body)
	}
}

func TestDefaults_FillWithStandardVars(t *testing.T) {
	vars := NewVars("Fox", "Ada", "May 04, 2026", "BODY")
	for _, tpl := range append(Defaults(), Fallback()) {
		out, err := Fill(tpl.Body, vars)
		require.NoError(t, err, tpl.ID)
		require.Contains(t, out, "BODY", tpl.ID)
		require.Contains(t, out, `\end{document}`, tpl.ID)
		require.NotContains(t, out, "{{", tpl.ID)
	}
}
