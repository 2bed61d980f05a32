package template

import (
	"fmt"
	"strings"
)

// Vars holds placeholder values keyed by name.
type Vars map[string]string

// NewVars returns the standard document variables.
func NewVars(title, author, date, content string) Vars {
	return Vars{
		"title":   title,
		"author":  author,
		"date":    date,
		"content": content,
	}
}

// Fill substitutes every {name} placeholder in body in a single pass.
// Doubled braces are literal: "{{" yields "{" and "}}" yields "}".
// Substituted values are never rescanned.
func Fill(body string, vars Vars) (string, error) {
	var b strings.Builder
	b.Grow(len(body) + len(vars["content"]))

	for i := 0; i < len(body); {
		switch c := body[i]; c {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexAny(body[i+1:], "{}")
			if end < 0 || body[i+1+end] != '}' {
				return "", fmt.Errorf("%w: unmatched '{' at offset %d", ErrMalformedTemplate, i)
			}
			name := body[i+1 : i+1+end]
			if name == "" {
				return "", fmt.Errorf("%w: empty placeholder at offset %d", ErrMalformedTemplate, i)
			}
			val, ok := vars[name]
			if !ok {
				return "", &MissingVariableError{Name: name}
			}
			b.WriteString(val)
			i += end + 2
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrMalformedTemplate, i)
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}
