package template

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound indicates the template doesn't exist.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrMissingVariable indicates a placeholder with no supplied value.
	ErrMissingVariable = errors.New("template variable missing")
	// ErrMalformedTemplate indicates an unbalanced brace in a template body.
	ErrMalformedTemplate = errors.New("malformed template")
)

// MissingVariableError names the placeholder that had no value.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template variable missing: %q", e.Name)
}

func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}
