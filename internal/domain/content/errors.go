package content

import "errors"

var (
	// ErrContentNotFound indicates the content item doesn't exist.
	ErrContentNotFound = errors.New("content not found")
	// ErrProjectNotFound indicates the owning project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid content input.
	ErrInvalidInput = errors.New("invalid content input")
)
