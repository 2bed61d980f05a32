package book

import "errors"

// ErrInvalidInput indicates an invalid book request.
var ErrInvalidInput = errors.New("invalid book input")
