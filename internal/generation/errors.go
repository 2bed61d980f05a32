package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedGeneration matches every *MalformedError.
	ErrMalformedGeneration = errors.New("malformed generation")
	// ErrNotConfigured is returned when a provider has no API key.
	ErrNotConfigured = errors.New("provider not configured")
)

// MalformedError is a provider response that failed structural validation.
type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedGeneration, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedGeneration, e.Reason)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedGeneration
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

func malformed(reason string, err error) error {
	return &MalformedError{Reason: reason, Err: err}
}

// ProviderError is a non-2xx response from a provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed when repeated.
func (e *ProviderError) Temporary() bool {
	return e.StatusCode >= 500
}
