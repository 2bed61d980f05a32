package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/storyforge/internal/assembler"
	"github.com/rpggio/storyforge/internal/compiler"
	"github.com/rpggio/storyforge/internal/domain/book"
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/session"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/generation"
	"github.com/rpggio/storyforge/internal/ratelimit"
	"github.com/rpggio/storyforge/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unrecognized errors map to
// INTERNAL.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var limited *ratelimit.LimitedError
	var compErr *compiler.CompilationError
	var missing *template.MissingVariableError
	var provider *generation.ProviderError

	switch {
	case errors.As(err, &limited):
		return &APIError{
			Code:         "RATE_LIMITED",
			Message:      err.Error(),
			Details:      map[string]any{"category": limited.Category, "retry_after_seconds": math.Ceil(limited.RetryAfter.Seconds())},
			RecoveryHint: "Wait for retry_after_seconds before calling again",
		}
	case errors.Is(err, ratelimit.ErrRateLimited):
		return &APIError{Code: "RATE_LIMITED", Message: err.Error(), RecoveryHint: "Check rate_limit_status"}
	case errors.As(err, &compErr):
		return &APIError{
			Code:         "COMPILATION_FAILED",
			Message:      "latex compilation failed",
			Details:      map[string]any{"exit_code": compErr.ExitCode, "diagnostics": compErr.Diagnostics},
			RecoveryHint: "Inspect diagnostics; render_latex shows the generated source",
		}
	case errors.Is(err, compiler.ErrCompilationTimeout):
		return &APIError{Code: "COMPILATION_TIMEOUT", Message: err.Error(), RecoveryHint: "Reduce document size or raise latex.timeout"}
	case errors.Is(err, compiler.ErrToolchainUnavailable):
		return &APIError{Code: "TOOLCHAIN_UNAVAILABLE", Message: err.Error(), RecoveryHint: "Install a LaTeX distribution; render_latex still works"}
	case errors.As(err, &missing):
		return &APIError{Code: "MISSING_VARIABLE", Message: err.Error(), Details: map[string]any{"variable": missing.Name}}
	case errors.Is(err, template.ErrMalformedTemplate):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Double literal braces in the template body"}
	case errors.Is(err, generation.ErrMalformedGeneration):
		return &APIError{Code: "MALFORMED_GENERATION", Message: err.Error(), RecoveryHint: "Retry; the model returned an unusable story"}
	case errors.Is(err, generation.ErrNotConfigured):
		return &APIError{Code: "PROVIDER_NOT_CONFIGURED", Message: err.Error(), RecoveryHint: "Set the provider API key; see system_status"}
	case errors.As(err, &provider):
		return &APIError{Code: "PROVIDER_ERROR", Message: err.Error(), Details: map[string]any{"provider": provider.Provider, "status_code": provider.StatusCode}}
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, content.ErrProjectNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "project not found", RecoveryHint: "Check the project ID with list_projects"}
	case errors.Is(err, content.ErrContentNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "content not found", RecoveryHint: "Check the content ID with list_content"}
	case errors.Is(err, template.ErrTemplateNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "template not found", RecoveryHint: "Check the template ID with list_templates"}
	case errors.Is(err, assembler.ErrNoAudioContent):
		return &APIError{Code: "NOT_FOUND", Message: err.Error(), RecoveryHint: "Create the book with generate_audio enabled"}
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, content.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, book.ErrInvalidInput),
		errors.Is(err, compiler.ErrInvalidName):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error()}
	}
}

// errorResult renders err as a tool error so the client sees the code.
func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	data, mErr := json.Marshal(apiErr)
	if mErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
