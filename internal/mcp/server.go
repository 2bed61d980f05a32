package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/storyforge/internal/domain/book"
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/ratelimit"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context, projectType string) ([]project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	Update(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, id string) error
}

// ContentService defines content operations needed by MCP.
type ContentService interface {
	Add(ctx context.Context, req content.AddRequest) (*content.Item, error)
	List(ctx context.Context, projectID string) ([]content.Item, error)
	Update(ctx context.Context, id string, req content.UpdateRequest) (*content.Item, error)
	Delete(ctx context.Context, id string) error
}

// TemplateService defines template operations needed by MCP.
type TemplateService interface {
	List(ctx context.Context, templateType string) ([]template.Template, error)
	Get(ctx context.Context, id string) (*template.Template, error)
}

// BookService defines generation, rendering and status operations needed by MCP.
type BookService interface {
	CreateBook(ctx context.Context, req book.CreateBookRequest) (*book.CreateBookResult, error)
	GenerateImage(ctx context.Context, prompt, style string) (*book.ImageResult, error)
	RenderDocument(ctx context.Context, projectID string, opts book.RenderOptions) (*book.RenderResult, error)
	RenderLaTeX(ctx context.Context, projectID string, opts book.RenderOptions) (*book.Source, error)
	CreateAudiobookCompanion(ctx context.Context, projectID, name string) (string, error)
	EstimateGenerationTime(scenes int, withAudio, withImages bool) book.Estimate
	RateLimitStatus(ctx context.Context) (map[string]ratelimit.Status, error)
	Statistics(ctx context.Context) (*project.Statistics, error)
	SystemStatus(ctx context.Context) book.SystemStatus
}

// SessionTracker records client activity.
type SessionTracker interface {
	Touch(ctx context.Context, id string, data map[string]any) error
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects  ProjectService
	Contents  ContentService
	Templates TemplateService
	Books     BookService
	Sessions  SessionTracker
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "storyforge",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(sessionMiddleware(cfg.Services.Sessions, cfg.TransportMode, cfg.Logger))
	server.AddReceivingMiddleware(trafficLogging(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLogging(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
