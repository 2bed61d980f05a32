// Package testserver wires a complete storyforge MCP server over an
// in-memory database for tests.
package testserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/storyforge/internal/artifact"
	"github.com/rpggio/storyforge/internal/compiler"
	"github.com/rpggio/storyforge/internal/compiler/compilertest"
	"github.com/rpggio/storyforge/internal/domain/book"
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/session"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/generation"
	"github.com/rpggio/storyforge/internal/generation/generationtest"
	"github.com/rpggio/storyforge/internal/mcp"
	"github.com/rpggio/storyforge/internal/ratelimit"
	"github.com/rpggio/storyforge/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	DB           *sqlite.DB
	Server       *sdkmcp.Server
	Session      *sdkmcp.ClientSession
	Generator    *generationtest.Fake
	Sessions     *session.Service
	ExportDir    string
	GeneratedDir string
}

type options struct {
	compilerBinary string
	limits         ratelimit.Limits
}

// Option adjusts the test server.
type Option func(*options)

// WithCompiler uses binary as the LaTeX compiler.
func WithCompiler(binary string) Option {
	return func(o *options) { o.compilerBinary = binary }
}

// WithLimits sets the rate limit windows.
func WithLimits(limits ratelimit.Limits) Option {
	return func(o *options) { o.limits = limits }
}

// New starts a server and connects a client to it in memory.
func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.compilerBinary == "" {
		o.compilerBinary = compilertest.Binary(t)
	}

	ts := build(t, o)
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := ts.Server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	ts.Session, err = client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = ts.Session.Close()
		_ = serverSession.Wait()
	})
	return ts
}

// NewHTTP starts the server behind the streamable HTTP handler and connects a
// client to it.
func NewHTTP(t *testing.T, opts ...Option) (*TestServer, *httptest.Server) {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.compilerBinary == "" {
		o.compilerBinary = compilertest.Binary(t)
	}

	ts := build(t, o)
	httpServer := httptest.NewServer(mcp.NewHTTPHandler(ts.Server))
	t.Cleanup(httpServer.Close)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	var err error
	ts.Session, err = client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{Endpoint: httpServer.URL + "/mcp"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ts.Session.Close() })

	return ts, httpServer
}

func build(t *testing.T, o options) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	projects := project.NewService(sqlite.NewProjectRepository(db), nil)
	contents := content.NewService(sqlite.NewContentRepository(db), nil)
	templates := template.NewService(sqlite.NewTemplateRepository(db), nil)
	sessions := session.NewService(sqlite.NewSessionRepository(db), nil)
	require.NoError(t, templates.Seed(context.Background()))

	root := t.TempDir()
	gen := &generationtest.Fake{}
	ts := &TestServer{
		DB:           db,
		Generator:    gen,
		Sessions:     sessions,
		ExportDir:    filepath.Join(root, "exports"),
		GeneratedDir: filepath.Join(root, "generated"),
	}

	books := book.NewService(book.Deps{
		Projects:  projects,
		Contents:  contents,
		Templates: templates,
		Stories:   gen,
		Images:    gen,
		Narration: gen,
		Artifacts: artifact.NewStore(ts.GeneratedDir, 0, nil),
		Compiler: compiler.New(compiler.Config{
			Binary:       o.compilerBinary,
			OutputDir:    ts.ExportDir,
			Timeout:      5 * time.Second,
			CompileTwice: true,
		}, nil),
		Limiter: ratelimit.NewMemory(o.limits),
		Providers: []generation.Provider{
			generation.NewGemini(generation.GeminiConfig{}, generation.Options{}),
			generation.NewElevenLabs(generation.ElevenLabsConfig{}, generation.Options{}),
		},
	}, book.Config{SceneConcurrency: 2, GenerateAudio: true})

	ts.Server = mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:  projects,
			Contents:  contents,
			Templates: templates,
			Books:     books,
			Sessions:  sessions,
		},
		TransportMode: "stdio",
		Version:       "test",
	})
	return ts
}

// CallTool calls a tool that must succeed and returns its JSON output.
func (ts *TestServer) CallTool(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	result := ts.call(t, name, args)
	require.False(t, result.IsError, "tool %s returned error: %s", name, textOf(result))
	return json.RawMessage(textOf(result))
}

// CallToolError calls a tool that must fail and returns the decoded error.
func (ts *TestServer) CallToolError(t *testing.T, name string, args map[string]any) mcp.APIError {
	t.Helper()
	result := ts.call(t, name, args)
	require.True(t, result.IsError, "tool %s succeeded: %s", name, textOf(result))

	var apiErr mcp.APIError
	require.NoError(t, json.Unmarshal([]byte(textOf(result)), &apiErr))
	return apiErr
}

func (ts *TestServer) call(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := ts.Session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	return result
}

func textOf(result *sdkmcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
