package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/redis/go-redis/v9"
	"github.com/rpggio/storyforge/internal/artifact"
	"github.com/rpggio/storyforge/internal/compiler"
	"github.com/rpggio/storyforge/internal/config"
	"github.com/rpggio/storyforge/internal/domain/book"
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/session"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/generation"
	"github.com/rpggio/storyforge/internal/maintenance"
	"github.com/rpggio/storyforge/internal/mcp"
	"github.com/rpggio/storyforge/internal/ratelimit"
	"github.com/rpggio/storyforge/internal/sqlite"
	"github.com/rpggio/storyforge/internal/telemetry"
	"golang.org/x/time/rate"
)

const (
	serviceName     = "storyforge"
	version         = "0.1.0"
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries JSON-RPC in stdio mode.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	projects := project.NewService(sqlite.NewProjectRepository(db), logger)
	contents := content.NewService(sqlite.NewContentRepository(db), logger)
	templates := template.NewService(sqlite.NewTemplateRepository(db), logger)
	sessions := session.NewService(sqlite.NewSessionRepository(db), logger)

	if err := templates.Seed(ctx); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}

	limiter, closeLimiter, err := newLimiter(cfg.RateLimit, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	genOpts := generation.Options{
		HTTPClient: &http.Client{Timeout: cfg.Generation.HTTPTimeout},
		Limiter:    limiter,
		Tracer:     telemetry.Tracer(serviceName + "/generation"),
		Logger:     logger,
	}
	if cfg.Generation.RequestsPerSecond > 0 {
		genOpts.Pacer = rate.NewLimiter(rate.Limit(cfg.Generation.RequestsPerSecond), 1)
	}

	gemini := generation.NewGemini(generation.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
	}, genOpts)
	elevenLabs := generation.NewElevenLabs(generation.ElevenLabsConfig{
		APIKey:  cfg.ElevenLabs.APIKey,
		VoiceID: cfg.ElevenLabs.VoiceID,
		BaseURL: cfg.ElevenLabs.BaseURL,
	}, genOpts)

	latex := compiler.New(compiler.Config{
		Binary:       cfg.LaTeX.Compiler,
		OutputDir:    cfg.LaTeX.OutputDir,
		Timeout:      cfg.LaTeX.Timeout,
		CompileTwice: cfg.LaTeX.CompileTwice,
	}, logger)
	if !latex.Available(ctx) {
		logger.Warn("latex compiler not found; document rendering will fail", "compiler", cfg.LaTeX.Compiler)
	}

	books := book.NewService(book.Deps{
		Projects:  projects,
		Contents:  contents,
		Templates: templates,
		Stories:   gemini,
		Images:    gemini,
		Narration: elevenLabs,
		Artifacts: artifact.NewStore(cfg.Storage.GeneratedDir, cfg.Storage.MaxImageWidth, logger),
		Compiler:  latex,
		Limiter:   limiter,
		Providers: []generation.Provider{gemini, elevenLabs},
		Logger:    logger,
	}, book.Config{
		SceneCounts:      cfg.Generation.SceneCounts,
		SceneConcurrency: cfg.Generation.SceneConcurrency,
		DefaultStyle:     cfg.Generation.DefaultStyle,
		GenerateAudio:    cfg.Generation.GenerateAudio,
	})

	scheduler := maintenance.NewScheduler(cfg.Maintenance, sessions, projects, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start maintenance: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(sctx)
	}()

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:  projects,
			Contents:  contents,
			Templates: templates,
			Books:     books,
			Sessions:  sessions,
		},
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}
	return runHTTPMode(ctx, logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
}

func newLimiter(cfg config.RateLimitConfig, logger *slog.Logger) (ratelimit.Limiter, func(), error) {
	limits := ratelimit.Limits{
		ratelimit.CategoryImage: {MaxRequests: cfg.Image.MaxRequests, Window: cfg.Image.Window},
		ratelimit.CategoryText:  {MaxRequests: cfg.Text.MaxRequests, Window: cfg.Text.Window},
		ratelimit.CategoryAudio: {MaxRequests: cfg.Audio.MaxRequests, Window: cfg.Audio.Window},
	}

	if cfg.RedisURL == "" {
		return ratelimit.NewMemory(limits), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	logger.Info("using redis rate limiter", "addr", opts.Addr)
	return ratelimit.NewRedis(client, limits), func() { _ = client.Close() }, nil
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run returns when stdin closes or ctx is cancelled.
	err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mcp.NewHTTPHandler(mcpServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(ctx, logger, httpServer, errCh)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
