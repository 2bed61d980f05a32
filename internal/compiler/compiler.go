package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// BuildDirPattern names the scratch directories created for each compile.
	BuildDirPattern = "storyforge-build-*"

	sourceName   = "document.tex"
	documentName = "document.pdf"

	versionTimeout = 10 * time.Second
)

// Config configures a Compiler.
type Config struct {
	Binary       string
	OutputDir    string
	Timeout      time.Duration
	CompileTwice bool
}

// Compiler runs an external LaTeX binary in an isolated scratch directory
// and promotes the resulting PDF into the output directory.
type Compiler struct {
	binary       string
	outputDir    string
	timeout      time.Duration
	compileTwice bool
	logger       *slog.Logger
}

// New creates a compiler. A zero timeout means 60 seconds per pass.
func New(cfg Config, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Binary == "" {
		cfg.Binary = "pdflatex"
	}
	return &Compiler{
		binary:       cfg.Binary,
		outputDir:    cfg.OutputDir,
		timeout:      cfg.Timeout,
		compileTwice: cfg.CompileTwice,
		logger:       logger,
	}
}

// Request is one document to compile.
type Request struct {
	Source string
	// Name is the output file name without the .pdf extension.
	Name string
	// CompileTwice overrides the configured default when set.
	CompileTwice *bool
}

// OutputDir returns the directory compiled documents are written to.
func (c *Compiler) OutputDir() string {
	return c.outputDir
}

// Available reports whether the binary is on PATH and answers --version.
func (c *Compiler) Available(ctx context.Context) bool {
	path, err := exec.LookPath(c.binary)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	return exec.CommandContext(ctx, path, "--version").Run() == nil
}

// Compile builds req.Source and returns the path of the promoted PDF.
// Nothing is written to the output directory unless the final pass exits
// cleanly and produces a document.
func (c *Compiler) Compile(ctx context.Context, req Request) (string, error) {
	if req.Name == "" || req.Name != filepath.Base(req.Name) || req.Name == "." || req.Name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, req.Name)
	}
	if !c.Available(ctx) {
		return "", fmt.Errorf("%w: %s", ErrToolchainUnavailable, c.binary)
	}

	dir, err := os.MkdirTemp("", BuildDirPattern)
	if err != nil {
		return "", fmt.Errorf("create build dir: %w", err)
	}
	defer os.RemoveAll(dir)

	texPath := filepath.Join(dir, sourceName)
	if err := os.WriteFile(texPath, []byte(req.Source), 0o644); err != nil {
		return "", fmt.Errorf("write source: %w", err)
	}

	twice := c.compileTwice
	if req.CompileTwice != nil {
		twice = *req.CompileTwice
	}

	res, err := c.runPass(ctx, dir, texPath)
	if err != nil {
		return "", err
	}
	if twice && res.exitCode == 0 {
		if res, err = c.runPass(ctx, dir, texPath); err != nil {
			return "", err
		}
	}

	pdfPath := filepath.Join(dir, documentName)
	if res.exitCode != 0 || !exists(pdfPath) {
		c.logger.Warn("latex compilation failed", "name", req.Name, "exit_code", res.exitCode)
		return "", &CompilationError{ExitCode: res.exitCode, Diagnostics: res.diagnostics()}
	}

	out, err := c.promote(pdfPath, req.Name)
	if err != nil {
		return "", err
	}
	c.logger.Info("document compiled", "name", req.Name, "path", out, "passes", passes(twice))
	return out, nil
}

type passResult struct {
	exitCode int
	stdout   string
	stderr   string
}

func (r passResult) diagnostics() string {
	if s := strings.TrimSpace(r.stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.stdout); s != "" {
		return s
	}
	return fmt.Sprintf("compiler exited with status %d and produced no document", r.exitCode)
}

func (c *Compiler) runPass(ctx context.Context, dir, texPath string) (passResult, error) {
	passCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(passCtx, c.binary,
		"-output-directory", dir,
		"-interaction=nonstopmode",
		texPath,
	)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	c.logger.Debug("latex pass finished", "binary", c.binary, "duration", time.Since(start), "error", err)

	if errors.Is(passCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return passResult{}, fmt.Errorf("%w after %s", ErrCompilationTimeout, c.timeout)
	}
	if ctx.Err() != nil {
		return passResult{}, ctx.Err()
	}

	res := passResult{stdout: stdout.String(), stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return passResult{}, fmt.Errorf("run %s: %w", c.binary, err)
		}
		res.exitCode = exitErr.ExitCode()
	}
	return res, nil
}

// promote copies the built PDF next to its final name and renames it into
// place so readers never observe a partial file.
func (c *Compiler) promote(pdfPath, name string) (string, error) {
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	final := filepath.Join(c.outputDir, name+".pdf")
	tmp := final + ".tmp"
	if err := copyFile(pdfPath, tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("copy document: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("promote document: %w", err)
	}
	return final, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func passes(twice bool) int {
	if twice {
		return 2
	}
	return 1
}
