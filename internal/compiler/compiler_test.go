package compiler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/storyforge/internal/compiler"
	"github.com/rpggio/storyforge/internal/compiler/compilertest"
	"github.com/stretchr/testify/require"
)

const validDoc = "\\documentclass{article}\n\\begin{document}\nHello\n\\end{document}\n"

func newCompiler(t *testing.T, binary string, twice bool) (*compiler.Compiler, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "exports")
	return compiler.New(compiler.Config{
		Binary:       binary,
		OutputDir:    out,
		Timeout:      5 * time.Second,
		CompileTwice: twice,
	}, nil), out
}

func passCount(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(data), "pass")
}

func TestCompile_Success(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "passes.log")
	t.Setenv(compilertest.LogEnv, logPath)

	c, out := newCompiler(t, compilertest.Binary(t), true)
	path, err := c.Compile(context.Background(), compiler.Request{Source: validDoc, Name: "project_abc"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "project_abc.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF"))
	require.Equal(t, 2, passCount(t, logPath))

	_, err = os.Stat(path + ".tmp")
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompile_SinglePassOverride(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "passes.log")
	t.Setenv(compilertest.LogEnv, logPath)

	c, _ := newCompiler(t, compilertest.Binary(t), true)
	once := false
	_, err := c.Compile(context.Background(), compiler.Request{Source: validDoc, Name: "doc", CompileTwice: &once})
	require.NoError(t, err)
	require.Equal(t, 1, passCount(t, logPath))
}

func TestCompile_FailureLeavesNoArtifact(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "passes.log")
	t.Setenv(compilertest.LogEnv, logPath)

	c, out := newCompiler(t, compilertest.Binary(t), true)
	_, err := c.Compile(context.Background(), compiler.Request{
		Source: "\\documentclass{article}\n\\begin{document}\nHello\n",
		Name:   "broken",
	})
	require.ErrorIs(t, err, compiler.ErrCompilationFailed)

	var compErr *compiler.CompilationError
	require.ErrorAs(t, err, &compErr)
	require.Equal(t, 1, compErr.ExitCode)
	require.Contains(t, compErr.Diagnostics, "Emergency stop")
	require.Equal(t, 1, passCount(t, logPath), "second pass must not run after a failed first pass")

	entries, err := os.ReadDir(out)
	if !errors.Is(err, os.ErrNotExist) {
		require.NoError(t, err)
		require.Empty(t, entries)
	}
}

func TestCompile_Timeout(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports")
	c := compiler.New(compiler.Config{
		Binary:    compilertest.SlowBinary(t),
		OutputDir: out,
		Timeout:   200 * time.Millisecond,
	}, nil)

	start := time.Now()
	_, err := c.Compile(context.Background(), compiler.Request{Source: validDoc, Name: "slow"})
	require.ErrorIs(t, err, compiler.ErrCompilationTimeout)
	require.Less(t, time.Since(start), 4*time.Second)

	_, err = os.Stat(filepath.Join(out, "slow.pdf"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompile_ToolchainUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		binary string
	}{
		{"missing", filepath.Join(t.TempDir(), "no-such-latex")},
		{"version fails", compilertest.BrokenBinary(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCompiler(t, tt.binary, true)
			require.False(t, c.Available(context.Background()))

			_, err := c.Compile(context.Background(), compiler.Request{Source: validDoc, Name: "x"})
			require.ErrorIs(t, err, compiler.ErrToolchainUnavailable)
		})
	}
}

func TestCompile_InvalidName(t *testing.T) {
	c, _ := newCompiler(t, compilertest.Binary(t), false)
	for _, name := range []string{"", "../escape", "a/b", ".."} {
		_, err := c.Compile(context.Background(), compiler.Request{Source: validDoc, Name: name})
		require.ErrorIs(t, err, compiler.ErrInvalidName, name)
	}
}

func TestCompile_BuildDirRemoved(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	c, _ := newCompiler(t, compilertest.Binary(t), false)
	_, err := c.Compile(context.Background(), compiler.Request{Source: validDoc, Name: "clean"})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(tmp, compiler.BuildDirPattern))
	require.NoError(t, err)
	require.Empty(t, matches)
}
