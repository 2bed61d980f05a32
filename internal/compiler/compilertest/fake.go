// Package compilertest provides stand-in LaTeX binaries for tests.
package compilertest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// LogEnv names the environment variable the fake binary appends one line to
// for every compile pass.
const LogEnv = "FAKE_LATEX_LOG"

const fakeScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "fake latex 1.0"
  exit 0
fi
outdir="$2"
tex="$4"
if [ -n "$FAKE_LATEX_LOG" ]; then
  echo pass >> "$FAKE_LATEX_LOG"
fi
if grep -q 'end{document}' "$tex"; then
  printf '%%PDF-1.4 fake\n' > "$outdir/document.pdf"
  echo "Output written on document.pdf"
  exit 0
fi
echo "! Emergency stop."
echo "*** (job aborted, no legal \\end found)"
exit 1
`

const slowScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "slow latex 1.0"
  exit 0
fi
exec sleep 5
`

const brokenScript = `#!/bin/sh
exit 3
`

// Binary writes a fake compiler that produces a PDF whenever the source
// contains \end{document} and fails with diagnostics on stdout otherwise.
func Binary(t testing.TB) string {
	return write(t, "fakelatex", fakeScript)
}

// SlowBinary writes a compiler that never finishes a pass within a short
// timeout.
func SlowBinary(t testing.TB) string {
	return write(t, "slowlatex", slowScript)
}

// BrokenBinary writes a compiler whose --version check fails.
func BrokenBinary(t testing.TB) string {
	return write(t, "brokenlatex", brokenScript)
}

func write(t testing.TB, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake compiler: %v", err)
	}
	return path
}
