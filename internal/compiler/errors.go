package compiler

import "errors"

var (
	// ErrToolchainUnavailable means the configured LaTeX binary is missing or
	// cannot report its version.
	ErrToolchainUnavailable = errors.New("latex toolchain unavailable")
	// ErrCompilationTimeout means a compile pass ran past its deadline.
	ErrCompilationTimeout = errors.New("latex compilation timeout")
	// ErrCompilationFailed matches every *CompilationError.
	ErrCompilationFailed = errors.New("latex compilation failed")
	// ErrInvalidName rejects output names that are not a single file name.
	ErrInvalidName = errors.New("invalid output name")
)

// CompilationError carries the compiler's diagnostics for a failed build.
type CompilationError struct {
	ExitCode    int
	Diagnostics string
}

func (e *CompilationError) Error() string {
	return ErrCompilationFailed.Error() + ":\n" + e.Diagnostics
}

func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilationFailed
}
