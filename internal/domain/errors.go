package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrToolchainUnavailable means no usable native compiler was found.
	ErrToolchainUnavailable = errors.New("native toolchain unavailable")
	// ErrCompileFailure means the compiler ran but produced no artifact.
	ErrCompileFailure = errors.New("native compilation failed")
	// ErrSymbolNotFound means a loaded library does not export a name.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrMatchAlreadyBound is returned when binding a match function twice.
	ErrMatchAlreadyBound = errors.New("match function already bound")
	// ErrMatchNotBound is returned when invoking before binding.
	ErrMatchNotBound = errors.New("match function not bound")
	// ErrLibraryClosed is returned when using a library after Close.
	ErrLibraryClosed = errors.New("library closed")
	// ErrUnsupportedStandard means no compiler flag exists for a language revision.
	ErrUnsupportedStandard = errors.New("unsupported language standard")
)

// ToolchainError reports a failed toolchain resolution. Hook names the
// extension point an integrator can implement to supply a compiler.
type ToolchainError struct {
	Language Language
	Family   CompilerFamily
	Hook     string
	Err      error
}

func (e *ToolchainError) Error() string {
	msg := fmt.Sprintf("could not find native %s compiler (try implementing %s or setting compiler.pick)", e.Language, e.Hook)
	if e.Err != nil && !errors.Is(e.Err, ErrToolchainUnavailable) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolchainError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolchainUnavailable}
	}
	return []error{ErrToolchainUnavailable, e.Err}
}

// CompileError carries the captured compiler output when no artifact was
// produced.
type CompileError struct {
	Artifact   string
	Diagnostic string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiler produced no %s", e.Artifact)
}

func (e *CompileError) Unwrap() error {
	return ErrCompileFailure
}
