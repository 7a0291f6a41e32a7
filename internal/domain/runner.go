package domain

import "fmt"

// Engine is a pattern-matching implementation under test.
// Match reports whether pattern matches the entire input.
// Implementations must not retain or mutate either slice.
type Engine interface {
	Match(pattern, input []byte) (bool, error)
}

// EngineFunc adapts an ordinary function to the Engine interface.
type EngineFunc func(pattern, input []byte) (bool, error)

// Match calls f(pattern, input).
func (f EngineFunc) Match(pattern, input []byte) (bool, error) {
	return f(pattern, input)
}

// NamedEngine is an Engine registered under a display name.
// Identity is the pointer: registering the same Engine twice yields two
// distinct entries.
type NamedEngine struct {
	Name   string
	Engine Engine
}

// Language is a native source language accepted by the compile pipeline.
type Language int

const (
	LanguageC Language = iota
	LanguageCpp
)

func (l Language) String() string {
	switch l {
	case LanguageC:
		return "C"
	case LanguageCpp:
		return "C++"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}

// SourceExt is the file extension used for temporary source files.
func (l Language) SourceExt() string {
	if l == LanguageCpp {
		return ".cpp"
	}
	return ".c"
}

// ParseLanguage accepts "c", "c++" and "cpp".
func ParseLanguage(s string) (Language, error) {
	switch s {
	case "c", "C":
		return LanguageC, nil
	case "c++", "cpp", "C++":
		return LanguageCpp, nil
	default:
		return 0, fmt.Errorf("unknown language %q", s)
	}
}

// CompilerFamily groups toolchains that share a command-line dialect.
type CompilerFamily string

const (
	// FamilyUnix covers gcc and clang style drivers.
	FamilyUnix CompilerFamily = "unix"
	// FamilyMSVC covers cl.exe, which needs a vcvars environment.
	FamilyMSVC CompilerFamily = "msvc"
)
