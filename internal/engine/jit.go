package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"

	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/platform/compiler"
	"github.com/dontdude/regexbench/internal/platform/native"
	"github.com/dontdude/regexbench/internal/worker"
)

// SourceData is what a JIT source template is executed with.
type SourceData struct {
	// Pattern is the pattern as a quoted C string literal.
	Pattern string
	// Length is the pattern length in bytes.
	Length int
	// Symbol is the name the match entry point must be exported under.
	Symbol string
}

const exportMacro = `#ifndef __has_attribute
  #define __has_attribute(x) 0
#endif
#ifndef LIB_EXPORT
  #if defined(_WIN32) || defined(_WIN64)
    #define LIB_EXPORT __declspec(dllexport)
  #elif defined(__GNUC__) || __has_attribute(visibility)
    #define LIB_EXPORT __attribute__((visibility("default")))
  #else
    #define LIB_EXPORT
  #endif
#endif
`

// StdRegexSource matches with the C++ standard library's ECMAScript engine.
// Invalid patterns and engine exceptions report no match.
const StdRegexSource = `#include <cstddef>
#include <regex>

` + exportMacro + `
namespace {

const char pattern[] = {{.Pattern}};

const std::regex* compiled()
{
    static const std::regex* re = []() -> const std::regex* {
        try {
            return new std::regex(pattern, {{.Length}}, std::regex::ECMAScript | std::regex::optimize);
        } catch (...) {
            return nullptr;
        }
    }();
    return re;
}

}

extern "C" LIB_EXPORT int {{.Symbol}}(const char* input, std::size_t length)
{
    const std::regex* re = compiled();
    if (re == nullptr) {
        return 0;
    }
    try {
        return std::regex_match(input, input + length, *re) ? 1 : 0;
    } catch (...) {
        return 0;
    }
}
`

// ParseSource parses a JIT source template.
func ParseSource(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse source template %s: %w", name, err)
	}
	return tmpl, nil
}

var stdRegexTemplate = template.Must(ParseSource("std-regex", StdRegexSource))

// CLiteral quotes b as a C string literal. Bytes outside printable ASCII
// become three digit octal escapes so that no following character can
// extend them. '?' is escaped to keep trigraphs out.
func CLiteral(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 2)
	sb.WriteByte('"')
	for _, c := range b {
		switch {
		case c == '"' || c == '\\' || c == '?':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "\\%03o", c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// jitEntry is the build state of one pattern. A build interrupted by its
// caller's context is not remembered.
type jitEntry struct {
	mu  sync.Mutex
	res atomic.Pointer[jitResult]
}

type jitResult struct {
	lib *native.Library
	err error
}

func (e *jitEntry) loaded() *native.Library {
	if r := e.res.Load(); r != nil {
		return r.lib
	}
	return nil
}

// JIT compiles one shared library per distinct pattern and matches through
// it. Compilation happens on first use or ahead of time through Prepare;
// failures are remembered so a bad pattern is only compiled once. A build
// cut short by its context is retried on the next use.
type JIT struct {
	compiler *compiler.Compiler
	version  compiler.LanguageVersion
	tmpl     *template.Template
	symbol   string
	workers  int

	mu      sync.RWMutex
	entries map[string]*jitEntry
}

var (
	_ domain.Engine         = (*JIT)(nil)
	_ domain.PatternBuilder = (*JIT)(nil)
)

// JITOption configures a JIT engine.
type JITOption func(*JIT)

// WithSource replaces the default std::regex source template.
func WithSource(tmpl *template.Template, v compiler.LanguageVersion) JITOption {
	return func(j *JIT) {
		j.tmpl = tmpl
		j.version = v
	}
}

// WithSymbol changes the exported match symbol the template defines.
func WithSymbol(symbol string) JITOption {
	return func(j *JIT) { j.symbol = symbol }
}

// WithWorkers bounds how many compilers Prepare runs at once.
func WithWorkers(n int) JITOption {
	return func(j *JIT) { j.workers = n }
}

// NewJIT returns a JIT engine compiling with c.
func NewJIT(c *compiler.Compiler, opts ...JITOption) *JIT {
	j := &JIT{
		compiler: c,
		version:  compiler.Cpp17,
		tmpl:     stdRegexTemplate,
		symbol:   native.DefaultMatchSymbol,
		workers:  runtime.NumCPU(),
		entries:  make(map[string]*jitEntry),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Match compiles pattern if needed and runs the resulting library.
func (j *JIT) Match(pattern, input []byte) (bool, error) {
	lib, err := j.load(context.Background(), pattern)
	if err != nil {
		return false, err
	}
	return lib.Match(input)
}

// Build compiles pattern ahead of its first match.
func (j *JIT) Build(ctx context.Context, pattern []byte) error {
	_, err := j.load(ctx, pattern)
	return err
}

// Prepare compiles every distinct pattern concurrently. Patterns that fail
// are logged and reported joined; they keep failing on Match.
func (j *JIT) Prepare(ctx context.Context, patterns [][]byte) error {
	seen := make(map[string]bool, len(patterns))
	var distinct [][]byte
	for _, p := range patterns {
		if !seen[string(p)] {
			seen[string(p)] = true
			distinct = append(distinct, p)
		}
	}

	errs := worker.RunAll(ctx, j.workers, j, distinct)
	var failed []error
	for i, err := range errs {
		if err != nil {
			slog.Warn("Pattern did not compile", "pattern", domain.HumanBytes(distinct[i]), "error", err)
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

func (j *JIT) load(ctx context.Context, pattern []byte) (*native.Library, error) {
	j.mu.RLock()
	e := j.entries[string(pattern)]
	j.mu.RUnlock()

	if e == nil {
		j.mu.Lock()
		if e = j.entries[string(pattern)]; e == nil {
			e = &jitEntry{}
			j.entries[string(pattern)] = e
		}
		j.mu.Unlock()
	}
	if r := e.res.Load(); r != nil {
		return r.lib, r.err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if r := e.res.Load(); r != nil {
		return r.lib, r.err
	}
	lib, err := j.build(ctx, pattern)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	e.res.Store(&jitResult{lib: lib, err: err})
	return lib, err
}

func (j *JIT) build(ctx context.Context, pattern []byte) (*native.Library, error) {
	var src bytes.Buffer
	data := SourceData{Pattern: CLiteral(pattern), Length: len(pattern), Symbol: j.symbol}
	if err := j.tmpl.Execute(&src, data); err != nil {
		return nil, fmt.Errorf("render source: %w", err)
	}

	art, err := j.compiler.Compile(ctx, src.String(), j.version)
	if err != nil {
		return nil, err
	}
	lib, err := native.Open(art.Path)
	if err != nil {
		return nil, err
	}
	if err := lib.BindMatch(j.symbol); err != nil {
		lib.Close()
		return nil, err
	}
	slog.Debug("Compiled pattern", "pattern", domain.HumanBytes(pattern), "library", art.Path)
	return lib, nil
}

// Compiled is the number of patterns with a loaded library.
func (j *JIT) Compiled() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	n := 0
	for _, e := range j.entries {
		if e.loaded() != nil {
			n++
		}
	}
	return n
}

// Close unloads every compiled library.
func (j *JIT) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var errs []error
	for key, e := range j.entries {
		if lib := e.loaded(); lib != nil {
			errs = append(errs, lib.Close())
		}
		delete(j.entries, key)
	}
	return errors.Join(errs...)
}
