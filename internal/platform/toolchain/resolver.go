// Package toolchain locates a native C or C++ compiler for the host and
// caches the decision for the lifetime of a Resolver.
package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/dontdude/regexbench/internal/domain"
)

// Descriptor identifies a resolved compiler. It is immutable once returned.
type Descriptor struct {
	Path     string
	Language domain.Language
	Family   domain.CompilerFamily
	// Env holds variables to overlay on the process environment when
	// invoking Path. Only MSVC populates it.
	Env map[string]string
}

// Environ returns the environment for invoking the compiler, or nil to
// inherit the process environment unchanged.
func (d *Descriptor) Environ() []string {
	return Environ(d.Env)
}

type resolution struct {
	desc *Descriptor
	err  error
}

type msvcResolution struct {
	env *msvcEnvironment
	err error
}

// Resolver discovers compilers. Results, including failures, are cached per
// language; concurrent first callers may race to discover but only the first
// published result is kept and every caller observes it.
type Resolver struct {
	platform  Platform
	providers []domain.Provider
	run       CommandRunner
	getenv    func(string) string
	tempDir   string

	byLanguage [2]atomic.Pointer[resolution]
	msvc       atomic.Pointer[msvcResolution]

	discoveries atomic.Int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPlatform overrides host detection.
func WithPlatform(p Platform) Option {
	return func(r *Resolver) { r.platform = p }
}

// WithCommandRunner replaces process execution, mainly for tests.
func WithCommandRunner(run CommandRunner) Option {
	return func(r *Resolver) { r.run = run }
}

// WithGetenv replaces os.Getenv, used to read PATH.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Resolver) { r.getenv = getenv }
}

// WithTempDir sets where helper scripts are written.
func WithTempDir(dir string) Option {
	return func(r *Resolver) { r.tempDir = dir }
}

// NewResolver returns a Resolver consulting providers for CompilerPicker
// hooks in order.
func NewResolver(providers []domain.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		platform:  Current(),
		providers: providers,
		run:       ExecRunner,
		getenv:    os.Getenv,
		tempDir:   os.TempDir(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Platform returns the platform the resolver targets.
func (r *Resolver) Platform() Platform {
	return r.platform
}

// Discoveries counts how many times discovery actually ran.
func (r *Resolver) Discoveries() int64 {
	return r.discoveries.Load()
}

// Resolve returns the compiler for lang. Failures wrap
// domain.ErrToolchainUnavailable and are not retried.
func (r *Resolver) Resolve(ctx context.Context, lang domain.Language) (*Descriptor, error) {
	if lang != domain.LanguageC && lang != domain.LanguageCpp {
		return nil, &domain.ToolchainError{Language: lang, Family: r.platform.Family(), Hook: "CompilerPicker", Err: fmt.Errorf("unsupported language %d", int(lang))}
	}
	slot := &r.byLanguage[lang]
	if res := slot.Load(); res != nil {
		return res.desc, res.err
	}

	res := r.discover(ctx, lang)
	if !slot.CompareAndSwap(nil, res) {
		res = slot.Load()
	} else if res.err != nil {
		slog.Warn("Native toolchain unavailable", "language", lang, "error", res.err)
	} else {
		slog.Info("Native toolchain resolved", "language", lang, "compiler", res.desc.Path, "family", res.desc.Family)
	}
	return res.desc, res.err
}

func (r *Resolver) discover(ctx context.Context, lang domain.Language) *resolution {
	r.discoveries.Add(1)
	if r.platform.Family() == domain.FamilyMSVC {
		env, err := r.msvcEnvironment(ctx)
		if err != nil {
			return &resolution{err: &domain.ToolchainError{Language: lang, Family: domain.FamilyMSVC, Hook: "CompilerPicker", Err: err}}
		}
		return &resolution{desc: &Descriptor{
			Path:     env.clExe,
			Language: lang,
			Family:   domain.FamilyMSVC,
			Env:      env.overlay,
		}}
	}

	path := r.pick(domain.FamilyUnix, r.unixCandidates(lang))
	if path == "" {
		return &resolution{err: &domain.ToolchainError{Language: lang, Family: domain.FamilyUnix, Hook: "CompilerPicker"}}
	}
	return &resolution{desc: &Descriptor{Path: path, Language: lang, Family: domain.FamilyUnix}}
}

// pick lets every CompilerPicker vote; the last non-empty answer wins and
// the first candidate is the fallback.
func (r *Resolver) pick(family domain.CompilerFamily, candidates []string) string {
	picked := ""
	for _, p := range r.providers {
		picker, ok := p.(domain.CompilerPicker)
		if !ok {
			continue
		}
		if choice := picker.PickCompiler(family, candidates); choice != "" {
			picked = choice
		}
	}
	if picked == "" && len(candidates) > 0 {
		picked = candidates[0]
	}
	return picked
}
