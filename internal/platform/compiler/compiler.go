// Package compiler turns one C or C++ translation unit into a shared
// library that exports a single entry point.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/platform/toolchain"
)

// ContainerWorkDir is where the scratch directory is mounted inside a
// compiler container.
const ContainerWorkDir = "/work"

// ContainerRequest describes a compiler invocation inside a container.
// Command paths refer to ContainerWorkDir, which is backed by HostDir.
type ContainerRequest struct {
	HostDir  string
	Language domain.Language
	Command  []string
}

// ContainerToolchain runs a compiler in a container. It is used only when
// no host compiler is available and the host can load the produced ELF
// objects.
type ContainerToolchain interface {
	RunCompiler(ctx context.Context, req ContainerRequest) (string, error)
}

// Artifact is a shared library produced by Compile. The library stays on
// disk until Compiler.Cleanup.
type Artifact struct {
	Path     string
	Source   string
	Version  LanguageVersion
	Compiler string
}

// Compiler compiles source text synchronously, one translation unit per
// call. It is safe for concurrent use.
type Compiler struct {
	resolver  *toolchain.Resolver
	providers []domain.Provider
	run       toolchain.CommandRunner
	container ContainerToolchain
	dir       string

	mu      sync.Mutex
	scratch []string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithContainer enables the container fallback.
func WithContainer(ct ContainerToolchain) Option {
	return func(c *Compiler) { c.container = ct }
}

// WithDir sets the parent directory for scratch files.
func WithDir(dir string) Option {
	return func(c *Compiler) { c.dir = dir }
}

// WithCommandRunner replaces process execution, mainly for tests.
func WithCommandRunner(run toolchain.CommandRunner) Option {
	return func(c *Compiler) { c.run = run }
}

// New returns a Compiler that resolves toolchains through resolver and
// consults providers for CompilerFlagAdjuster hooks.
func New(resolver *toolchain.Resolver, providers []domain.Provider, opts ...Option) *Compiler {
	c := &Compiler{
		resolver:  resolver,
		providers: providers,
		run:       toolchain.ExecRunner,
		dir:       os.TempDir(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile writes source to a fresh scratch directory and builds it into a
// shared library. Success is decided by the artifact existing afterwards,
// not by the compiler's exit status. A *domain.CompileError carries the
// compiler output when no artifact appeared.
func (c *Compiler) Compile(ctx context.Context, source string, v LanguageVersion) (*Artifact, error) {
	dir, err := os.MkdirTemp(c.dir, "regexbench-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	c.track(dir)

	ext := v.Language.SourceExt()
	src := filepath.Join(dir, "regex"+ext)
	if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}
	lib := strings.TrimSuffix(src, ext) + c.resolver.Platform().LibraryExt()

	desc, err := c.resolver.Resolve(ctx, v.Language)
	if err != nil {
		if errors.Is(err, domain.ErrToolchainUnavailable) && c.containerUsable() {
			return c.compileInContainer(ctx, dir, src, lib, v)
		}
		return nil, err
	}

	token, err := StandardToken(desc.Family, v)
	if err != nil {
		return nil, err
	}

	var args []string
	if desc.Family == domain.FamilyMSVC {
		args = msvcArgs(token, src)
	} else {
		args = unixArgs(token, src, lib)
	}
	args = c.adjust(desc.Family, desc.Path, args)

	slog.Debug("Compiling native source", "compiler", desc.Path, "args", args)
	output, err := c.run(ctx, dir, desc.Environ(), desc.Path, args...)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", desc.Path, err)
	}
	return c.artifact(src, lib, v, desc.Path, output)
}

func (c *Compiler) compileInContainer(ctx context.Context, dir, src, lib string, v LanguageVersion) (*Artifact, error) {
	token, err := StandardToken(domain.FamilyUnix, v)
	if err != nil {
		return nil, err
	}
	driver := "gcc"
	if v.Language == domain.LanguageCpp {
		driver = "g++"
	}
	args := unixArgs(token,
		path.Join(ContainerWorkDir, filepath.Base(src)),
		path.Join(ContainerWorkDir, filepath.Base(lib)))
	args = c.adjust(domain.FamilyUnix, driver, args)

	slog.Info("No host compiler, compiling in container", "driver", driver, "args", args)
	output, err := c.container.RunCompiler(ctx, ContainerRequest{
		HostDir:  dir,
		Language: v.Language,
		Command:  append([]string{driver}, args...),
	})
	if err != nil {
		return nil, fmt.Errorf("container compile: %w", err)
	}
	return c.artifact(src, lib, v, "container:"+driver, output)
}

func (c *Compiler) artifact(src, lib string, v LanguageVersion, compilerPath, output string) (*Artifact, error) {
	if info, err := os.Stat(lib); err == nil && !info.IsDir() {
		return &Artifact{Path: lib, Source: src, Version: v, Compiler: compilerPath}, nil
	}
	slog.Error("Native compilation produced no library", "compiler", compilerPath, "version", v.String(), "output", output)
	return nil, &domain.CompileError{Artifact: lib, Diagnostic: output}
}

func (c *Compiler) containerUsable() bool {
	return c.container != nil && c.resolver.Platform().OS == "linux"
}

func (c *Compiler) adjust(family domain.CompilerFamily, compilerPath string, args []string) []string {
	for _, p := range c.providers {
		adjuster, ok := p.(domain.CompilerFlagAdjuster)
		if !ok {
			continue
		}
		if adjusted := adjuster.AdjustCompilerOptions(family, compilerPath, args); adjusted != nil {
			args = adjusted
		}
	}
	return args
}

func (c *Compiler) track(dir string) {
	c.mu.Lock()
	c.scratch = append(c.scratch, dir)
	c.mu.Unlock()
}

// Cleanup removes every scratch directory created so far. Libraries that
// are still mapped may fail to delete on some platforms; such errors are
// ignored.
func (c *Compiler) Cleanup() {
	c.mu.Lock()
	dirs := c.scratch
	c.scratch = nil
	c.mu.Unlock()

	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			slog.Debug("Failed to remove scratch directory", "dir", dir, "error", err)
		}
	}
}

func unixArgs(token, src, lib string) []string {
	return []string{"-shared", "-std=" + token, "-O2", "-DNDEBUG", "-o", lib, "-fPIC", src}
}

func msvcArgs(token, src string) []string {
	return []string{"/nologo", "/std:" + token, "/GL", "/O2", "/EHsc", "/DNDEBUG", "/LD", src}
}
