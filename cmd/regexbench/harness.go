package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dontdude/regexbench/internal/config"
	"github.com/dontdude/regexbench/internal/corpus"
	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/engine"
	"github.com/dontdude/regexbench/internal/platform/compiler"
	"github.com/dontdude/regexbench/internal/platform/docker"
	"github.com/dontdude/regexbench/internal/platform/toolchain"
)

// JITEngineName is the name of the engine registered by --jit.
const JITEngineName = "std-regex-jit"

// harness holds the collaborators shared by every subcommand.
type harness struct {
	cfg       *config.File
	providers []domain.Provider
	compiler  *compiler.Compiler

	mu      sync.Mutex
	closers []io.Closer
}

func newHarness(ctx context.Context) (*harness, error) {
	h := &harness{}
	defaults := corpus.Defaults{}

	// 1. Load configuration
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		h.cfg = cfg
		defaults.TextPath = cfg.TextFile
	}

	// 2. Register providers; later pickers win
	h.providers = append(h.providers, defaults)
	if h.cfg != nil {
		h.providers = append(h.providers, h.cfg)
	}
	h.providers = append(h.providers, config.Env{Getenv: os.Getenv})

	// 3. Build the compile pipeline, with the container fallback if asked
	var opts []compiler.Option
	if h.cfg != nil && h.cfg.Compiler.ContainerImage != "" {
		dc, err := docker.NewCompiler(ctx, h.cfg.Compiler.ContainerImage)
		if err != nil {
			slog.Warn("Container compiler unavailable", "image", h.cfg.Compiler.ContainerImage, "error", err)
		} else {
			opts = append(opts, compiler.WithContainer(dc))
			h.track(dc)
		}
	}
	resolver := toolchain.NewResolver(h.providers)
	h.compiler = compiler.New(resolver, h.providers, opts...)
	return h, nil
}

func (h *harness) track(c io.Closer) {
	h.mu.Lock()
	h.closers = append(h.closers, c)
	h.mu.Unlock()
}

// Close unloads native libraries, then removes scratch files.
func (h *harness) Close() {
	h.mu.Lock()
	closers := h.closers
	h.closers = nil
	h.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			slog.Debug("Failed to close resource", "error", err)
		}
	}
	h.compiler.Cleanup()
}

// corpus collects the cases of every provider.
func (h *harness) corpus() *corpus.Set {
	return corpus.Collect(h.providers)
}

// engines returns the built-in engines followed by the native ones, in
// registration order, with skipped and unselected engines removed. Native
// engines are prepared concurrently; one that fails to build is logged and
// left out.
func (h *harness) engines(ctx context.Context, patterns [][]byte, only []string) ([]*domain.NamedEngine, error) {
	builtin, err := engine.Builtin()
	if err != nil {
		return nil, err
	}

	var specs []config.NativeEngine
	if h.cfg != nil {
		specs = slices.Clone(h.cfg.NativeEngines)
	}
	if jitEnabled {
		specs = append(specs, config.NativeEngine{Name: JITEngineName, Language: "c++", Standard: 17})
	}

	prepared := make([]*domain.NamedEngine, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, spec := range specs {
		if len(only) > 0 && !slices.Contains(only, spec.Name) {
			continue
		}
		g.Go(func() error {
			e, err := h.prepare(gctx, spec, patterns)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				slog.Error("Native engine not registered", "engine", spec.Name, "error", err)
				return nil
			}
			prepared[i] = &domain.NamedEngine{Name: spec.Name, Engine: e}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := builtin
	for _, e := range prepared {
		if e != nil {
			all = append(all, e)
		}
	}
	if len(only) > 0 {
		all = slices.DeleteFunc(all, func(e *domain.NamedEngine) bool {
			return !slices.Contains(only, e.Name)
		})
	}
	return engine.Filter(all, h.providers), nil
}

// prepare compiles and loads one native engine.
func (h *harness) prepare(ctx context.Context, spec config.NativeEngine, patterns [][]byte) (domain.Engine, error) {
	v, err := spec.Version()
	if err != nil {
		return nil, err
	}

	// Whole-source engines match any pattern with one library.
	if spec.Source != "" {
		src, err := os.ReadFile(spec.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to read source: %w", err)
		}
		art, err := h.compiler.Compile(ctx, string(src), v)
		if err != nil {
			return nil, err
		}
		lib, err := engine.NewLibrary(art.Path, spec.MatchSymbol())
		if err != nil {
			return nil, err
		}
		h.track(lib)
		slog.Info("Native engine loaded", "engine", spec.Name, "library", art.Path, "compiler", art.Compiler)
		return lib, nil
	}

	// Template engines compile one library per pattern.
	text := engine.StdRegexSource
	if spec.Template != "" {
		data, err := os.ReadFile(spec.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		text = string(data)
	}
	tmpl, err := engine.ParseSource(spec.Name, text)
	if err != nil {
		return nil, err
	}
	jit := engine.NewJIT(h.compiler, engine.WithSource(tmpl, v), engine.WithSymbol(spec.MatchSymbol()))
	h.track(jit)
	if err := jit.Prepare(ctx, patterns); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Some patterns failed to compile", "engine", spec.Name, "compiled", jit.Compiled())
	}
	slog.Info("Native engine loaded", "engine", spec.Name, "patterns", jit.Compiled())
	return jit, nil
}

// progressDisabled reports whether a flag or any provider turns progress off.
func (h *harness) progressDisabled() bool {
	if noProgress {
		return true
	}
	for _, p := range h.providers {
		if s, ok := p.(domain.ProgressSwitch); ok && s.ProgressDisabled() {
			return true
		}
	}
	return false
}
