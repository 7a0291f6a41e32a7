// Package config loads the YAML run configuration. A loaded File is a
// domain.Provider implementing every hook.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/platform/compiler"
	"github.com/dontdude/regexbench/internal/platform/native"
)

// Compiler tunes toolchain discovery and invocation per compiler family.
type Compiler struct {
	// Pick selects a candidate by exact path or by substring.
	Pick           map[domain.CompilerFamily]string   `yaml:"pick"`
	ExtraFlags     map[domain.CompilerFamily][]string `yaml:"extra_flags"`
	RemoveFlags    map[domain.CompilerFamily][]string `yaml:"remove_flags"`
	ContainerImage string                             `yaml:"container_image"`
}

// Skip excludes engines and cases.
type Skip struct {
	Engines    []string `yaml:"engines"`
	Patterns   []string `yaml:"patterns"`
	Benchmarks bool     `yaml:"benchmarks"`
	Tests      bool     `yaml:"tests"`
}

// Progress controls live progress output.
type Progress struct {
	Disabled bool `yaml:"disabled"`
}

// NativeEngine registers an engine built from native source.
// With Source set, the library is compiled once and matches every case
// regardless of pattern. Otherwise one library is compiled per pattern from
// Template, or from the built-in std::regex template when Template is empty.
type NativeEngine struct {
	Name       string `yaml:"name"`
	Language   string `yaml:"language"`
	Standard   int    `yaml:"standard"`
	Extensions bool   `yaml:"extensions"`
	Source     string `yaml:"source"`
	Template   string `yaml:"template"`
	Symbol     string `yaml:"symbol"`
}

// Version is the language revision the engine is compiled with.
func (ne NativeEngine) Version() (compiler.LanguageVersion, error) {
	lang, err := domain.ParseLanguage(ne.Language)
	if err != nil {
		return compiler.LanguageVersion{}, err
	}
	return compiler.LanguageVersion{Language: lang, Revision: ne.Standard, Extensions: ne.Extensions}, nil
}

// MatchSymbol is the configured symbol or the default one.
func (ne NativeEngine) MatchSymbol() string {
	if ne.Symbol == "" {
		return native.DefaultMatchSymbol
	}
	return ne.Symbol
}

// Case is an extra corpus entry.
type Case struct {
	Pattern   string `yaml:"pattern"`
	Input     string `yaml:"input"`
	InputFile string `yaml:"input_file"`
	Expected  bool   `yaml:"expected"`
	Benchmark bool   `yaml:"benchmark"`
	Window    int    `yaml:"window"`
}

// File is a parsed configuration file.
type File struct {
	Compiler      Compiler       `yaml:"compiler"`
	Skip          Skip           `yaml:"skip"`
	Progress      Progress       `yaml:"progress"`
	TextFile      string         `yaml:"text_file"`
	NativeEngines []NativeEngine `yaml:"native_engines"`
	Cases         []Case         `yaml:"cases"`

	name string
}

var (
	_ domain.CaseProvider         = (*File)(nil)
	_ domain.EngineFilter         = (*File)(nil)
	_ domain.CaseFilter           = (*File)(nil)
	_ domain.ProgressSwitch       = (*File)(nil)
	_ domain.CompilerPicker       = (*File)(nil)
	_ domain.CompilerFlagAdjuster = (*File)(nil)
)

// Load reads and validates the file at path. Relative paths inside it are
// resolved against its directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	f.name = filepath.Base(path)
	f.resolve(filepath.Dir(path))
	return f, nil
}

// Parse decodes and validates YAML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	f.name = "config"
	return f, nil
}

func (f *File) validate() error {
	var errs []error
	for family := range f.Compiler.Pick {
		errs = append(errs, checkFamily(family))
	}
	for family := range f.Compiler.ExtraFlags {
		errs = append(errs, checkFamily(family))
	}
	for family := range f.Compiler.RemoveFlags {
		errs = append(errs, checkFamily(family))
	}
	names := make(map[string]bool)
	for i, ne := range f.NativeEngines {
		if ne.Name == "" {
			errs = append(errs, fmt.Errorf("native_engines[%d]: name is required", i))
		} else if names[ne.Name] {
			errs = append(errs, fmt.Errorf("native_engines[%d]: duplicate name %q", i, ne.Name))
		}
		names[ne.Name] = true
		if _, err := domain.ParseLanguage(ne.Language); err != nil {
			errs = append(errs, fmt.Errorf("native_engines[%d]: %w", i, err))
		}
		if ne.Standard <= 0 {
			errs = append(errs, fmt.Errorf("native_engines[%d]: standard is required", i))
		}
		if ne.Source != "" && ne.Template != "" {
			errs = append(errs, fmt.Errorf("native_engines[%d]: source and template are exclusive", i))
		}
	}
	for i, c := range f.Cases {
		if c.Window < 0 {
			errs = append(errs, fmt.Errorf("cases[%d]: window must not be negative", i))
		}
		if c.Input != "" && c.InputFile != "" {
			errs = append(errs, fmt.Errorf("cases[%d]: input and input_file are exclusive", i))
		}
	}
	return errors.Join(errs...)
}

func checkFamily(family domain.CompilerFamily) error {
	if family != domain.FamilyUnix && family != domain.FamilyMSVC {
		return fmt.Errorf("unknown compiler family %q", family)
	}
	return nil
}

func (f *File) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	f.TextFile = abs(f.TextFile)
	for i := range f.NativeEngines {
		f.NativeEngines[i].Source = abs(f.NativeEngines[i].Source)
		f.NativeEngines[i].Template = abs(f.NativeEngines[i].Template)
	}
	for i := range f.Cases {
		f.Cases[i].InputFile = abs(f.Cases[i].InputFile)
	}
}

func (f *File) Name() string {
	return f.name
}

// ProvideCases adds the configured cases. Whole-input cases marked as
// benchmarks go into a benchmark group.
func (f *File) ProvideCases(b domain.CaseBuilder) {
	for _, c := range f.Cases {
		input := []byte(c.Input)
		if c.InputFile != "" {
			data, err := os.ReadFile(c.InputFile)
			if err != nil {
				slog.Error("Skipping case with unreadable input", "file", c.InputFile, "error", err)
				continue
			}
			input = data
		}
		switch {
		case c.Window > 0:
			b.AddSlidingWindow([]byte(c.Pattern), input, c.Window)
		case c.Benchmark:
			g := b.BenchmarkGroup()
			b.Add([]byte(c.Pattern), input, c.Expected)
			g.Close()
		default:
			b.Add([]byte(c.Pattern), input, c.Expected)
		}
	}
}

func (f *File) SkipEngine(name string) bool {
	return slices.Contains(f.Skip.Engines, name)
}

func (f *File) SkipCase(_ string, pattern, _ []byte, benchmark bool) bool {
	if (benchmark && f.Skip.Benchmarks) || (!benchmark && f.Skip.Tests) {
		return true
	}
	return slices.Contains(f.Skip.Patterns, string(pattern))
}

func (f *File) ProgressDisabled() bool {
	return f.Progress.Disabled
}

func (f *File) PickCompiler(family domain.CompilerFamily, candidates []string) string {
	return pick(f.Compiler.Pick[family], candidates)
}

// AdjustCompilerOptions drops the configured flags, then appends the extra
// ones.
func (f *File) AdjustCompilerOptions(family domain.CompilerFamily, _ string, args []string) []string {
	remove := f.Compiler.RemoveFlags[family]
	out := slices.DeleteFunc(slices.Clone(args), func(a string) bool {
		return slices.Contains(remove, a)
	})
	return append(out, f.Compiler.ExtraFlags[family]...)
}

// pick returns the candidate equal to want, else the first containing it,
// else "".
func pick(want string, candidates []string) string {
	if want == "" {
		return ""
	}
	if slices.Contains(candidates, want) {
		return want
	}
	for _, c := range candidates {
		if strings.Contains(c, want) {
			return c
		}
	}
	return ""
}
