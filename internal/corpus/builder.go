// Package corpus assembles the ordered list of correctness and benchmark
// cases from the registered providers.
package corpus

import (
	"errors"
	"slices"

	"github.com/dontdude/regexbench/internal/domain"
)

var (
	// ErrGroupClosed is returned when a group is closed twice.
	ErrGroupClosed = errors.New("group is already closed")
	// ErrGroupNesting is returned when a group is closed while a group
	// opened after it is still open.
	ErrGroupNesting = errors.New("group nesting is invalid")
)

// Builder collects cases on behalf of one provider at a time.
type Builder struct {
	cases  []domain.Case
	source string
	open   []*group
}

var _ domain.CaseBuilder = (*Builder)(nil)

type group struct {
	b         *Builder
	benchmark bool
	closed    bool
}

func (g *group) Close() error {
	if g.closed {
		return ErrGroupClosed
	}
	top := len(g.b.open) - 1
	if top < 0 || g.b.open[top] != g {
		return ErrGroupNesting
	}
	g.b.open = g.b.open[:top]
	g.closed = true
	return nil
}

// Add appends a whole-input case. It is a benchmark case when the innermost
// open group is a benchmark group.
func (b *Builder) Add(pattern, input []byte, expected bool) {
	b.append(domain.Case{
		Pattern:   pattern,
		Input:     input,
		Expected:  expected,
		Benchmark: len(b.open) > 0 && b.open[len(b.open)-1].benchmark,
	})
}

// AddSlidingWindow appends a throughput case scanning input in windows of
// the given size.
func (b *Builder) AddSlidingWindow(pattern, input []byte, window int) {
	if window <= 0 {
		panic("corpus: sliding window size must be positive")
	}
	b.append(domain.Case{
		Pattern:    pattern,
		Input:      input,
		Expected:   true,
		Benchmark:  true,
		WindowSize: window,
	})
}

func (b *Builder) append(c domain.Case) {
	if b.source == "" {
		panic("corpus: cases can only be added while a provider is contributing")
	}
	c.Source = b.source
	b.cases = append(b.cases, c.Clone())
}

func (b *Builder) BenchmarkGroup() domain.Group {
	return b.push(true)
}

func (b *Builder) TestGroup() domain.Group {
	return b.push(false)
}

func (b *Builder) push(benchmark bool) *group {
	g := &group{b: b, benchmark: benchmark}
	b.open = append(b.open, g)
	return g
}

// Collect asks every CaseProvider for cases in registration order, closes
// any groups a provider left open, then drops cases that any CaseFilter
// skips.
func Collect(providers []domain.Provider) *Set {
	b := &Builder{}
	for _, p := range providers {
		cp, ok := p.(domain.CaseProvider)
		if !ok {
			continue
		}
		b.source = p.Name()
		cp.ProvideCases(b)
		for len(b.open) > 0 {
			b.open[len(b.open)-1].Close()
		}
	}
	b.source = ""

	var filters []domain.CaseFilter
	for _, p := range providers {
		if f, ok := p.(domain.CaseFilter); ok {
			filters = append(filters, f)
		}
	}
	cases := slices.DeleteFunc(b.cases, func(c domain.Case) bool {
		return slices.ContainsFunc(filters, func(f domain.CaseFilter) bool {
			return f.SkipCase(c.Source, c.Pattern, c.Input, c.Benchmark)
		})
	})
	return &Set{cases: slices.Clip(cases)}
}
