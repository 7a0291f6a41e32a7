package engine

import (
	"log/slog"
	"slices"

	"github.com/dontdude/regexbench/internal/domain"
)

// Builtin returns the in-process engines in registration order.
func Builtin() ([]*domain.NamedEngine, error) {
	caching, err := CachingRegexp(1024)
	if err != nil {
		return nil, err
	}
	return []*domain.NamedEngine{
		{Name: "go-regexp", Engine: Regexp()},
		{Name: "go-regexp-cached", Engine: caching},
		{Name: "regexp2", Engine: Regexp2()},
	}, nil
}

// Filter drops every engine that some EngineFilter provider skips.
func Filter(engines []*domain.NamedEngine, providers []domain.Provider) []*domain.NamedEngine {
	var filters []domain.EngineFilter
	for _, p := range providers {
		if f, ok := p.(domain.EngineFilter); ok {
			filters = append(filters, f)
		}
	}
	return slices.DeleteFunc(slices.Clone(engines), func(e *domain.NamedEngine) bool {
		for _, f := range filters {
			if f.SkipEngine(e.Name) {
				slog.Debug("Skipping engine", "engine", e.Name, "provider", f.Name())
				return true
			}
		}
		return false
	})
}
