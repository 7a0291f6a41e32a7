// Package engine provides the engine implementations the harness can run:
// in-process regular expression libraries and adapters over natively
// compiled code.
package engine

import (
	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/platform/native"
)

// Library exposes a loaded native library whose match entry point was built
// for one fixed pattern. The pattern argument is ignored.
type Library struct {
	lib *native.Library
}

var _ domain.Engine = (*Library)(nil)

// NewLibrary opens path and binds symbol as the match entry point.
func NewLibrary(path, symbol string) (*Library, error) {
	lib, err := native.Open(path)
	if err != nil {
		return nil, err
	}
	if err := lib.BindMatch(symbol); err != nil {
		lib.Close()
		return nil, err
	}
	return &Library{lib: lib}, nil
}

// Match runs the native matcher over input.
func (l *Library) Match(_, input []byte) (bool, error) {
	return l.lib.Match(input)
}

// Close unloads the library.
func (l *Library) Close() error {
	return l.lib.Close()
}
