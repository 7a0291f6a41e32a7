// Package native loads shared libraries at runtime and calls their match
// entry point without cgo.
//
// The entry point has the C signature
//
//	int matches(const char *input, size_t length);
//
// The length travels as a uintptr, which has the width of a host pointer
// and therefore of size_t on every supported platform.
package native

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/dontdude/regexbench/internal/domain"
)

// DefaultMatchSymbol is the conventional name of the exported entry point.
const DefaultMatchSymbol = "matches"

type matchFunc func(input unsafe.Pointer, length uintptr) int32

// Library is an open shared library. Close must not be called while a
// Match call is in flight.
type Library struct {
	path   string
	handle uintptr

	mu      sync.Mutex
	symbols map[string]uintptr

	match  atomic.Pointer[matchFunc]
	closed atomic.Bool
}

// Open loads the shared library at path, resolving all symbols eagerly.
func Open(path string) (*Library, error) {
	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return &Library{
		path:    path,
		handle:  handle,
		symbols: make(map[string]uintptr),
	}, nil
}

// Name is the library file name.
func (l *Library) Name() string {
	return filepath.Base(l.path)
}

// Path is the library location on disk.
func (l *Library) Path() string {
	return l.path
}

// FindSymbol returns the address of an exported symbol.
func (l *Library) FindSymbol(name string) (uintptr, error) {
	if l.closed.Load() {
		return 0, domain.ErrLibraryClosed
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if addr, ok := l.symbols[name]; ok {
		return addr, nil
	}
	addr, err := lookupSymbol(l.handle, name)
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("`%s` was not found in `%s`: %w", name, l.Name(), domain.ErrSymbolNotFound)
	}
	l.symbols[name] = addr
	return addr, nil
}

// BindMatch binds the exported function name as the match entry point.
// A library can be bound only once.
func (l *Library) BindMatch(name string) error {
	if l.match.Load() != nil {
		return fmt.Errorf("match function is already set for `%s`: %w", l.Name(), domain.ErrMatchAlreadyBound)
	}
	addr, err := l.FindSymbol(name)
	if err != nil {
		return err
	}

	fn := new(matchFunc)
	purego.RegisterFunc(fn, addr)
	if !l.match.CompareAndSwap(nil, fn) {
		return fmt.Errorf("match function is already set for `%s`: %w", l.Name(), domain.ErrMatchAlreadyBound)
	}
	return nil
}

// Match copies input into a buffer that lives only for the duration of the
// call and reports whether the native function returned non-zero.
func (l *Library) Match(input []byte) (bool, error) {
	if l.closed.Load() {
		return false, domain.ErrLibraryClosed
	}
	fn := l.match.Load()
	if fn == nil {
		return false, fmt.Errorf("`%s`: %w", l.Name(), domain.ErrMatchNotBound)
	}

	// Zero-length inputs still get a valid, non-nil address.
	buf := make([]byte, max(len(input), 1))
	copy(buf, input)
	result := (*fn)(unsafe.Pointer(unsafe.SliceData(buf)), uintptr(len(input)))
	runtime.KeepAlive(buf)
	return result != 0, nil
}

// Close unloads the library. Further calls fail with domain.ErrLibraryClosed.
func (l *Library) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return closeLibrary(l.handle)
}
