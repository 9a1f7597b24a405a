// Package dynlib abstracts the OS-level dynamic-library primitives behind
// narrow Loader and Library interfaces so the lifecycle engine never touches
// an unsafe handle directly.
package dynlib

import (
	"errors"
	"fmt"
	goplugin "plugin"
)

// ErrClosed is returned when a symbol is resolved on an unloaded library.
var ErrClosed = errors.New("library is unloaded")

// Loader opens dynamic libraries from disk (or from a process-local table,
// see MemLoader).
type Loader interface {
	// Open loads the library at path. An error means the file is not a
	// loadable library; callers treat that as "not a plugin".
	Open(path string) (Library, error)
}

// Library is one loaded dynamic library.
type Library interface {
	// Path returns the location the library was opened from.
	Path() string
	// HasSymbol reports whether the library exports the named symbol.
	HasSymbol(name string) bool
	// Symbol resolves the named exported symbol.
	Symbol(name string) (any, error)
	// Unload releases the library. Reports failure if the handle cannot
	// be released.
	Unload() error
}

// StringSymbol resolves a symbol expected to be an exported string
// variable (the plugin name and metadata symbols).
func StringSymbol(lib Library, name string) (string, error) {
	sym, err := lib.Symbol(name)
	if err != nil {
		return "", err
	}
	switch v := sym.(type) {
	case string:
		return v, nil
	case *string:
		return *v, nil
	}
	return "", fmt.Errorf("symbol %q in %s is not a string", name, lib.Path())
}

// GoLoader opens native Go plugins through the standard plugin package.
type GoLoader struct{}

func (GoLoader) Open(path string) (Library, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &goLibrary{path: path, p: p}, nil
}

type goLibrary struct {
	path   string
	p      *goplugin.Plugin
	closed bool
}

func (l *goLibrary) Path() string { return l.path }

func (l *goLibrary) HasSymbol(name string) bool {
	if l.closed {
		return false
	}
	_, err := l.p.Lookup(name)
	return err == nil
}

func (l *goLibrary) Symbol(name string) (any, error) {
	if l.closed {
		return nil, ErrClosed
	}
	sym, err := l.p.Lookup(name)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// Unload marks the handle closed. The Go runtime keeps the mapped code
// resident for the life of the process; the engine still treats the
// library as gone and never resolves symbols from it again.
func (l *goLibrary) Unload() error {
	if l.closed {
		return ErrClosed
	}
	l.closed = true
	return nil
}
