package dynlib

import (
	"fmt"
	"sync"
)

// MemLoader is a Loader backed by an in-process table of symbol maps. It
// hosts statically linked plugins on platforms where the plugin package is
// unavailable, and drives the engine in tests without compiled libraries.
type MemLoader struct {
	mu         sync.RWMutex
	libs       map[string]map[string]any
	unloadErrs map[string]error
}

// NewMemLoader creates an empty in-memory loader.
func NewMemLoader() *MemLoader {
	return &MemLoader{libs: make(map[string]map[string]any)}
}

// Add registers a symbol table under a pseudo path. Opening that path
// later yields a library resolving exactly those symbols.
func (m *MemLoader) Add(path string, symbols map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.libs[path] = symbols
}

// AddFailing registers a symbol table whose library reports unloadErr from
// Unload. Tests use it to exercise best-effort unloading.
func (m *MemLoader) AddFailing(path string, symbols map[string]any, unloadErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.libs[path] = symbols
	if m.unloadErrs == nil {
		m.unloadErrs = make(map[string]error)
	}
	m.unloadErrs[path] = unloadErr
}

func (m *MemLoader) Open(path string) (Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	symbols, ok := m.libs[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such library", path)
	}
	return &memLibrary{path: path, symbols: symbols, unloadErr: m.unloadErrs[path]}, nil
}

type memLibrary struct {
	path    string
	symbols map[string]any
	closed  bool

	// UnloadErr, when set before Unload, makes the unload report failure.
	unloadErr error
}

// NewMemLibrary returns a standalone in-memory library, useful when a
// record is assembled without going through a Loader.
func NewMemLibrary(path string, symbols map[string]any) Library {
	return &memLibrary{path: path, symbols: symbols}
}

// NewFailingMemLibrary returns a library whose Unload always fails with
// err. Tests use it to exercise best-effort unloading.
func NewFailingMemLibrary(path string, symbols map[string]any, err error) Library {
	return &memLibrary{path: path, symbols: symbols, unloadErr: err}
}

func (l *memLibrary) Path() string { return l.path }

func (l *memLibrary) HasSymbol(name string) bool {
	if l.closed {
		return false
	}
	_, ok := l.symbols[name]
	return ok
}

func (l *memLibrary) Symbol(name string) (any, error) {
	if l.closed {
		return nil, ErrClosed
	}
	sym, ok := l.symbols[name]
	if !ok {
		return nil, fmt.Errorf("symbol %q not found in %s", name, l.path)
	}
	return sym, nil
}

func (l *memLibrary) Unload() error {
	if l.closed {
		return ErrClosed
	}
	if l.unloadErr != nil {
		return l.unloadErr
	}
	l.closed = true
	return nil
}
