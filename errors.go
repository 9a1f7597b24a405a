package hoist

import "errors"

// Failure taxonomy for manager operations. Callers match these with
// errors.Is; operations wrap them with plugin names and paths for context.
var (
	// ErrUnknown covers failures outside the taxonomy below.
	ErrUnknown = errors.New("unknown error")

	// Raised by SearchForPlugins.
	ErrNothingFound        = errors.New("no plugins found")
	ErrNameAlreadyExists   = errors.New("plugin name already exists")
	ErrCannotParseMetadata = errors.New("cannot parse plugin metadata")
	ErrListFiles           = errors.New("cannot list plugin directory")

	// Raised by LoadPlugins.
	ErrDependencyNotFound   = errors.New("dependency not found")
	ErrDependencyBadVersion = errors.New("dependency has incompatible version")
	ErrDependencyCycle      = errors.New("dependency cycle detected")

	// Raised by UnloadPlugins.
	ErrUnloadNotAll = errors.New("not all plugins unloaded")
)

// Callback receives each individual failure during a manager operation,
// with a detail string (usually the library path involved). Operations
// that skip-and-continue report every skipped candidate through it.
type Callback func(err error, detail string)

func (m *Manager) report(cb Callback, err error, detail string) {
	if cb != nil {
		cb(err, detail)
	}
}
