package hoist

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/hoistdev/hoist/api"
	"github.com/hoistdev/hoist/internal/dynlib"
	"github.com/hoistdev/hoist/internal/events"
	"github.com/hoistdev/hoist/internal/graph"
	"github.com/hoistdev/hoist/internal/logging"
	"github.com/hoistdev/hoist/internal/meta"
	"github.com/hoistdev/hoist/internal/registry"
	"github.com/hoistdev/hoist/internal/scan"
)

// Manager orchestrates plugin discovery, dependency verification, ordered
// loading and unloading, and request routing. One pass (search, load or
// unload) runs at a time; lifecycle callbacks and the requests they send
// execute synchronously on the pass goroutine.
type Manager struct {
	mu sync.Mutex // serializes passes

	reg    *registry.Registry
	loader dynlib.Loader
	log    *logging.Logger
	bus    *events.Bus

	appDir     string
	mainPlugin string

	stateMu   sync.RWMutex
	loadOrder []string
	locations []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLoader replaces the default native library loader. Hosts embedding
// statically linked plugins pass a dynlib.MemLoader here.
func WithLoader(l dynlib.Loader) Option {
	return func(m *Manager) { m.loader = l }
}

// WithLogger sets the manager's log sink. The default discards everything.
func WithLogger(log *logging.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithAppDirectory overrides the application directory reported to plugins
// through the GetAppDirectory request. Defaults to the executable's directory.
func WithAppDirectory(dir string) Option {
	return func(m *Manager) { m.appDir = dir }
}

// WithMainPlugin designates the plugin whose Main entry point runs after
// every plugin finished loading.
func WithMainPlugin(name string) Option {
	return func(m *Manager) { m.mainPlugin = name }
}

// New creates a Manager. Keep one instance at the application's
// composition root; nothing enforces a singleton.
func New(opts ...Option) *Manager {
	m := &Manager{
		reg:    registry.New(),
		loader: dynlib.GoLoader{},
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.appDir == "" {
		if exe, err := os.Executable(); err == nil {
			m.appDir = filepath.Dir(exe)
		}
	}
	m.log = m.log.Sub("hoist")
	m.bus = events.NewBus(m.log)
	return m
}

// Events returns the lifecycle event bus.
func (m *Manager) Events() *events.Bus { return m.bus }

// SearchForPlugins scans dir for plugin libraries and registers every
// valid one. It only opens libraries and reads their metadata; no plugin
// object is created until LoadPlugins. The method may be called several
// times to accumulate plugins from different directories; each directory
// is remembered at most once. Files that are not loadable libraries, or
// libraries missing the required symbols, are not plugins and are skipped
// silently. It returns nil if at least one plugin was registered.
func (m *Manager) SearchForPlugins(dir string, recursive bool, cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths, err := scan.ListLibraries(dir, recursive)
	if err != nil {
		m.report(cb, ErrListFiles, err.Error())
		m.log.Error().Err(err).Str("dir", dir).Msg("cannot scan plugin directory")
		return fmt.Errorf("%w: %v", ErrListFiles, err)
	}

	found := false
	for _, path := range paths {
		if m.examineCandidate(path, cb) {
			found = true
		}
	}

	if !found {
		return fmt.Errorf("%w in %s", ErrNothingFound, dir)
	}
	m.rememberLocation(dir)
	return nil
}

// examineCandidate opens one library file and registers it if it is a
// valid plugin. Returns true only on successful registration.
func (m *Manager) examineCandidate(path string, cb Callback) bool {
	lib, err := m.loader.Open(path)
	if err != nil {
		m.log.Debug().Str("path", path).Msg("not a loadable library")
		return false
	}

	if !lib.HasSymbol(api.SymbolName) ||
		!lib.HasSymbol(api.SymbolMetadata) ||
		!lib.HasSymbol(api.SymbolFactory) {
		// Not a plugin. Intentionally not an error.
		m.log.Debug().Str("path", path).Msg("library has no plugin symbols")
		m.discard(lib)
		return false
	}

	name, err := dynlib.StringSymbol(lib, api.SymbolName)
	if err != nil {
		m.report(cb, ErrCannotParseMetadata, path)
		m.discard(lib)
		return false
	}
	m.bus.Emit(events.Payload{Event: events.EventPluginFound, Plugin: name, Path: path})

	if m.reg.Get(name) != nil {
		m.report(cb, ErrNameAlreadyExists, path)
		m.log.Warn().Str("plugin", name).Str("path", path).Msg("duplicate plugin name, skipped")
		m.discard(lib)
		return false
	}

	payload, err := dynlib.StringSymbol(lib, api.SymbolMetadata)
	if err != nil {
		m.report(cb, ErrCannotParseMetadata, path)
		m.discard(lib)
		return false
	}
	md, err := meta.Parse([]byte(payload))
	if err != nil || md.Name != name {
		m.report(cb, ErrCannotParseMetadata, path)
		m.log.Warn().Err(err).Str("plugin", name).Str("path", path).Msg("rejected plugin metadata")
		m.discard(lib)
		return false
	}

	rec := &registry.Record{Path: path, Lib: lib, Meta: md}
	if err := m.reg.Register(rec); err != nil {
		m.report(cb, ErrNameAlreadyExists, path)
		m.discard(lib)
		return false
	}

	m.bus.Emit(events.Payload{Event: events.EventPluginRegistered, Plugin: name, Path: path})
	m.log.Info().
		Str("plugin", name).
		Str("version", md.Version).
		Str("path", path).
		Int("dependencies", len(md.Dependencies)).
		Msg("plugin registered")
	return true
}

func (m *Manager) discard(lib dynlib.Library) {
	if err := lib.Unload(); err != nil {
		m.log.Debug().Err(err).Str("path", lib.Path()).Msg("discard failed")
	}
}

func (m *Manager) rememberLocation(dir string) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	for _, loc := range m.locations {
		if loc == dir {
			return
		}
	}
	m.locations = append(m.locations, dir)
}

// LoadPlugins loads every plugin found by previous SearchForPlugins calls,
// in an order where each plugin comes after all of its dependencies. With
// tryToContinue set, a plugin whose dependencies cannot be satisfied is
// skipped and the rest still load; otherwise the first failure aborts the
// pass. A dependency cycle always aborts the pass with ErrDependencyCycle
// and loads nothing new. Plugins already live from an earlier pass are
// left untouched.
func (m *Manager) LoadPlugins(tryToContinue bool, cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass := uuid.NewString()[:8]
	log := m.log.With("pass", pass)
	log.Debug().Int("plugins", m.reg.Count()).Bool("try_to_continue", tryToContinue).Msg("load pass starting")

	// Dependency results are valid for one pass only: a new search may
	// have added a plugin that was missing last time.
	m.reg.ResetPass()

	var nodes []graph.Node
	for _, name := range m.reg.Names() {
		rec := m.reg.Get(name)
		if err := m.checkDependencies(rec, cb); err != nil {
			m.bus.Emit(events.Payload{Event: events.EventLoadError, Plugin: name, Path: rec.Path, Err: err})
			log.Warn().Err(err).Str("plugin", name).Msg("dependency check failed")
			if !tryToContinue {
				return err
			}
			continue
		}
		rec.GraphID = len(nodes)
		nodes = append(nodes, graph.Node{Name: name})
	}

	// Wire parent edges. Every dependency of a satisfied plugin is itself
	// satisfied, so its graph index is always valid here.
	for _, name := range m.reg.Names() {
		rec := m.reg.Get(name)
		if rec.GraphID < 0 {
			continue
		}
		for _, dep := range rec.Meta.Dependencies {
			nodes[rec.GraphID].Parents = append(nodes[rec.GraphID].Parents, m.reg.Get(dep.Name).GraphID)
		}
	}

	order, err := graph.New(nodes).TopologicalSort()
	if err != nil {
		m.report(cb, ErrDependencyCycle, "")
		m.bus.Emit(events.Payload{Event: events.EventLoadError, Err: ErrDependencyCycle})
		log.Error().Int("nodes", len(nodes)).Msg("dependency cycle, nothing loaded")
		// The previous load order stays valid for plugins loaded earlier.
		return ErrDependencyCycle
	}

	m.stateMu.Lock()
	m.loadOrder = order
	m.stateMu.Unlock()

	for _, name := range order {
		if err := m.loadOne(name, log); err != nil {
			m.report(cb, err, m.reg.Get(name).Path)
			if !tryToContinue {
				return err
			}
		}
	}

	m.runMainPlugin(log)
	log.Debug().Strs("order", order).Msg("load pass finished")
	return nil
}

// loadOne creates the plugin instance for name and fires its Loaded
// callback. Dependencies are guaranteed already loaded by the sort order.
func (m *Manager) loadOne(name string, log *logging.Logger) error {
	rec := m.reg.Get(name)
	if rec.Loaded() {
		return nil
	}

	sym, err := rec.Lib.Symbol(api.SymbolFactory)
	if err != nil {
		return fmt.Errorf("%w: plugin %s: %v", ErrUnknown, name, err)
	}
	var factory api.Factory
	switch f := sym.(type) {
	case api.Factory:
		factory = f
	case *api.Factory:
		factory = *f
	case func(api.SendFunc, []api.Plugin) api.Plugin:
		factory = f
	case *func(api.SendFunc, []api.Plugin) api.Plugin:
		factory = *f
	default:
		return fmt.Errorf("%w: plugin %s: factory symbol has wrong type", ErrUnknown, name)
	}

	deps := make([]api.Plugin, len(rec.Meta.Dependencies))
	for i, dep := range rec.Meta.Dependencies {
		deps[i] = m.reg.Get(dep.Name).Instance
	}

	instance := factory(m.sendFuncFor(name), deps)
	if instance == nil {
		return fmt.Errorf("%w: plugin %s: factory returned no instance", ErrUnknown, name)
	}
	m.reg.SetInstance(name, instance)
	instance.Loaded()

	m.bus.Emit(events.Payload{Event: events.EventPluginLoaded, Plugin: name, Path: rec.Path})
	log.Info().Str("plugin", name).Str("version", rec.Meta.Version).Msg("plugin loaded")
	return nil
}

func (m *Manager) runMainPlugin(log *logging.Logger) {
	if m.mainPlugin == "" {
		return
	}
	rec := m.reg.Get(m.mainPlugin)
	if rec == nil || !rec.Loaded() {
		log.Warn().Str("plugin", m.mainPlugin).Msg("main plugin not loaded, entry point skipped")
		return
	}
	mp, ok := rec.Instance.(api.MainPlugin)
	if !ok {
		log.Warn().Str("plugin", m.mainPlugin).Msg("main plugin has no Main entry point")
		return
	}
	log.Info().Str("plugin", m.mainPlugin).Msg("running main plugin")
	mp.Main()
}

// checkDependencies verifies, transitively, that every declared dependency
// of rec exists and is version-compatible. Results are memoized on the
// record for the duration of the pass, so a plugin depended on by many
// others is checked once. A record whose check is already on the stack
// passes: the check only answers does-it-exist-and-match-version, and a
// genuine cycle is reported by the graph sort afterwards.
func (m *Manager) checkDependencies(rec *registry.Record, cb Callback) error {
	switch rec.DepStatus {
	case registry.DepSatisfied, registry.DepChecking:
		return nil
	case registry.DepUnsatisfied:
		return rec.DepErr
	}
	rec.DepStatus = registry.DepChecking

	for _, dep := range rec.Meta.Dependencies {
		depRec := m.reg.Get(dep.Name)
		if depRec == nil {
			return m.failDependencies(rec, cb,
				fmt.Errorf("plugin %s: %w: %s", rec.Meta.Name, ErrDependencyNotFound, dep.Name))
		}
		if !meta.Compatible(depRec.Meta.Version, dep.Version) {
			return m.failDependencies(rec, cb,
				fmt.Errorf("plugin %s: %w: %s %s (need >= %s)",
					rec.Meta.Name, ErrDependencyBadVersion, dep.Name, depRec.Meta.Version, dep.Version))
		}
		if err := m.checkDependencies(depRec, cb); err != nil {
			return m.failDependencies(rec, nil, err)
		}
	}

	rec.DepStatus = registry.DepSatisfied
	return nil
}

func (m *Manager) failDependencies(rec *registry.Record, cb Callback, err error) error {
	rec.DepStatus = registry.DepUnsatisfied
	rec.DepErr = err
	m.report(cb, err, rec.Path)
	return err
}

// UnloadPlugins unloads every plugin, walking the last load order in
// reverse so dependents go down before their dependencies, then drains
// records that were discovered but never loaded. Unloading is best-effort:
// a failing library does not stop the rest, and any failure surfaces as
// ErrUnloadNotAll. The remembered search locations are cleared; reloading
// requires a fresh SearchForPlugins.
func (m *Manager) UnloadPlugins(cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stateMu.Lock()
	order := m.loadOrder
	m.loadOrder = nil
	m.locations = nil
	m.stateMu.Unlock()

	allUnloaded := true
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		rec := m.reg.Get(name)
		if rec == nil {
			continue
		}
		if !m.unloadRecord(name, rec, cb) {
			allUnloaded = false
		}
	}

	// Plugins never loaded (failed dependencies, later search passes)
	// still hold open libraries; drain them in any order.
	for _, name := range m.reg.Names() {
		if !m.unloadRecord(name, m.reg.Get(name), cb) {
			allUnloaded = false
		}
	}

	if !allUnloaded {
		m.report(cb, ErrUnloadNotAll, "")
		return ErrUnloadNotAll
	}
	return nil
}

// unloadRecord tears one record down and removes it from the registry.
// The instance is always notified before its library handle goes away.
func (m *Manager) unloadRecord(name string, rec *registry.Record, cb Callback) bool {
	if rec.Instance != nil {
		rec.Instance.AboutToBeUnloaded()
		m.reg.SetInstance(name, nil)
	}

	if err := rec.Lib.Unload(); err != nil {
		m.report(cb, err, rec.Path)
		m.bus.Emit(events.Payload{Event: events.EventUnloadError, Plugin: name, Path: rec.Path, Err: err})
		m.log.Error().Err(err).Str("plugin", name).Msg("library did not unload")
		m.reg.Remove(name)
		return false
	}
	m.reg.Remove(name)

	m.bus.Emit(events.Payload{Event: events.EventPluginUnloaded, Plugin: name, Path: rec.Path})
	m.log.Info().Str("plugin", name).Msg("plugin unloaded")
	return true
}

// Close unloads everything still loaded. Safe to call after a manual
// UnloadPlugins.
func (m *Manager) Close() error {
	if m.reg.Count() == 0 {
		return nil
	}
	return m.UnloadPlugins(nil)
}

//
// Getters
//

// AppDirectory returns the application directory reported to plugins.
func (m *Manager) AppDirectory() string { return m.appDir }

// PluginsCount returns the number of registered plugins.
func (m *Manager) PluginsCount() int { return m.reg.Count() }

// PluginsList returns the names of all registered plugins, sorted.
func (m *Manager) PluginsList() []string { return m.reg.Names() }

// PluginLocations returns the directories plugins were found in.
func (m *Manager) PluginLocations() []string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	locs := make([]string, len(m.locations))
	copy(locs, m.locations)
	return locs
}

// LoadOrder returns the most recent load order.
func (m *Manager) LoadOrder() []string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	order := make([]string, len(m.loadOrder))
	copy(order, m.loadOrder)
	return order
}

// HasPlugin reports whether a plugin with this name is registered.
func (m *Manager) HasPlugin(name string) bool { return m.reg.Get(name) != nil }

// HasPluginVersion reports whether the named plugin is registered with a
// version compatible with minVersion.
func (m *Manager) HasPluginVersion(name, minVersion string) bool {
	rec := m.reg.Get(name)
	return rec != nil && meta.Compatible(rec.Meta.Version, minVersion)
}

// IsPluginLoaded reports whether the named plugin holds a live instance.
func (m *Manager) IsPluginLoaded(name string) bool {
	rec := m.reg.Get(name)
	return rec != nil && rec.Loaded()
}

// PluginInfo returns the metadata of the named plugin; the zero Metadata
// if unknown.
func (m *Manager) PluginInfo(name string) api.Metadata {
	rec := m.reg.Get(name)
	if rec == nil {
		return api.Metadata{}
	}
	return rec.Meta
}
