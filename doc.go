// Package hoist is a native plugin framework: it discovers dynamically
// loadable plugin libraries on disk, resolves a load order honoring the
// dependencies each plugin declares in its metadata, loads every plugin
// across a fixed symbol contract, routes requests between plugins and the
// host, and unloads everything in reverse order.
//
// A host drives the engine through a Manager:
//
//	m := hoist.New(hoist.WithLogger(log))
//	defer m.Close()
//
//	if err := m.SearchForPlugins("./plugins", false, nil); err != nil { ... }
//	if err := m.LoadPlugins(true, nil); err != nil { ... }
//	...
//	if err := m.UnloadPlugins(nil); err != nil { ... }
//
// Plugin modules export three symbols (api.SymbolName, api.SymbolMetadata,
// api.SymbolFactory); see the api package for the full contract.
package hoist
