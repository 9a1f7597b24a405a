// Package api defines the contract between a hoist host and its plugins:
// the exported symbols a compiled plugin module must provide, the lifecycle
// interface a plugin instance implements, and the request/response codes
// used for routing calls between plugins and the host.
package api

// Version is the plugin API version supported by this host. A plugin whose
// metadata declares an api value with a different major component is
// rejected at discovery time.
const Version = "1.0.0"

// Exported symbol names a plugin module must provide. SymbolName and
// SymbolMetadata resolve to strings, SymbolFactory to a Factory.
const (
	SymbolName     = "HoistName"
	SymbolMetadata = "HoistMetadata"
	SymbolFactory  = "HoistFactory"
)

// SendFunc lets a plugin instance send a request to the host or to one of
// its declared dependencies. An empty receiver targets the host. Requests
// to a plugin that is not a declared dependency of the sender are rejected
// with RespNotADependency and never reach the target.
type SendFunc func(receiver string, code Code, data []byte) (Code, []byte)

// Factory is the signature of the SymbolFactory entry point. The host calls
// it exactly once per load, after every declared dependency has been loaded.
// deps holds the live instances of the declared dependencies, in declaration
// order; they remain valid until after AboutToBeUnloaded returns.
type Factory func(send SendFunc, deps []Plugin) Plugin

// Plugin is the minimal capability every plugin instance must implement.
type Plugin interface {
	// Loaded is called once, after all declared dependencies are loaded.
	// It is safe to call into dependencies from here.
	Loaded()

	// AboutToBeUnloaded is called once, just before teardown. All
	// dependencies are still valid at call time; the instance is dropped
	// and the library unloaded right after it returns.
	AboutToBeUnloaded()
}

// RequestHandler is an optional capability: a plugin implementing it can
// receive requests from the host or from plugins that declared it as a
// dependency.
type RequestHandler interface {
	HandleRequest(sender string, code Code, data []byte) (Code, []byte)
}

// MainPlugin is an optional capability: the plugin designated as "main"
// has its Main entry point invoked once all plugins finished loading.
type MainPlugin interface {
	Main()
}

// Code identifies a request or a response on the routing channel.
type Code uint16

// Requests the host understands when it is the receiver.
const (
	// GetAppDirectory takes no payload and answers the application
	// directory path.
	GetAppDirectory Code = iota
	// GetPluginAPI takes no payload and answers the host's plugin API
	// version string.
	GetPluginAPI
	// GetPluginsCount takes no payload and answers the number of
	// registered plugins in decimal ASCII.
	GetPluginsCount
	// GetPluginInfo takes an optional plugin name (the sender's own
	// record answers when absent) and returns its metadata as JSON, or
	// RespNotFound.
	GetPluginInfo
	// GetPluginVersion takes an optional plugin name and answers its
	// version string, or RespNotFound.
	GetPluginVersion
	// CheckPlugin takes a plugin name (RespNilData when missing) and
	// answers "true" or "false" for registration.
	CheckPlugin
	// CheckPluginLoaded is CheckPlugin for the loaded state.
	CheckPluginLoaded
)

// Response codes.
const (
	RespSuccess Code = 100 + iota
	RespUnknownError
	RespUnknownRequest
	RespNilData
	RespNotADependency
	RespNotFound
)

// CodeCustomBase is the first code value available for plugin-defined
// request and response codes. Everything below it is reserved.
const CodeCustomBase Code = 0x1000

func (c Code) String() string {
	switch c {
	case GetAppDirectory:
		return "get_app_directory"
	case GetPluginAPI:
		return "get_plugin_api"
	case GetPluginsCount:
		return "get_plugins_count"
	case GetPluginInfo:
		return "get_plugin_info"
	case GetPluginVersion:
		return "get_plugin_version"
	case CheckPlugin:
		return "check_plugin"
	case CheckPluginLoaded:
		return "check_plugin_loaded"
	case RespSuccess:
		return "success"
	case RespUnknownError:
		return "unknown_error"
	case RespUnknownRequest:
		return "unknown_request"
	case RespNilData:
		return "nil_data"
	case RespNotADependency:
		return "not_a_dependency"
	case RespNotFound:
		return "not_found"
	}
	return "custom"
}

// ValidName reports whether s is a valid plugin identifier: non-empty,
// ASCII letters, digits and underscores only, not starting with a digit.
func ValidName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
