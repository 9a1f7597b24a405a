package hoist

import (
	"encoding/json"
	"strconv"

	"github.com/hoistdev/hoist/api"
)

// sendFuncFor builds the request callback handed to a plugin's factory,
// with the sender name bound so plugins cannot impersonate each other.
func (m *Manager) sendFuncFor(sender string) api.SendFunc {
	return func(receiver string, code api.Code, data []byte) (api.Code, []byte) {
		return m.route(sender, receiver, code, data)
	}
}

// route delivers one request. An empty receiver targets the host; any
// other receiver must be a declared dependency of the sender.
func (m *Manager) route(sender, receiver string, code api.Code, data []byte) (api.Code, []byte) {
	if receiver == "" {
		return m.handleHostRequest(sender, code, data)
	}

	senderRec := m.reg.Get(sender)
	if senderRec == nil {
		return api.RespUnknownError, nil
	}
	declared := false
	for _, dep := range senderRec.Meta.Dependencies {
		if dep.Name == receiver {
			declared = true
			break
		}
	}
	if !declared {
		m.log.Warn().
			Str("sender", sender).
			Str("receiver", receiver).
			Msg("request to undeclared dependency rejected")
		return api.RespNotADependency, nil
	}

	return m.deliver(sender, receiver, code, data)
}

// SendRequest lets the host call a plugin's request handler directly. The
// host is not bound by dependency declarations.
func (m *Manager) SendRequest(receiver string, code api.Code, data []byte) (api.Code, []byte) {
	return m.deliver("", receiver, code, data)
}

func (m *Manager) deliver(sender, receiver string, code api.Code, data []byte) (api.Code, []byte) {
	target := m.reg.Get(receiver)
	if target == nil || !target.Loaded() {
		return api.RespNotFound, nil
	}
	handler, ok := target.Instance.(api.RequestHandler)
	if !ok {
		return api.RespUnknownRequest, nil
	}
	return handler.HandleRequest(sender, code, data)
}

// handleHostRequest answers the fixed set of requests the manager
// understands when it is the receiver.
func (m *Manager) handleHostRequest(sender string, code api.Code, data []byte) (api.Code, []byte) {
	m.log.Debug().
		Str("sender", sender).
		Stringer("code", code).
		Msg("host request")

	switch code {
	case api.GetAppDirectory:
		return api.RespSuccess, []byte(m.appDir)

	case api.GetPluginAPI:
		return api.RespSuccess, []byte(api.Version)

	case api.GetPluginsCount:
		return api.RespSuccess, []byte(strconv.Itoa(m.reg.Count()))

	case api.GetPluginInfo:
		md := m.PluginInfo(nameOrSender(data, sender))
		if !md.Valid() {
			return api.RespNotFound, nil
		}
		out, err := json.Marshal(md)
		if err != nil {
			return api.RespUnknownError, nil
		}
		return api.RespSuccess, out

	case api.GetPluginVersion:
		md := m.PluginInfo(nameOrSender(data, sender))
		if !md.Valid() {
			return api.RespNotFound, nil
		}
		return api.RespSuccess, []byte(md.Version)

	case api.CheckPlugin:
		if len(data) == 0 {
			return api.RespNilData, nil
		}
		return api.RespSuccess, boolPayload(m.HasPlugin(string(data)))

	case api.CheckPluginLoaded:
		if len(data) == 0 {
			return api.RespNilData, nil
		}
		return api.RespSuccess, boolPayload(m.IsPluginLoaded(string(data)))
	}

	return api.RespUnknownRequest, nil
}

// nameOrSender interprets an optional name payload, falling back to the
// sender's own name.
func nameOrSender(data []byte, sender string) string {
	if len(data) > 0 {
		return string(data)
	}
	return sender
}

func boolPayload(b bool) []byte {
	if b {
		return []byte("true")
	}
	return []byte("false")
}
