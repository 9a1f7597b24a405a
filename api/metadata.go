package api

import "fmt"

// Dependency is a named, minimum-versioned requirement one plugin declares
// on another plugin's presence. It is a reference by name, resolved against
// the host registry when dependencies are checked.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Metadata describes a plugin. It is the parsed form of the JSON payload a
// plugin module exports under SymbolMetadata. A zero Metadata (empty Name)
// is the invalid value; the host never produces a partially filled one.
type Metadata struct {
	API          string       `json:"api"`
	Name         string       `json:"name"`
	PrettyName   string       `json:"prettyName"`
	Version      string       `json:"version"`
	Author       string       `json:"author"`
	URL          string       `json:"url"`
	License      string       `json:"license"`
	Copyright    string       `json:"copyright"`
	Dependencies []Dependency `json:"dependencies"`
}

// Valid reports whether m carries parsed, accepted metadata.
func (m Metadata) Valid() bool { return m.Name != "" }

func (m Metadata) String() string {
	if !m.Valid() {
		return "invalid plugin metadata"
	}
	s := fmt.Sprintf("%s (%s) %s by %s", m.Name, m.PrettyName, m.Version, m.Author)
	for _, dep := range m.Dependencies {
		s += fmt.Sprintf("\n - requires %s >= %s", dep.Name, dep.Version)
	}
	return s
}
