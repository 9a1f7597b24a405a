package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	valid := []string{"a", "plugin_one", "Plugin2", "_hidden", "x9_Y"}
	for _, name := range valid {
		assert.True(t, ValidName(name), "%q should be valid", name)
	}

	invalid := []string{"", "9lives", "has-dash", "has space", "dot.name", "naïve"}
	for _, name := range invalid {
		assert.False(t, ValidName(name), "%q should be invalid", name)
	}
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "get_app_directory", GetAppDirectory.String())
	assert.Equal(t, "not_a_dependency", RespNotADependency.String())
	assert.Equal(t, "custom", (CodeCustomBase + 7).String())
}

func TestMetadata_String(t *testing.T) {
	assert.Equal(t, "invalid plugin metadata", Metadata{}.String())

	m := Metadata{
		Name: "geo", PrettyName: "Geo", Version: "1.0.0", Author: "Ada",
		Dependencies: []Dependency{{Name: "base", Version: "0.9.0"}},
	}
	s := m.String()
	assert.Contains(t, s, "geo")
	assert.Contains(t, s, "requires base >= 0.9.0")
}
