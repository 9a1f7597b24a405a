package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"api": "1.0.0",
	"name": "geo",
	"prettyName": "Geo Tools",
	"version": "2.1.0",
	"author": "Ada",
	"url": "https://example.org/geo",
	"license": "MIT",
	"copyright": "2026 Ada",
	"dependencies": [{"name": "base", "version": "1.0.0"}]
}`

func TestParse_Valid(t *testing.T) {
	m, err := Parse([]byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, "geo", m.Name)
	assert.Equal(t, "Geo Tools", m.PrettyName)
	assert.Equal(t, "2.1.0", m.Version)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "base", m.Dependencies[0].Name)
	assert.Equal(t, "1.0.0", m.Dependencies[0].Version)
	assert.True(t, m.Valid())
}

func TestParse_NoDependencies(t *testing.T) {
	payload := `{"api":"1.0.0","name":"solo","prettyName":"Solo","version":"1.0.0",
		"author":"a","url":"u","license":"l","copyright":"c","dependencies":[]}`

	m, err := Parse([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies)
}

func TestParse_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"missing name", `{"api":"1.0.0","prettyName":"p","version":"1.0.0","author":"a","url":"u","license":"l","copyright":"c"}`},
		{"missing copyright", `{"api":"1.0.0","name":"x","prettyName":"p","version":"1.0.0","author":"a","url":"u","license":"l"}`},
		{"api major mismatch", `{"api":"2.0.0","name":"x","prettyName":"p","version":"1.0.0","author":"a","url":"u","license":"l","copyright":"c"}`},
		{"digit-leading name", `{"api":"1.0.0","name":"9lives","prettyName":"p","version":"1.0.0","author":"a","url":"u","license":"l","copyright":"c"}`},
		{"name with dash", `{"api":"1.0.0","name":"geo-tools","prettyName":"p","version":"1.0.0","author":"a","url":"u","license":"l","copyright":"c"}`},
		{"bad version", `{"api":"1.0.0","name":"x","prettyName":"p","version":"not.a.version","author":"a","url":"u","license":"l","copyright":"c"}`},
		{"bad dependency name", `{"api":"1.0.0","name":"x","prettyName":"p","version":"1.0.0","author":"a","url":"u","license":"l","copyright":"c","dependencies":[{"name":"","version":"1.0.0"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.payload))
			require.ErrorIs(t, err, ErrInvalid)
			assert.False(t, m.Valid(), "rejected payload must yield the zero value")
		})
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		candidate string
		min       string
		want      bool
	}{
		{"1.3.0", "1.2.0", true},
		{"1.2.0", "1.2.0", true},
		{"1.1.9", "1.2.0", false},
		{"2.0.0", "1.2.0", false}, // major mismatch, even though newer
		{"0.9.0", "1.0.0", false},
		{"1.10.0", "1.9.0", true}, // numeric, not lexicographic
		{"garbage", "1.0.0", false},
		{"1.0.0", "garbage", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Compatible(tt.candidate, tt.min),
			"Compatible(%q, %q)", tt.candidate, tt.min)
	}
}
