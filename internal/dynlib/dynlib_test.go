package dynlib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemLoader_OpenAndResolve(t *testing.T) {
	name := "alpha"
	loader := NewMemLoader()
	loader.Add("mem://alpha", map[string]any{
		"HoistName": &name,
		"Answer":    42,
	})

	lib, err := loader.Open("mem://alpha")
	require.NoError(t, err)

	assert.Equal(t, "mem://alpha", lib.Path())
	assert.True(t, lib.HasSymbol("HoistName"))
	assert.False(t, lib.HasSymbol("Missing"))

	got, err := StringSymbol(lib, "HoistName")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got)

	_, err = lib.Symbol("Missing")
	require.Error(t, err)
}

func TestMemLoader_OpenUnknown(t *testing.T) {
	_, err := NewMemLoader().Open("mem://nope")
	require.Error(t, err)
}

func TestStringSymbol_PlainAndPointer(t *testing.T) {
	s := "v"
	lib := NewMemLibrary("mem://x", map[string]any{"a": "v", "b": &s, "c": 7})

	for _, sym := range []string{"a", "b"} {
		got, err := StringSymbol(lib, sym)
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	}

	_, err := StringSymbol(lib, "c")
	require.Error(t, err)
}

func TestMemLibrary_Unload(t *testing.T) {
	lib := NewMemLibrary("mem://x", map[string]any{"a": 1})
	require.NoError(t, lib.Unload())

	assert.False(t, lib.HasSymbol("a"))
	_, err := lib.Symbol("a")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, lib.Unload(), ErrClosed)
}

func TestFailingMemLibrary_Unload(t *testing.T) {
	boom := errors.New("stuck")
	lib := NewFailingMemLibrary("mem://x", nil, boom)

	require.ErrorIs(t, lib.Unload(), boom)
	// The handle stays open after a failed unload.
	assert.Equal(t, "mem://x", lib.Path())
}
