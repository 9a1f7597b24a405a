package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistdev/hoist/api"
	"github.com/hoistdev/hoist/internal/dynlib"
)

func record(name string) *Record {
	return &Record{
		Path: "mem://" + name,
		Lib:  dynlib.NewMemLibrary("mem://"+name, nil),
		Meta: api.Metadata{Name: name, Version: "1.0.0"},
	}
}

func TestRegister_Duplicate(t *testing.T) {
	reg := New()
	first := record("dup")

	require.NoError(t, reg.Register(first))
	err := reg.Register(record("dup"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// The first registration is untouched.
	assert.Same(t, first, reg.Get("dup"))
	assert.Equal(t, 1, reg.Count())
}

func TestGet_Missing(t *testing.T) {
	assert.Nil(t, New().Get("ghost"))
}

func TestNames_Sorted(t *testing.T) {
	reg := New()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(record(n)))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Names())
}

func TestRemove_Idempotent(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(record("x")))

	reg.Remove("x")
	reg.Remove("x")
	assert.Zero(t, reg.Count())
}

func TestResetPass(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(record("a")))

	rec := reg.Get("a")
	rec.DepStatus = DepSatisfied
	rec.GraphID = 3

	reg.ResetPass()
	assert.Equal(t, DepUnknown, rec.DepStatus)
	assert.Equal(t, -1, rec.GraphID)
}

func TestDepStatus_String(t *testing.T) {
	assert.Equal(t, "unknown", DepUnknown.String())
	assert.Equal(t, "satisfied", DepSatisfied.String())
	assert.Equal(t, "unsatisfied", DepUnsatisfied.String())
	assert.Equal(t, "checking", DepChecking.String())
}
