package control

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceReadWrite(t *testing.T) {
	s := NewSurface()
	value := "a"
	require.NoError(t, s.Register(Endpoint{
		Name:  "x",
		Read:  func() string { return value },
		Write: func(v string) error { value = v; return nil },
	}))

	got, err := s.Read("x")
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	require.NoError(t, s.Write("x", "b"))
	got, _ = s.Read("x")
	assert.Equal(t, "b", got)
	assert.True(t, s.Has("x"))
}

func TestSurfaceErrors(t *testing.T) {
	s := NewSurface()
	require.NoError(t, s.Register(Endpoint{Name: "ro", Read: func() string { return "v" }}))

	assert.ErrorIs(t, s.Register(Endpoint{Name: "ro", Read: func() string { return "" }}), ErrDuplicateEndpoint)
	assert.ErrorIs(t, s.Register(Endpoint{Name: "", Read: func() string { return "" }}), ErrInvalidEndpoint)
	assert.ErrorIs(t, s.Register(Endpoint{Name: "noread"}), ErrInvalidEndpoint)

	assert.ErrorIs(t, s.Write("ro", "1"), ErrReadOnly)
	_, err := s.Read("missing")
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
	assert.ErrorIs(t, s.Write("missing", "1"), ErrUnknownEndpoint)
	assert.False(t, s.Has("missing"))
}

func TestSurfaceWritePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	s := NewSurface()
	require.NoError(t, s.Register(Endpoint{
		Name:  "w",
		Read:  func() string { return "" },
		Write: func(string) error { return boom },
	}))
	assert.ErrorIs(t, s.Write("w", "v"), boom)
}

func TestSurfaceEndpointsSorted(t *testing.T) {
	s := NewSurface()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		n := name
		require.NoError(t, s.Register(Endpoint{Name: n, Read: func() string { return n + "-value" }}))
	}

	infos := s.Endpoints()
	require.Len(t, infos, 3)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "alpha-value", infos[0].Value)
	assert.Equal(t, "mid", infos[1].Name)
	assert.Equal(t, "zeta", infos[2].Name)
	assert.False(t, infos[2].Writable)
}
