package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffSequence(t *testing.T) {
	b := NewBackoff(time.Second, 8*time.Second, 0)

	var got []time.Duration
	for i := 0; i < 6; i++ {
		got = append(got, b.Next())
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 8 * time.Second, 8 * time.Second,
	}, got)
	assert.Equal(t, 6, b.Attempts())

	b.Reset()
	assert.Equal(t, 0, b.Attempts())
	assert.Equal(t, time.Second, b.Next())
}

func TestBackoffJitterBounds(t *testing.T) {
	b := NewBackoff(time.Second, time.Minute, 0.25)
	for i := 0; i < 50; i++ {
		b.Reset()
		d := b.Next()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1250*time.Millisecond)
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoff(0, 0, -1)
	assert.Equal(t, InitialBackoff, b.Next())
	assert.Equal(t, 2*InitialBackoff, b.Next())
}

func TestBackoffNeverDropsBelowInitial(t *testing.T) {
	b := NewBackoff(time.Minute, 0, 0)
	for i := 0; i < 4; i++ {
		assert.Equal(t, time.Minute, b.Next())
	}

	b = NewBackoff(4*time.Second, time.Second, 0)
	assert.Equal(t, 4*time.Second, b.Next())
	assert.Equal(t, 4*time.Second, b.Next())
}
