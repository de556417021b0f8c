package transport

import (
	"math/rand"
	"sync"
	"time"
)

// Reconnect delays for WatchReconnect.
const (
	InitialBackoff    = 500 * time.Millisecond
	MaxBackoff        = 30 * time.Second
	BackoffMultiplier = 2.0
	JitterFactor      = 0.25
)

// Backoff calculates exponential reconnect delays with jitter.
type Backoff struct {
	mu       sync.Mutex
	current  time.Duration
	initial  time.Duration
	max      time.Duration
	jitter   float64
	attempts int
	rng      *rand.Rand
}

// NewBackoff creates a backoff starting at initial and capped at max.
// Zero values select InitialBackoff and MaxBackoff. A max below initial
// is raised to initial.
func NewBackoff(initial, max time.Duration, jitter float64) *Backoff {
	if initial <= 0 {
		initial = InitialBackoff
	}
	if max <= 0 {
		max = MaxBackoff
	}
	if max < initial {
		max = initial
	}
	if jitter < 0 {
		jitter = 0
	}
	return &Backoff{
		current: initial,
		initial: initial,
		max:     max,
		jitter:  jitter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.current
	if b.jitter > 0 {
		delay += time.Duration(float64(delay) * b.jitter * b.rng.Float64())
	}

	b.attempts++
	next := time.Duration(float64(b.current) * BackoffMultiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next
	return delay
}

// Reset returns to the initial delay after a successful connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since the last Reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}
