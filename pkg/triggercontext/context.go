// Package triggercontext provides context keys for propagating the
// transition that caused a dispatch pass (generation, trigger and target
// state) to subscriber callbacks. It is a neutral dependency that both
// pkg/dispatch and subscriber code can import without an import cycle.
package triggercontext

import (
	"context"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

// Transition describes the accepted state change a pass was queued for.
// When requests are coalesced it describes the latest one.
type Transition struct {
	Generation uint64
	Trigger    powerstate.Trigger
	State      powerstate.State
}

type transitionKey struct{}

// ContextWithTransition returns a new context carrying the transition.
func ContextWithTransition(ctx context.Context, t Transition) context.Context {
	return context.WithValue(ctx, transitionKey{}, t)
}

// TransitionFromContext extracts the transition from the context.
// The second return value is false if none is set.
func TransitionFromContext(ctx context.Context) (Transition, bool) {
	t, ok := ctx.Value(transitionKey{}).(Transition)
	return t, ok
}

// GenerationFromContext returns the transition generation, or 0 if not set.
func GenerationFromContext(ctx context.Context) uint64 {
	t, _ := TransitionFromContext(ctx)
	return t.Generation
}
