package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Handler is one subscriber. Either callback may be nil; a nil callback is
// skipped for that direction.
type Handler struct {
	// Name is an optional label used in logs and introspection.
	Name string

	// Suspend is invoked when the device becomes suspended (state Active).
	Suspend func(ctx context.Context) error

	// Resume is invoked when the device resumes (state Inactive).
	Resume func(ctx context.Context) error
}

// Entry is a registered handler together with its subscription handle.
type Entry struct {
	// ID is the subscription handle returned by Register.
	ID uuid.UUID

	// Handler is the registered subscriber.
	Handler *Handler
}

// Label returns the handler name, falling back to the short handle.
func (e Entry) Label() string {
	if e.Handler != nil && e.Handler.Name != "" {
		return e.Handler.Name
	}
	return e.ID.String()[:8]
}

// Info is a read-only snapshot of an entry for introspection surfaces.
type Info struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	HasSuspend bool   `json:"suspend"`
	HasResume  bool   `json:"resume"`
}
