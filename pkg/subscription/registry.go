package subscription

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the ordered sequence of registered handlers.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends h to the end of the sequence and returns its handle.
// Registering nil is a no-op that returns uuid.Nil. Registering the same
// handler twice creates two entries.
func (r *Registry) Register(h *Handler) uuid.UUID {
	if h == nil {
		return uuid.Nil
	}

	id := uuid.New()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{ID: id, Handler: h})
	return id
}

// Unregister removes the first entry holding h. It reports whether an entry
// was removed; unregistering an unknown handler is a no-op.
func (r *Registry) Unregister(h *Handler) bool {
	if h == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.Handler == h {
			r.removeAt(i)
			return true
		}
	}
	return false
}

// Remove removes the entry with the given handle. Unknown handles are a no-op.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.ID == id {
			r.removeAt(i)
			return true
		}
	}
	return false
}

// removeAt deletes entry i preserving the order of the rest. Caller holds mu.
func (r *Registry) removeAt(i int) {
	copy(r.entries[i:], r.entries[i+1:])
	r.entries[len(r.entries)-1] = Entry{}
	r.entries = r.entries[:len(r.entries)-1]
}

// Walk calls fn for every entry while holding the registry lock, forward in
// registration order or in reverse. fn must not call Register, Unregister or
// Remove on the same registry.
func (r *Registry) Walk(reverse bool, fn func(Entry)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reverse {
		for i := len(r.entries) - 1; i >= 0; i-- {
			fn(r.entries[i])
		}
		return
	}
	for _, e := range r.entries {
		fn(e)
	}
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns a snapshot of the registry in registration order.
func (r *Registry) Entries() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Info{
			ID:         e.ID.String(),
			Name:       e.Handler.Name,
			HasSuspend: e.Handler.Suspend != nil,
			HasResume:  e.Handler.Resume != nil,
		})
	}
	return out
}

// Clear removes every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
