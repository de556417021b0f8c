package control

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Surface errors.
var (
	ErrUnknownEndpoint   = errors.New("unknown endpoint")
	ErrReadOnly          = errors.New("endpoint is read-only")
	ErrDuplicateEndpoint = errors.New("endpoint already registered")
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
)

// Endpoint is a named value exposed by a Surface.
type Endpoint struct {
	// Name is the endpoint key, e.g. "state".
	Name string

	// Description is a short human-readable description.
	Description string

	// Read returns the current value. Required.
	Read func() string

	// Write applies a new value. Nil makes the endpoint read-only.
	Write func(value string) error
}

// Writable returns true if the endpoint accepts writes.
func (e *Endpoint) Writable() bool {
	return e.Write != nil
}

// EndpointInfo describes an endpoint together with its current value.
type EndpointInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Writable    bool   `json:"writable"`
	Value       string `json:"value"`
}

// Surface is a registry of named endpoints. It is safe for concurrent use.
type Surface struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{endpoints: make(map[string]*Endpoint)}
}

// Register adds an endpoint.
func (s *Surface) Register(ep Endpoint) error {
	if ep.Name == "" || ep.Read == nil {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, ep.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.endpoints[ep.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEndpoint, ep.Name)
	}
	s.endpoints[ep.Name] = &ep
	return nil
}

// Read returns the current value of the named endpoint.
func (s *Surface) Read(name string) (string, error) {
	ep, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	return ep.Read(), nil
}

// Write applies value to the named endpoint.
func (s *Surface) Write(name, value string) error {
	ep, err := s.lookup(name)
	if err != nil {
		return err
	}
	if !ep.Writable() {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	return ep.Write(value)
}

// Endpoints returns all endpoints with their current values, sorted by name.
func (s *Surface) Endpoints() []EndpointInfo {
	s.mu.RLock()
	eps := make([]*Endpoint, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		eps = append(eps, ep)
	}
	s.mu.RUnlock()

	sort.Slice(eps, func(i, j int) bool { return eps[i].Name < eps[j].Name })

	infos := make([]EndpointInfo, len(eps))
	for i, ep := range eps {
		infos[i] = EndpointInfo{
			Name:        ep.Name,
			Description: ep.Description,
			Writable:    ep.Writable(),
			Value:       ep.Read(),
		}
	}
	return infos
}

// Has returns true if an endpoint with the name is registered.
func (s *Surface) Has(name string) bool {
	_, err := s.lookup(name)
	return err == nil
}

func (s *Surface) lookup(name string) (*Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ep, ok := s.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	return ep, nil
}
