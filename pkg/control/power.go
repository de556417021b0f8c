package control

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/service"
	"github.com/powersuspend/powersuspend-go/pkg/version"
)

// Power endpoint names.
const (
	EndpointState   = "state"
	EndpointMode    = "mode"
	EndpointVersion = "version"
)

// Target is the coordinator the power endpoints operate on.
type Target interface {
	State() powerstate.State
	Mode() powerstate.Mode
	SetState(state powerstate.State) error
	SetMode(mode powerstate.Mode) bool
}

// NewPowerSurface creates a surface with the state, mode and version
// endpoints bound to target. Failure wraps service.ErrResourceExhausted.
func NewPowerSurface(target Target) (*Surface, error) {
	s := NewSurface()

	endpoints := []Endpoint{
		{
			Name:        EndpointState,
			Description: "power state (0=inactive, 1=active)",
			Read: func() string {
				return strconv.Itoa(int(target.State()))
			},
			Write: func(value string) error {
				return writeState(target, value)
			},
		},
		{
			Name:        EndpointMode,
			Description: "suspend mode (0=autosleep, 1=userspace, 2=panel, 3=hybrid)",
			Read: func() string {
				return strconv.Itoa(int(target.Mode()))
			},
			Write: func(value string) error {
				writeMode(target, value)
				return nil
			},
		},
		{
			Name:        EndpointVersion,
			Description: "coordinator version",
			Read:        version.Identifier,
		},
	}

	for _, ep := range endpoints {
		if err := s.Register(ep); err != nil {
			return nil, fmt.Errorf("%w: control surface: %v", service.ErrResourceExhausted, err)
		}
	}
	return s, nil
}

// writeState forwards 0 or 1 to the target. Any other value is ignored.
// The whole value, surrounding whitespace aside, must be an integer: a
// trailing suffix such as "1abc" makes the write a no-op rather than
// being read as its leading digits.
func writeState(target Target, value string) error {
	if target.Mode() != powerstate.Userspace {
		return service.ErrInvalidOperation
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	if n != int(powerstate.Inactive) && n != int(powerstate.Active) {
		return nil
	}
	return target.SetState(powerstate.State(n))
}

// writeMode forwards 0..3 to the target. Any other value is ignored,
// using the same whole-value parse as writeState.
func writeMode(target Target, value string) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return
	}
	if n > int(powerstate.Hybrid) {
		return
	}
	target.SetMode(powerstate.Mode(n))
}
