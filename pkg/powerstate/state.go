package powerstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Encoding errors.
var (
	ErrInvalidState = errors.New("invalid power state")
	ErrInvalidMode  = errors.New("invalid power suspend mode")
)

// State is the device-wide power state.
type State uint8

const (
	// Inactive means the device is running (not suspended).
	Inactive State = 0

	// Active means power suspend is in effect.
	Active State = 1
)

// Valid reports whether s is one of the defined encodings.
func (s State) Valid() bool {
	return s == Inactive || s == Active
}

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Inactive:
		return "INACTIVE"
	case Active:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// ParseState parses a numeric encoding ("0" or "1") or a state name.
func ParseState(s string) (State, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "inactive", "resume":
		return Inactive, nil
	case "active", "suspend":
		return Active, nil
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
	st := State(n)
	if !st.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidState, n)
	}
	return st, nil
}

// Mode selects which trigger source is authoritative for transitions.
type Mode uint8

const (
	// Autosleep lets the idle/autosleep policy engine drive transitions.
	Autosleep Mode = 0

	// Userspace lets an operator drive transitions through the control surface.
	Userspace Mode = 1

	// Panel lets the display-panel driver drive transitions.
	Panel Mode = 2

	// Hybrid accepts both the autosleep and panel triggers.
	Hybrid Mode = 3
)

// DefaultMode is the mode in effect after initialization.
const DefaultMode = Userspace

// Valid reports whether m is one of the four defined encodings.
func (m Mode) Valid() bool {
	return m <= Hybrid
}

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Autosleep:
		return "AUTOSLEEP"
	case Userspace:
		return "USERSPACE"
	case Panel:
		return "PANEL"
	case Hybrid:
		return "HYBRID"
	default:
		return "UNKNOWN"
	}
}

// Allows reports whether a trigger from t may request a transition while
// mode m is in effect.
func (m Mode) Allows(t Trigger) bool {
	switch t {
	case TriggerAutosleep:
		return m == Autosleep || m == Hybrid
	case TriggerPanel:
		return m == Panel || m == Hybrid
	case TriggerOperator:
		return m == Userspace
	default:
		return false
	}
}

// ParseMode parses a numeric encoding ("0".."3") or a mode name.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "autosleep":
		return Autosleep, nil
	case "userspace":
		return Userspace, nil
	case "panel":
		return Panel, nil
	case "hybrid":
		return Hybrid, nil
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	m := Mode(n)
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMode, n)
	}
	return m, nil
}

// Trigger identifies the source of a transition request.
type Trigger uint8

const (
	// TriggerOperator is a direct write through the control surface.
	TriggerOperator Trigger = iota

	// TriggerAutosleep is the idle/autosleep policy hook.
	TriggerAutosleep

	// TriggerPanel is the display-panel driver hook.
	TriggerPanel
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerOperator:
		return "OPERATOR"
	case TriggerAutosleep:
		return "AUTOSLEEP"
	case TriggerPanel:
		return "PANEL"
	default:
		return "UNKNOWN"
	}
}

// ParseTrigger parses a trigger name as used on the transport surfaces.
func ParseTrigger(s string) (Trigger, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "operator", "userspace":
		return TriggerOperator, nil
	case "autosleep":
		return TriggerAutosleep, nil
	case "panel":
		return TriggerPanel, nil
	default:
		return 0, fmt.Errorf("unknown trigger source %q", s)
	}
}
