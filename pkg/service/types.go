package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/dispatch"
	"github.com/powersuspend/powersuspend-go/pkg/log"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

// Service errors.
var (
	// ErrInvalidOperation is returned for an operator state write while the
	// mode is not Userspace.
	ErrInvalidOperation = errors.New("invalid operation in current mode")

	// ErrResourceExhausted is returned when workers or the control surface
	// cannot be set up.
	ErrResourceExhausted = errors.New("resource exhausted")

	ErrAlreadyStarted = errors.New("service already started")
	ErrNotRunning     = errors.New("service not running")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ServiceState represents the service lifecycle state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateRunning - service accepts transitions.
	StateRunning

	// StateStopping - service is draining the dispatcher.
	StateStopping

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a PowerService.
type Config struct {
	// InitialMode is the mode at construction (default: Userspace).
	InitialMode powerstate.Mode

	// SlowHandlerThreshold is the callback duration above which a warning
	// is logged. Zero disables the check.
	SlowHandlerThreshold time.Duration

	// InstanceID identifies this coordinator in the journal.
	// If empty, a random UUID is generated.
	InstanceID string

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// Journal receives transition, mode, dispatch and error events.
	// If nil, the journal is disabled.
	Journal log.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		InitialMode:          powerstate.DefaultMode,
		SlowHandlerThreshold: dispatch.DefaultSlowHandlerThreshold,
	}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if !c.InitialMode.Valid() {
		return fmt.Errorf("%w: initial mode %d", ErrInvalidConfig, c.InitialMode)
	}
	if c.SlowHandlerThreshold < 0 {
		return fmt.Errorf("%w: negative slow handler threshold", ErrInvalidConfig)
	}
	return nil
}

// EventType identifies a service event.
type EventType uint8

const (
	// EventTransition - the state changed and a dispatch job was queued.
	EventTransition EventType = iota

	// EventRejected - the mode gate refused a trigger.
	EventRejected

	// EventModeChanged - the mode changed.
	EventModeChanged
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventTransition:
		return "TRANSITION"
	case EventRejected:
		return "REJECTED"
	case EventModeChanged:
		return "MODE_CHANGED"
	default:
		return "UNKNOWN"
	}
}

// Event represents a service event.
type Event struct {
	// Type is the event type.
	Type EventType

	// Trigger is the request source (transition and rejected events).
	Trigger powerstate.Trigger

	// OldState and NewState describe the transition. For rejected events
	// NewState is the requested state.
	OldState powerstate.State
	NewState powerstate.State

	// Generation is the transition generation (transition events).
	Generation uint64

	// OldMode and NewMode describe a mode change. For other events NewMode
	// is the mode in effect.
	OldMode powerstate.Mode
	NewMode powerstate.Mode
}

// EventHandler handles service events.
type EventHandler func(Event)
