package log

import (
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

// Event is one journal record. Exactly one of the payload pointers is set.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// InstanceID identifies the coordinator instance (UUID).
	InstanceID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Generation is the transition generation the event belongs to (0 if none).
	Generation uint64 `cbor:"4,keyasint,omitempty"`

	Transition *TransitionEvent `cbor:"10,keyasint,omitempty"`
	Mode       *ModeEvent       `cbor:"11,keyasint,omitempty"`
	Dispatch   *DispatchEvent   `cbor:"12,keyasint,omitempty"`
	Error      *ErrorEventData  `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryTransition indicates a transition request and its outcome.
	CategoryTransition Category = 0
	// CategoryMode indicates a mode change.
	CategoryMode Category = 1
	// CategoryDispatch indicates a completed dispatch pass.
	CategoryDispatch Category = 2
	// CategoryError indicates a subscriber failure.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransition:
		return "TRANSITION"
	case CategoryMode:
		return "MODE"
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of a transition request.
type Outcome uint8

const (
	// OutcomeApplied means the state changed and a dispatch job was queued.
	OutcomeApplied Outcome = 0
	// OutcomeUnchanged means the requested state was already current.
	OutcomeUnchanged Outcome = 1
	// OutcomeRejected means the mode gate did not authorize the trigger.
	OutcomeRejected Outcome = 2
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "APPLIED"
	case OutcomeUnchanged:
		return "UNCHANGED"
	case OutcomeRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// TransitionEvent captures a transition request.
type TransitionEvent struct {
	Trigger  powerstate.Trigger `cbor:"1,keyasint"`
	OldState powerstate.State   `cbor:"2,keyasint"`
	NewState powerstate.State   `cbor:"3,keyasint"`
	Outcome  Outcome            `cbor:"4,keyasint"`

	// Mode is the mode that was in effect when the request was evaluated.
	Mode powerstate.Mode `cbor:"5,keyasint"`
}

// ModeEvent captures a mode change.
type ModeEvent struct {
	OldMode powerstate.Mode `cbor:"1,keyasint"`
	NewMode powerstate.Mode `cbor:"2,keyasint"`
}

// DispatchEvent captures one completed notification pass.
type DispatchEvent struct {
	// State is the state subscribers were notified about: Active for a
	// suspend pass, Inactive for a resume pass.
	State powerstate.State `cbor:"1,keyasint"`

	// Handlers is the number of callbacks invoked.
	Handlers int `cbor:"2,keyasint"`

	// Failures is the number of callbacks that returned an error or panicked.
	Failures int `cbor:"3,keyasint,omitempty"`

	// Coalesced is the number of queued requests folded into this pass.
	Coalesced int `cbor:"4,keyasint,omitempty"`

	// Duration is the wall time of the pass. Stored as nanoseconds.
	Duration time.Duration `cbor:"5,keyasint"`
}

// ErrorEventData captures a failing subscriber callback.
type ErrorEventData struct {
	// Handler is the handler label.
	Handler string `cbor:"1,keyasint"`

	// State is the direction of the pass (see DispatchEvent.State).
	State powerstate.State `cbor:"2,keyasint"`

	// Message is the error message or recovered panic value.
	Message string `cbor:"3,keyasint"`

	// Panic is true if the callback panicked rather than returning an error.
	Panic bool `cbor:"4,keyasint,omitempty"`
}
