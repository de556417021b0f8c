// Package powerstate defines the encodings shared by every layer of the
// power-suspend coordinator: the binary power state, the four-valued mode
// selector, and the identity of the trigger that requested a transition.
//
// # State
//
// The device is either Inactive (running, encoding 0) or Active (suspended,
// encoding 1). Transitions are edge-triggered: requesting the current value
// has no effect.
//
// # Mode
//
// Mode decides which trigger source may drive transitions:
//
//	Mode       Autosleep  Panel  Operator
//	Autosleep  yes        -      -
//	Userspace  -          -      yes
//	Panel      -          yes    -
//	Hybrid     yes        yes    -
//
// The default mode is Userspace.
package powerstate
