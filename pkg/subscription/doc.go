// Package subscription implements the handler registry of the power-suspend
// coordinator.
//
// Subscribers register a Handler carrying an optional Suspend and an optional
// Resume callback. The registry keeps handlers in insertion order; the
// dispatcher walks it forward for suspend notifications and in reverse for
// resume notifications, so the first subscriber to be told about a suspend is
// the last to be told about the resume.
//
// # Locking
//
// A single mutex guards the handler sequence and is held for the whole of a
// dispatch pass. Register and Unregister therefore block while a pass is
// running, which guarantees that a handler removed by Unregister receives no
// further callbacks once Unregister returns. Callbacks must not call back into
// the registry that is notifying them.
//
// # Ownership
//
// The registry holds references only. Callers own their Handler values and
// must unregister them before discarding any resources the callbacks use.
package subscription
