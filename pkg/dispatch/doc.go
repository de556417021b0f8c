// Package dispatch delivers power-state notifications to registered
// subscribers on background workers.
//
// A Dispatcher runs two workers, one per direction. A job targeting
// powerstate.Active is a suspend pass: the registry is walked in insertion
// order and every non-nil Suspend callback is invoked. A job targeting
// powerstate.Inactive is a resume pass: the registry is walked in reverse and
// every non-nil Resume callback is invoked.
//
// Each direction has a single pending slot. Enqueueing a job while another
// job of the same direction is still pending replaces it; the passes are
// coalesced. A job that is already running is never affected, so a request
// accepted during a pass always results in one more pass.
//
// Passes are delivered in generation order across directions: a worker only
// takes its pending job when the other direction is idle or holds a pending
// job with a higher generation.
//
// Callbacks are isolated from each other. A callback that returns an error
// or panics is logged and journaled, and the pass continues with the next
// handler.
package dispatch
