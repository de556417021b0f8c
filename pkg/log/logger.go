package log

// Logger is the interface applications implement to receive journal events.
// Pass nil or NoopLogger to disable the journal.
type Logger interface {
	// Log records an event. Implementations must be thread-safe. Callers
	// on the transition path never hold the state lock while calling Log.
	Log(event Event)
}

// NoopLogger discards all events. Use when the journal is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
