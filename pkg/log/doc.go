// Package log provides the structured event journal of the power-suspend
// coordinator.
//
// The journal is separate from operational logging (slog). It captures every
// transition request, mode change, dispatch pass and subscriber failure as a
// machine-readable Event, so that the order in which subscribers were told
// about suspend and resume can be reconstructed after the fact.
//
// # Basic Usage
//
//	// For development: journal to the console via slog
//	cfg.Journal = log.NewSlogAdapter(slog.Default())
//
//	// For production: append to a binary file
//	cfg.Journal, _ = log.NewFileLogger("/var/log/powersuspend/events.plog")
//
//	// Both
//	cfg.Journal = log.NewMultiLogger(adapter, fileLogger)
//
// # File Format
//
// Journal files are a sequence of CBOR-encoded events with integer keys,
// conventionally named with a .plog extension. "powersuspendd log view" and
// "powersuspendd log stats" read them back.
package log
