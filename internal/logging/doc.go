// Package logging assembles the structured slog loggers used across the
// daycounter daemon and CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standardized attribute keys so every component
// reports events, milestones, and failures with the same shape. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
