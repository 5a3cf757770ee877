// Package daemon coordinates the background services and enforces
// single-instance execution.
//
// The Daemon owns the event store, the milestone monitor, the notifier, and
// the optional history journal. It guards startup with a file lock so only
// one instance watches a given data directory, and exposes the event and
// status operations the IPC layer serves to the CLI.
package daemon
