package testsupport

import (
	"testing"
	"time"

	"daycounter/internal/config"
	"daycounter/internal/events"
	"daycounter/internal/history"
	"daycounter/internal/logging"
)

// MustOpenStore opens the event store for tests.
func MustOpenStore(t testing.TB, cfg *config.Config) *events.Store {
	t.Helper()

	store, err := events.Open(cfg.DataFile(), logging.NewNop())
	if err != nil {
		t.Fatalf("events.Open: %v", err)
	}
	return store
}

// MustOpenHistory opens the milestone journal for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	journal, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		journal.Close()
	})
	return journal
}

// AddEvent registers an event for tests using the provided store.
func AddEvent(t testing.TB, store *events.Store, name string, start time.Time) events.Event {
	t.Helper()

	event, err := store.Add(name, start)
	if err != nil {
		t.Fatalf("store.Add %s: %v", name, err)
	}
	return event
}
