package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"daycounter/internal/logging"
)

// MaxEvents caps how many events the store accepts.
const MaxEvents = 100

// Store provides thread-safe access to the tracked events and their JSON
// persistence. Events keep insertion order.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	events []Event
}

// Open creates a store bound to path and loads any persisted state. A
// missing file is a fresh start. Corrupt state returns the empty store
// together with a *CorruptStateError so the caller can surface it once and
// decide whether to reset.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "events"),
	}
	if err := s.load(); err != nil {
		return s, err
	}
	return s, nil
}

// Path returns the JSON file backing the store.
func (s *Store) Path() string { return s.path }

// Add appends a new event and persists. The trimmed name must be non-empty
// and unique; the store must be below capacity.
func (s *Store) Add(name string, start time.Time) (Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Event{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= MaxEvents {
		return Event{}, ErrCapacity
	}
	if s.indexOf(name) >= 0 {
		return Event{}, ErrDuplicateName
	}

	event := Event{Name: name, Start: start, Enabled: true}
	s.events = append(s.events, event)

	if err := s.save(); err != nil {
		s.events = s.events[:len(s.events)-1]
		return Event{}, fmt.Errorf("persist store: %w", err)
	}

	s.logger.Debug("added event",
		logging.String(logging.FieldEventName, name),
		logging.Time("start", start))
	return event.Clone(), nil
}

// Remove deletes the named event and persists.
func (s *Store) Remove(name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(name)
	if idx < 0 {
		return ErrNotFound
	}

	removed := s.events[idx]
	s.events = append(s.events[:idx], s.events[idx+1:]...)

	if err := s.save(); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}

	s.logger.Debug("removed event", logging.String(logging.FieldEventName, removed.Name))
	return nil
}

// SetEnabled pauses or resumes milestone notifications for one event.
func (s *Store) SetEnabled(name string, enabled bool) (Event, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(name)
	if idx < 0 {
		return Event{}, ErrNotFound
	}
	if s.events[idx].Enabled == enabled {
		return s.events[idx].Clone(), nil
	}

	s.events[idx].Enabled = enabled
	if err := s.save(); err != nil {
		s.events[idx].Enabled = !enabled
		return Event{}, fmt.Errorf("persist store: %w", err)
	}

	s.logger.Debug("toggled event",
		logging.String(logging.FieldEventName, name),
		logging.Bool("enabled", enabled))
	return s.events[idx].Clone(), nil
}

// MarkNotified records that the given day count was announced for the named
// event. It persists only when the day was not already present and reports
// whether the set changed. On a persist failure the in-memory mark is kept
// and the error returned: the announcement already went out, and losing the
// mark on restart beats re-announcing on every scan while the disk stays
// broken. The notified set never shrinks.
func (s *Store) MarkNotified(name string, day int) (bool, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(name)
	if idx < 0 {
		return false, ErrNotFound
	}

	notified := s.events[idx].Notified
	pos := sort.SearchInts(notified, day)
	if pos < len(notified) && notified[pos] == day {
		return false, nil
	}

	notified = append(notified, 0)
	copy(notified[pos+1:], notified[pos:])
	notified[pos] = day
	s.events[idx].Notified = notified

	if err := s.save(); err != nil {
		return true, fmt.Errorf("persist store: %w", err)
	}
	return true, nil
}

// Get returns a copy of the named event.
func (s *Store) Get(name string) (Event, bool) {
	name = strings.TrimSpace(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(name)
	if idx < 0 {
		return Event{}, false
	}
	return s.events[idx].Clone(), true
}

// List returns copies of all events in insertion order.
func (s *Store) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	for i, e := range s.events {
		out[i] = e.Clone()
	}
	return out
}

// Count returns the number of tracked events.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Save flushes the current state to disk. Mutating operations already
// persist; this exists for shutdown flushes.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Reset backs up whatever file is on disk and persists an empty store. It is
// the recovery path after a CorruptStateError.
func (s *Store) Reset() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := ""
	if _, err := os.Stat(s.path); err == nil {
		backup = fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
		if err := os.Rename(s.path, backup); err != nil {
			return "", fmt.Errorf("back up corrupt store: %w", err)
		}
	}

	s.events = nil
	if err := s.save(); err != nil {
		return backup, fmt.Errorf("persist store: %w", err)
	}

	s.logger.Info("event store reset",
		logging.String("path", s.path),
		logging.String("backup", backup),
		logging.String(logging.FieldEventType, "store_reset"))
	return backup, nil
}

// indexOf returns the position of the named event, or -1. Callers hold the lock.
func (s *Store) indexOf(name string) int {
	for i, e := range s.events {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// load reads the store from disk into memory.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return &CorruptStateError{Path: s.path, Err: err}
	}

	if len(data) == 0 {
		return nil
	}

	var records []eventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return &CorruptStateError{Path: s.path, Err: err}
	}
	if len(records) > MaxEvents {
		return &CorruptStateError{Path: s.path, Err: fmt.Errorf("%d events exceeds capacity %d", len(records), MaxEvents)}
	}

	events := make([]Event, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			return &CorruptStateError{Path: s.path, Err: errors.New("event with empty name")}
		}
		if _, dup := seen[name]; dup {
			return &CorruptStateError{Path: s.path, Err: fmt.Errorf("duplicate event name %q", name)}
		}
		seen[name] = struct{}{}

		event, err := record.toEvent()
		if err != nil {
			return &CorruptStateError{Path: s.path, Err: fmt.Errorf("event %q: %w", name, err)}
		}
		event.Name = name
		events = append(events, event)
	}

	s.events = events
	s.logger.Debug("loaded event store",
		logging.Int("event_count", len(events)),
		logging.String("path", s.path))
	return nil
}

// save writes the store to disk atomically. Callers hold the lock.
func (s *Store) save() error {
	records := make([]eventRecord, len(s.events))
	for i, e := range s.events {
		records[i] = recordFromEvent(e)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
