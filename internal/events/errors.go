package events

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacity is returned when adding to a full store.
	ErrCapacity = fmt.Errorf("event store is full (max %d events)", MaxEvents)
	// ErrDuplicateName is returned when adding a name that already exists.
	ErrDuplicateName = errors.New("an event with that name already exists")
	// ErrNotFound is returned when the named event does not exist.
	ErrNotFound = errors.New("event not found")
	// ErrEmptyName is returned when an event name is blank after trimming.
	ErrEmptyName = errors.New("event name cannot be empty")
)

// CorruptStateError reports persisted state that could not be read back.
// It is surfaced to the user once at startup; the store continues empty so
// the process never crashes on bad data.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("event store at %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }
