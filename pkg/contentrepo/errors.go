package contentrepo

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnknownBackend indicates the configured backend name is not one of
	// the supported providers. Surfaced at construction time, never at call
	// time.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrAuth indicates the backend rejected the supplied credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound indicates the backend reported the entry as absent.
	ErrNotFound = errors.New("entry not found")

	// ErrCreateNotAllowed indicates a new entry was persisted against a
	// collection whose configuration forbids creation.
	ErrCreateNotAllowed = errors.New("collection does not allow new entries")

	// ErrPersist indicates a backend write failed (conflict, permission,
	// quota). The facade performs no retry or rollback.
	ErrPersist = errors.New("persist failed")

	// ErrUnsupportedFormat indicates no serialization engine resolves for a
	// collection/entry pair.
	ErrUnsupportedFormat = errors.New("no format for entry")

	// ErrWorkflowUnsupported indicates the backend has no editorial
	// workflow support.
	ErrWorkflowUnsupported = errors.New("editorial workflow not supported by backend")
)

// EntryError represents an error from an entry-level operation.
type EntryError struct {
	Collection string
	Slug       string
	Op         string
	Err        error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry operation %s failed for %s/%s: %v", e.Op, e.Collection, e.Slug, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// BackendError represents an error surfaced by a backend verb.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend operation %s failed on %s: %v", e.Op, e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
