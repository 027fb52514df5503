package contentrepo

import "context"

// RawFile identifies a stored file in a backend listing.
type RawFile struct {
	Path  string
	Label string
}

// RawEntry is a backend's un-normalized representation of one entry: the
// file identity plus the raw text exactly as stored. Workflow listings also
// carry the slug and a metadata bag.
type RawEntry struct {
	File     RawFile
	Data     string
	Slug     string
	MetaData map[string]any
}

// BackendEntry is the entry object handed to a backend's persist verb.
type BackendEntry struct {
	Path string
	Slug string
	Raw  string
}

// Backend is the capability contract every repository provider implements.
//
// Listing verbs return entries in the backend's own order; the facade never
// resorts them. Verbs that hit the provider take a context and return the
// first error encountered; the facade adds no retry on top.
type Backend interface {
	// AuthComponent names the authentication UI descriptor for this
	// provider. Opaque to the facade.
	AuthComponent() string

	// Authenticate exchanges credentials for a session. Rejected
	// credentials fail with an error wrapping ErrAuth.
	Authenticate(ctx context.Context, creds Credentials) (*Session, error)

	// SetUser injects a previously obtained session so that subsequent
	// calls run authenticated. Idempotent.
	SetUser(sess *Session)

	// EntriesByFolder lists every file with the given extension under
	// folder.
	EntriesByFolder(ctx context.Context, folder, extension string) ([]RawEntry, error)

	// EntriesByFiles fetches the given configured files.
	EntriesByFiles(ctx context.Context, files []CollectionFile) ([]RawEntry, error)

	// Entry fetches a single entry by its canonical path. Absence fails
	// with an error wrapping ErrNotFound.
	Entry(ctx context.Context, collection *Collection, slug, path string) (RawEntry, error)

	// UnpublishedEntries pages through entries currently in the editorial
	// workflow.
	UnpublishedEntries(ctx context.Context, page, perPage int) ([]RawEntry, error)

	// UnpublishedEntry fetches one in-workflow entry.
	UnpublishedEntry(ctx context.Context, collection, slug string) (RawEntry, error)

	// PersistEntry writes one entry and its media files. Failures wrap
	// ErrPersist. Conflicting concurrent writes to the same slug are the
	// backend's to detect; the facade provides no serialization.
	PersistEntry(ctx context.Context, entry BackendEntry, media []MediaFile, meta PersistMeta) error

	// UpdateUnpublishedEntryStatus moves an in-workflow entry to a new
	// editorial status.
	UpdateUnpublishedEntryStatus(ctx context.Context, collection, slug string, status EditorialStatus) error

	// PublishUnpublishedEntry promotes an in-workflow entry to published
	// content.
	PublishUnpublishedEntry(ctx context.Context, collection, slug string, status EditorialStatus) error

	// DeleteEntry removes a stored entry.
	DeleteEntry(ctx context.Context, path, commitMessage string) error
}

// SessionStore persists a single cached user session in a durable key-value
// store under a fixed key. Session data is opaque to implementations; there
// is no expiry, versioning, or encryption.
type SessionStore interface {
	// Retrieve returns the stored session, or (nil, nil) when none is
	// held.
	Retrieve(ctx context.Context) (*Session, error)

	// Store replaces the stored session.
	Store(ctx context.Context, sess *Session) error
}
