package contentrepo

import "context"

// Service is the unified operation set the editing application works
// against. One backend is active per service instance; collection
// configuration decides paths, slugs and serialization per call.
type Service interface {
	// AuthComponent returns the active backend's authentication UI
	// descriptor.
	AuthComponent() string

	// CurrentUser returns the cached session if held in memory, else
	// attempts retrieval from the session store, injecting a found session
	// into the backend. Returns (nil, nil) when no session exists and the
	// caller must authenticate.
	CurrentUser(ctx context.Context) (*Session, error)

	// Authenticate delegates to the backend and persists the resulting
	// session on success.
	Authenticate(ctx context.Context, creds Credentials) (*Session, error)

	// ListEntries lists a collection's entries, normalized and parsed, in
	// the backend's returned order.
	ListEntries(ctx context.Context, c *Collection) ([]*Entry, error)

	// GetEntry fetches one entry by slug at its canonical path.
	GetEntry(ctx context.Context, c *Collection, slug string) (*Entry, error)

	// NewEntry returns an empty draft with identity deferred until the
	// first persist.
	NewEntry(c *Collection) *Entry

	// UnpublishedEntries pages through in-workflow entries. Items the
	// backend returns but that fail normalization are filtered out rather
	// than surfaced as errors.
	UnpublishedEntries(ctx context.Context, page, perPage int) ([]*Entry, error)

	// UnpublishedEntry fetches one in-workflow entry.
	UnpublishedEntry(ctx context.Context, c *Collection, slug string) (*Entry, error)

	// PersistEntry writes a draft through the active backend. New drafts
	// get their slug from the collection's slug template and their path
	// from the collection's path rule; existing drafts keep their known
	// path and slug verbatim.
	PersistEntry(ctx context.Context, c *Collection, draft *Entry, media []MediaFile, opts PersistOptions) error

	// PersistUnpublishedEntry is PersistEntry routed through the editorial
	// workflow.
	PersistUnpublishedEntry(ctx context.Context, c *Collection, draft *Entry, media []MediaFile, opts PersistOptions) error

	// UpdateUnpublishedEntryStatus requests a workflow transition from the
	// backend.
	UpdateUnpublishedEntryStatus(ctx context.Context, collection, slug string, status EditorialStatus) error

	// PublishUnpublishedEntry promotes an in-workflow entry.
	PublishUnpublishedEntry(ctx context.Context, collection, slug string, status EditorialStatus) error

	// DeleteEntry removes an entry at its canonical path.
	DeleteEntry(ctx context.Context, c *Collection, slug string) error

	// EntryToRaw serializes an entry's parsed data with the collection's
	// format engine. Fails with ErrUnsupportedFormat when no engine
	// resolves.
	EntryToRaw(c *Collection, e *Entry) (string, error)
}
