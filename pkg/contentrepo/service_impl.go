package contentrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/contentdeck/content-repo/pkg/contentrepo/format"
)

// service implements the Service interface.
type service struct {
	backend     Backend
	backendName string
	sessions    SessionStore
	publishMode string
	log         zerolog.Logger

	mu   sync.Mutex
	user *Session
}

// Option represents a functional option for configuring the service.
type Option func(*service)

// WithSessionStore sets the durable session store. Without one, CurrentUser
// only ever sees sessions obtained through Authenticate in this process.
func WithSessionStore(store SessionStore) Option {
	return func(s *service) {
		s.sessions = store
	}
}

// WithPublishMode sets the publish mode string passed through to the
// backend on every persist.
func WithPublishMode(mode string) Option {
	return func(s *service) {
		s.publishMode = mode
	}
}

// WithLogger sets the service logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *service) {
		s.log = log
	}
}

// WithBackendName records the provider name used in error reporting.
func WithBackendName(name string) Option {
	return func(s *service) {
		s.backendName = name
	}
}

// New creates a facade over the given backend.
func New(backend Backend, options ...Option) (Service, error) {
	s := &service{
		backend: backend,
		log:     zerolog.Nop(),
	}

	for _, option := range options {
		option(s)
	}

	if s.backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	return s, nil
}

func (s *service) AuthComponent() string {
	return s.backend.AuthComponent()
}

func (s *service) CurrentUser(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		return s.user, nil
	}
	if s.sessions == nil {
		return nil, nil
	}

	sess, err := s.sessions.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	s.backend.SetUser(sess)
	s.user = sess
	return sess, nil
}

func (s *service) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	sess, err := s.backend.Authenticate(ctx, creds)
	if err != nil {
		return nil, &BackendError{Backend: s.backendName, Op: "authenticate", Err: err}
	}

	s.mu.Lock()
	s.user = sess
	s.mu.Unlock()

	if s.sessions != nil {
		if err := s.sessions.Store(ctx, sess); err != nil {
			// The session is live in memory either way; losing the durable
			// copy only costs a re-login after restart.
			s.log.Warn().Err(err).Msg("failed to persist session")
		}
	}
	return sess, nil
}

func (s *service) ListEntries(ctx context.Context, c *Collection) ([]*Entry, error) {
	var (
		raw []RawEntry
		err error
	)
	switch c.ListMethod() {
	case ListEntriesByFolder:
		raw, err = s.backend.EntriesByFolder(ctx, c.Folder, c.FileExtension())
	case ListEntriesByFiles:
		raw, err = s.backend.EntriesByFiles(ctx, c.Files)
	}
	if err != nil {
		return nil, &BackendError{Backend: s.backendName, Op: string(c.ListMethod()), Err: err}
	}

	entries := make([]*Entry, 0, len(raw))
	for _, r := range raw {
		e, err := s.normalize(c, r)
		if err != nil {
			// A fatal parse failure drops the one entry, not the listing.
			s.log.Warn().Err(err).Str("path", r.File.Path).Msg("dropping unparseable entry")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *service) GetEntry(ctx context.Context, c *Collection, slug string) (*Entry, error) {
	p := c.EntryPath(slug)
	raw, err := s.backend.Entry(ctx, c, slug, p)
	if err != nil {
		return nil, &EntryError{Collection: c.Name, Slug: slug, Op: "get", Err: err}
	}
	return s.normalize(c, raw)
}

func (s *service) NewEntry(c *Collection) *Entry {
	e := NewEntry(c.Name, "", "")
	e.NewRecord = true
	return e
}

func (s *service) UnpublishedEntries(ctx context.Context, page, perPage int) ([]*Entry, error) {
	raw, err := s.backend.UnpublishedEntries(ctx, page, perPage)
	if err != nil {
		return nil, &BackendError{Backend: s.backendName, Op: "unpublishedEntries", Err: err}
	}

	// One malformed workflow item must not block the whole queue view:
	// entries that fail normalization are filtered out, all others kept.
	entries := make([]*Entry, 0, len(raw))
	for _, r := range raw {
		e, err := s.normalizeUnpublished(r)
		if err != nil {
			s.log.Warn().Err(err).Str("slug", r.Slug).Msg("dropping malformed workflow entry")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *service) UnpublishedEntry(ctx context.Context, c *Collection, slug string) (*Entry, error) {
	raw, err := s.backend.UnpublishedEntry(ctx, c.Name, slug)
	if err != nil {
		return nil, &EntryError{Collection: c.Name, Slug: slug, Op: "unpublishedEntry", Err: err}
	}
	if raw.Slug == "" {
		raw.Slug = slug
	}
	return s.normalize(c, raw)
}

func (s *service) PersistEntry(ctx context.Context, c *Collection, draft *Entry, media []MediaFile, opts PersistOptions) error {
	isNew := draft.NewRecord

	var slug, entryPath string
	if isNew {
		if !c.AllowNewEntries() {
			return &EntryError{Collection: c.Name, Op: "persist", Err: ErrCreateNotAllowed}
		}
		slug = FormatSlug(c.SlugTemplate, time.Now(), draft)
		entryPath = c.EntryPath(slug)
	} else {
		// Edits must not silently relocate an entry: reuse the draft's
		// known identity verbatim, even if its title changed.
		slug = draft.Slug
		entryPath = draft.Path
	}

	entry := *draft
	entry.Slug = slug
	entry.Path = entryPath
	raw, err := s.EntryToRaw(c, &entry)
	if err != nil {
		return &EntryError{Collection: c.Name, Slug: slug, Op: "persist", Err: err}
	}

	verb := "Updated"
	if isNew {
		verb = "Created"
	}
	title := draft.FieldOr("title", "No Title")
	meta := PersistMeta{
		NewEntry:       isNew,
		Title:          title,
		Description:    draft.FieldOr("description", "No Description"),
		CommitMessage:  fmt.Sprintf("%s %s %q", verb, c.Label, title),
		CollectionName: c.Name,
		Mode:           s.publishMode,
		Unpublished:    opts.Unpublished,
		Status:         opts.Status,
		Extra:          opts.Extra,
	}

	err = s.backend.PersistEntry(ctx, BackendEntry{Path: entryPath, Slug: slug, Raw: raw}, media, meta)
	if err != nil {
		return &EntryError{Collection: c.Name, Slug: slug, Op: "persist", Err: err}
	}
	return nil
}

func (s *service) PersistUnpublishedEntry(ctx context.Context, c *Collection, draft *Entry, media []MediaFile, opts PersistOptions) error {
	opts.Unpublished = true
	if opts.Status == "" {
		opts.Status = StatusDraft
	}
	return s.PersistEntry(ctx, c, draft, media, opts)
}

func (s *service) UpdateUnpublishedEntryStatus(ctx context.Context, collection, slug string, status EditorialStatus) error {
	return s.backend.UpdateUnpublishedEntryStatus(ctx, collection, slug, status)
}

func (s *service) PublishUnpublishedEntry(ctx context.Context, collection, slug string, status EditorialStatus) error {
	return s.backend.PublishUnpublishedEntry(ctx, collection, slug, status)
}

func (s *service) DeleteEntry(ctx context.Context, c *Collection, slug string) error {
	p := c.EntryPath(slug)
	msg := fmt.Sprintf("Deleted %s %q", c.Label, slug)
	if err := s.backend.DeleteEntry(ctx, p, msg); err != nil {
		return &EntryError{Collection: c.Name, Slug: slug, Op: "delete", Err: err}
	}
	return nil
}

func (s *service) EntryToRaw(c *Collection, e *Entry) (string, error) {
	f, ok := format.Resolve(c.Format, e.Path)
	if !ok {
		return "", ErrUnsupportedFormat
	}
	raw, err := f.ToFile(e.Data)
	if err != nil {
		return "", fmt.Errorf("serialize entry: %w", err)
	}
	return raw, nil
}

// normalize turns a backend's raw listing item into an entry, parsing its
// payload with the resolved format engine. A missing engine leaves the raw
// text unparsed rather than failing the entry.
func (s *service) normalize(c *Collection, r RawEntry) (*Entry, error) {
	slug := r.Slug
	if slug == "" {
		slug = c.EntrySlug(r.File.Path)
	}

	e := NewEntry(c.Name, slug, r.File.Path)
	e.Raw = r.Data
	e.Label = r.File.Label
	e.MetaData = r.MetaData

	f, ok := format.Resolve(c.Format, r.File.Path)
	if !ok {
		e.Data = nil
		return e, nil
	}
	data, err := f.FromFile(r.Data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.File.Path, err)
	}
	e.Data = data
	return e, nil
}

// normalizeUnpublished handles workflow listings, which span collections;
// the owning collection's name travels in the item's metadata.
func (s *service) normalizeUnpublished(r RawEntry) (*Entry, error) {
	collection := ""
	if r.MetaData != nil {
		if v, ok := r.MetaData["collection"].(string); ok {
			collection = v
		}
	}
	if collection == "" {
		return nil, errors.New("workflow entry carries no collection")
	}
	if r.Slug == "" {
		return nil, errors.New("workflow entry carries no slug")
	}

	e := NewEntry(collection, r.Slug, r.File.Path)
	e.Raw = r.Data
	e.Label = r.File.Label
	e.MetaData = r.MetaData

	f, ok := format.Resolve("", r.File.Path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.File.Path)
	}
	data, err := f.FromFile(r.Data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.File.Path, err)
	}
	e.Data = data
	return e, nil
}
