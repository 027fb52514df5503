// Package testrepo provides a deterministic in-memory backend. It exists
// for tests and local development: the repository contents are whatever the
// caller seeds, listings are sorted by path, and the editorial workflow is
// fully supported.
package testrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
	"github.com/contentdeck/content-repo/pkg/contentrepo/mediastore"
	memorymedia "github.com/contentdeck/content-repo/pkg/contentrepo/mediastore/memory"
)

// Name is the backend's configuration identifier.
const Name = "test-repo"

type file struct {
	content string
	label   string
}

type workflowEntry struct {
	collection string
	slug       string
	path       string
	raw        string
	status     contentrepo.EditorialStatus
	commitID   string
	updatedAt  time.Time
}

// Backend implements contentrepo.Backend in memory.
type Backend struct {
	mu          sync.RWMutex
	files       map[string]file
	unpublished map[string]workflowEntry
	media       mediastore.Store
	user        *contentrepo.Session
	now         func() time.Time
}

// Option configures the backend.
type Option func(*Backend)

// WithFile seeds one repository file.
func WithFile(path, content string) Option {
	return func(b *Backend) {
		b.files[path] = file{content: content}
	}
}

// WithLabeledFile seeds one repository file carrying a display label.
func WithLabeledFile(path, label, content string) Option {
	return func(b *Backend) {
		b.files[path] = file{content: content, label: label}
	}
}

// WithMediaStore routes media uploads to the given store instead of the
// default in-memory one.
func WithMediaStore(store mediastore.Store) Option {
	return func(b *Backend) {
		b.media = store
	}
}

// New creates an empty test repository backend.
func New(options ...Option) *Backend {
	b := &Backend{
		files:       make(map[string]file),
		unpublished: make(map[string]workflowEntry),
		media:       memorymedia.New(),
		now:         time.Now,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *Backend) AuthComponent() string { return "test-repo-auth" }

// Authenticate accepts any credentials and mints a fresh session.
func (b *Backend) Authenticate(ctx context.Context, creds contentrepo.Credentials) (*contentrepo.Session, error) {
	sess := &contentrepo.Session{
		Token:    uuid.NewString(),
		Provider: Name,
		Email:    creds.Email,
	}
	b.SetUser(sess)
	return sess, nil
}

func (b *Backend) SetUser(sess *contentrepo.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.user = sess
}

// CurrentUser exposes the injected session, for tests.
func (b *Backend) CurrentUser() *contentrepo.Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.user
}

func (b *Backend) EntriesByFolder(ctx context.Context, folder, extension string) ([]contentrepo.RawEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	prefix := strings.TrimSuffix(folder, "/") + "/"
	suffix := "." + extension

	paths := make([]string, 0, len(b.files))
	for p := range b.files {
		if strings.HasPrefix(p, prefix) && strings.HasSuffix(p, suffix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	entries := make([]contentrepo.RawEntry, 0, len(paths))
	for _, p := range paths {
		f := b.files[p]
		entries = append(entries, contentrepo.RawEntry{
			File: contentrepo.RawFile{Path: p, Label: f.label},
			Data: f.content,
		})
	}
	return entries, nil
}

func (b *Backend) EntriesByFiles(ctx context.Context, files []contentrepo.CollectionFile) ([]contentrepo.RawEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]contentrepo.RawEntry, 0, len(files))
	for _, cf := range files {
		f, ok := b.files[cf.File]
		if !ok {
			return nil, fmt.Errorf("%w: %s", contentrepo.ErrNotFound, cf.File)
		}
		label := f.label
		if label == "" {
			label = cf.Label
		}
		entries = append(entries, contentrepo.RawEntry{
			File: contentrepo.RawFile{Path: cf.File, Label: label},
			Data: f.content,
			Slug: cf.Name,
		})
	}
	return entries, nil
}

func (b *Backend) Entry(ctx context.Context, c *contentrepo.Collection, slug, path string) (contentrepo.RawEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	f, ok := b.files[path]
	if !ok {
		return contentrepo.RawEntry{}, fmt.Errorf("%w: %s", contentrepo.ErrNotFound, path)
	}
	return contentrepo.RawEntry{
		File: contentrepo.RawFile{Path: path, Label: f.label},
		Data: f.content,
		Slug: slug,
	}, nil
}

func (b *Backend) UnpublishedEntries(ctx context.Context, page, perPage int) ([]contentrepo.RawEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.unpublished))
	for k := range b.unpublished {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = len(keys)
	}
	start := (page - 1) * perPage
	if start >= len(keys) {
		return nil, nil
	}
	end := start + perPage
	if end > len(keys) {
		end = len(keys)
	}

	entries := make([]contentrepo.RawEntry, 0, end-start)
	for _, k := range keys[start:end] {
		entries = append(entries, rawWorkflowEntry(b.unpublished[k]))
	}
	return entries, nil
}

func (b *Backend) UnpublishedEntry(ctx context.Context, collection, slug string) (contentrepo.RawEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	we, ok := b.unpublished[workflowKey(collection, slug)]
	if !ok {
		return contentrepo.RawEntry{}, fmt.Errorf("%w: %s/%s", contentrepo.ErrNotFound, collection, slug)
	}
	return rawWorkflowEntry(we), nil
}

func (b *Backend) PersistEntry(ctx context.Context, entry contentrepo.BackendEntry, media []contentrepo.MediaFile, meta contentrepo.PersistMeta) error {
	for _, m := range media {
		if err := b.media.Upload(ctx, m.Name, strings.NewReader(string(m.Data)), m.ContentType); err != nil {
			return fmt.Errorf("%w: media %s: %v", contentrepo.ErrPersist, m.Name, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if meta.Unpublished {
		status := meta.Status
		if status == "" {
			status = contentrepo.StatusDraft
		}
		b.unpublished[workflowKey(meta.CollectionName, entry.Slug)] = workflowEntry{
			collection: meta.CollectionName,
			slug:       entry.Slug,
			path:       entry.Path,
			raw:        entry.Raw,
			status:     status,
			commitID:   uuid.NewString(),
			updatedAt:  b.now(),
		}
		return nil
	}

	b.files[entry.Path] = file{content: entry.Raw}
	return nil
}

func (b *Backend) UpdateUnpublishedEntryStatus(ctx context.Context, collection, slug string, status contentrepo.EditorialStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid editorial status %q", status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := workflowKey(collection, slug)
	we, ok := b.unpublished[key]
	if !ok {
		return fmt.Errorf("%w: %s/%s", contentrepo.ErrNotFound, collection, slug)
	}
	we.status = status
	we.updatedAt = b.now()
	b.unpublished[key] = we
	return nil
}

func (b *Backend) PublishUnpublishedEntry(ctx context.Context, collection, slug string, status contentrepo.EditorialStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := workflowKey(collection, slug)
	we, ok := b.unpublished[key]
	if !ok {
		return fmt.Errorf("%w: %s/%s", contentrepo.ErrNotFound, collection, slug)
	}
	b.files[we.path] = file{content: we.raw}
	delete(b.unpublished, key)
	return nil
}

func (b *Backend) DeleteEntry(ctx context.Context, path, commitMessage string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.files[path]; !ok {
		return fmt.Errorf("%w: %s", contentrepo.ErrNotFound, path)
	}
	delete(b.files, path)
	return nil
}

// FileContent exposes a stored file's raw text, for tests.
func (b *Backend) FileContent(path string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.files[path]
	return f.content, ok
}

func workflowKey(collection, slug string) string {
	return collection + "/" + slug
}

func rawWorkflowEntry(we workflowEntry) contentrepo.RawEntry {
	return contentrepo.RawEntry{
		File: contentrepo.RawFile{Path: we.path},
		Data: we.raw,
		Slug: we.slug,
		MetaData: map[string]any{
			"collection": we.collection,
			"status":     string(we.status),
			"commit_id":  we.commitID,
			"updated_at": we.updatedAt.UTC().Format(time.RFC3339),
		},
	}
}
