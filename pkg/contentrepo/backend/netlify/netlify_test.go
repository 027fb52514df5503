package netlify_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
	netlifybackend "github.com/contentdeck/content-repo/pkg/contentrepo/backend/netlify"
	memorymedia "github.com/contentdeck/content-repo/pkg/contentrepo/mediastore/memory"
)

// fakeNetlify emulates the token and /files endpoints of a netlify-git-api
// service.
type fakeNetlify struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeNetlify() *fakeNetlify {
	return &fakeNetlify{files: make(map[string][]byte)}
}

func (f *fakeNetlify) seed(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = []byte(content)
}

func (f *fakeNetlify) content(path string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	return string(data), ok
}

func (f *fakeNetlify) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			valid := r.FormValue("grant_type") == "password" &&
				r.FormValue("username") == "editor@example.com" &&
				r.FormValue("password") == "s3cret"
			if !valid {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "netlify-token"})
			return
		}

		if !strings.HasPrefix(r.URL.Path, "/files/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/files/")

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			if data, ok := f.files[path]; ok {
				json.NewEncoder(w).Encode(map[string]string{
					"name":    path[strings.LastIndex(path, "/")+1:],
					"path":    path,
					"type":    "file",
					"content": base64.StdEncoding.EncodeToString(data),
				})
				return
			}
			// Directory listing.
			prefix := path + "/"
			var items []map[string]string
			for p := range f.files {
				if strings.HasPrefix(p, prefix) && !strings.Contains(strings.TrimPrefix(p, prefix), "/") {
					items = append(items, map[string]string{
						"name": strings.TrimPrefix(p, prefix),
						"path": p,
						"type": "file",
					})
				}
			}
			if len(items) == 0 {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(items)

		case http.MethodPut:
			var body struct {
				Content string `json:"content"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			data, err := base64.StdEncoding.DecodeString(body.Content)
			if err != nil {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			_, existed := f.files[path]
			f.files[path] = data
			if existed {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusCreated)
			}
			w.Write([]byte("{}"))

		case http.MethodDelete:
			if _, ok := f.files[path]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(f.files, path)
			w.Write([]byte("{}"))

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newBackend(t *testing.T, fake *fakeNetlify) *netlifybackend.Backend {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	b, err := netlifybackend.New(netlifybackend.Config{
		APIRoot:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return b
}

func TestNewRequiresAPIRoot(t *testing.T) {
	_, err := netlifybackend.New(netlifybackend.Config{})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	b := newBackend(t, newFakeNetlify())

	sess, err := b.Authenticate(context.Background(), contentrepo.Credentials{
		Email:    "editor@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "netlify-token", sess.Token)
	assert.Equal(t, netlifybackend.Name, sess.Provider)
	assert.Equal(t, "editor@example.com", sess.Email)
}

func TestAuthenticateRejected(t *testing.T) {
	b := newBackend(t, newFakeNetlify())

	_, err := b.Authenticate(context.Background(), contentrepo.Credentials{
		Email:    "editor@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, contentrepo.ErrAuth)
}

func TestEntriesByFolder(t *testing.T) {
	fake := newFakeNetlify()
	fake.seed("posts/a.md", "---\ntitle: A\n---\na")
	fake.seed("posts/notes.txt", "skip me")
	b := newBackend(t, fake)

	entries, err := b.EntriesByFolder(context.Background(), "posts", "md")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "posts/a.md", entries[0].File.Path)
	assert.Equal(t, "---\ntitle: A\n---\na", entries[0].Data)
}

func TestEntriesByFolderMissingFolder(t *testing.T) {
	b := newBackend(t, newFakeNetlify())

	entries, err := b.EntriesByFolder(context.Background(), "posts", "md")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntry(t *testing.T) {
	fake := newFakeNetlify()
	fake.seed("posts/hello.md", "content")
	b := newBackend(t, fake)

	c := &contentrepo.Collection{Name: "posts", Folder: "posts"}
	raw, err := b.Entry(context.Background(), c, "hello", "posts/hello.md")
	require.NoError(t, err)
	assert.Equal(t, "content", raw.Data)

	_, err = b.Entry(context.Background(), c, "missing", "posts/missing.md")
	assert.ErrorIs(t, err, contentrepo.ErrNotFound)
}

func TestPersistAndDelete(t *testing.T) {
	fake := newFakeNetlify()
	b := newBackend(t, fake)
	ctx := context.Background()

	err := b.PersistEntry(ctx,
		contentrepo.BackendEntry{Path: "posts/new.md", Slug: "new", Raw: "fresh"},
		[]contentrepo.MediaFile{{Name: "cat.png", ContentType: "image/png", Data: []byte("png")}},
		contentrepo.PersistMeta{CommitMessage: `Created Posts "New"`},
	)
	require.NoError(t, err)

	content, ok := fake.content("posts/new.md")
	assert.True(t, ok)
	assert.Equal(t, "fresh", content)

	// Media lands under the media folder, same default as the github
	// backend.
	_, ok = fake.content("static/media/cat.png")
	assert.True(t, ok)

	require.NoError(t, b.DeleteEntry(ctx, "posts/new.md", `Deleted Posts "new"`))
	_, ok = fake.content("posts/new.md")
	assert.False(t, ok)

	err = b.DeleteEntry(ctx, "posts/new.md", "again")
	assert.ErrorIs(t, err, contentrepo.ErrNotFound)
}

func TestMediaStoreOverride(t *testing.T) {
	fake := newFakeNetlify()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	media := memorymedia.New()
	b, err := netlifybackend.New(netlifybackend.Config{
		APIRoot:    srv.URL,
		HTTPClient: srv.Client(),
		MediaStore: media,
	})
	require.NoError(t, err)

	err = b.PersistEntry(context.Background(),
		contentrepo.BackendEntry{Path: "posts/a.md", Slug: "a", Raw: "text"},
		[]contentrepo.MediaFile{{Name: "cat.png", ContentType: "image/png", Data: []byte("png")}},
		contentrepo.PersistMeta{CommitMessage: "with media"},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, media.Len())
	_, ok := fake.content("static/media/cat.png")
	assert.False(t, ok)
}

func TestWorkflowUnsupported(t *testing.T) {
	b := newBackend(t, newFakeNetlify())
	ctx := context.Background()

	_, err := b.UnpublishedEntries(ctx, 1, 10)
	assert.ErrorIs(t, err, contentrepo.ErrWorkflowUnsupported)

	_, err = b.UnpublishedEntry(ctx, "posts", "a")
	assert.ErrorIs(t, err, contentrepo.ErrWorkflowUnsupported)

	err = b.PersistEntry(ctx, contentrepo.BackendEntry{Path: "posts/a.md"}, nil,
		contentrepo.PersistMeta{Unpublished: true})
	assert.ErrorIs(t, err, contentrepo.ErrWorkflowUnsupported)

	err = b.UpdateUnpublishedEntryStatus(ctx, "posts", "a", contentrepo.StatusPendingReview)
	assert.ErrorIs(t, err, contentrepo.ErrWorkflowUnsupported)

	err = b.PublishUnpublishedEntry(ctx, "posts", "a", contentrepo.StatusPendingPublish)
	assert.ErrorIs(t, err, contentrepo.ErrWorkflowUnsupported)
}
