package sessionstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
	"github.com/contentdeck/content-repo/pkg/contentrepo/sessionstore"
)

func TestMemoryStore(t *testing.T) {
	store := sessionstore.NewMemory()
	ctx := context.Background()

	sess, err := store.Retrieve(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	want := &contentrepo.Session{Token: "t1", Provider: "github", Name: "Editor"}
	require.NoError(t, store.Store(ctx, want))

	got, err := store.Retrieve(ctx)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := sessionstore.NewSQLite(path)
	require.NoError(t, err)

	sess, err := store.Retrieve(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	want := &contentrepo.Session{
		Token:    "t1",
		Provider: "netlify-git",
		Name:     "Editor",
		Email:    "editor@example.com",
		Extra:    map[string]any{"refresh_token": "r1"},
	}
	require.NoError(t, store.Store(ctx, want))

	got, err := store.Retrieve(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)

	// Storing again replaces the single session.
	require.NoError(t, store.Store(ctx, &contentrepo.Session{Token: "t2", Provider: "netlify-git"}))
	got, err = store.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Token)

	require.NoError(t, store.Close())
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := sessionstore.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(ctx, &contentrepo.Session{Token: "persisted", Provider: "github"}))
	require.NoError(t, store.Close())

	reopened, err := sessionstore.NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Retrieve(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "persisted", got.Token)
}
