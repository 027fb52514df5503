package contentrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
)

func TestFolderCollectionPaths(t *testing.T) {
	c := &contentrepo.Collection{
		Name:   "posts",
		Label:  "Posts",
		Folder: "content/posts",
		Create: true,
	}

	assert.Equal(t, contentrepo.ListEntriesByFolder, c.ListMethod())
	assert.Equal(t, "md", c.FileExtension())
	assert.Equal(t, "content/posts/hello.md", c.EntryPath("hello"))
	assert.Equal(t, "hello", c.EntrySlug("content/posts/hello.md"))
	assert.True(t, c.AllowNewEntries())
}

func TestFolderCollectionPathSlugInverse(t *testing.T) {
	c := &contentrepo.Collection{Name: "posts", Folder: "posts"}

	// entrySlug(entryPath(s)) == s for every valid slug.
	for _, slug := range []string{"a", "hello-world", "2024-03-05-post", "notes.v2", "a_b-c.d"} {
		assert.Equal(t, slug, c.EntrySlug(c.EntryPath(slug)), "slug %q", slug)
	}
}

func TestFolderCollectionCustomExtension(t *testing.T) {
	c := &contentrepo.Collection{Name: "data", Folder: "data", Extension: ".yaml"}

	assert.Equal(t, "yaml", c.FileExtension())
	assert.Equal(t, "data/metrics.yaml", c.EntryPath("metrics"))
	assert.Equal(t, "metrics", c.EntrySlug("data/metrics.yaml"))
}

func TestFileCollection(t *testing.T) {
	c := &contentrepo.Collection{
		Name: "settings",
		Files: []contentrepo.CollectionFile{
			{Name: "general", Label: "General Settings", File: "config/general.yml"},
			{Name: "authors", Label: "Authors", File: "data/authors.yml"},
		},
		// Create is meaningless for file collections, even when set.
		Create: true,
	}

	assert.Equal(t, contentrepo.ListEntriesByFiles, c.ListMethod())
	assert.Equal(t, "config/general.yml", c.EntryPath("general"))
	assert.Equal(t, "authors", c.EntrySlug("data/authors.yml"))
	assert.False(t, c.AllowNewEntries())

	assert.Empty(t, c.EntryPath("unknown"))
	assert.Empty(t, c.EntrySlug("nope.yml"))
}

func TestAllowNewEntriesRequiresCreateFlag(t *testing.T) {
	c := &contentrepo.Collection{Name: "posts", Folder: "posts", Create: false}
	assert.False(t, c.AllowNewEntries())
}
